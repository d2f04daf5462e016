package scanning

// ItemData is one extracted line item, in the field shapes the vision models
// return. Numbers become decimals at the service boundary.
type ItemData struct {
	Description  string   `json:"description"`
	Quantity     float64  `json:"quantity"`
	Price        float64  `json:"price"`
	Total        float64  `json:"total"`
	Operation    string   `json:"operation,omitempty"`
	PartNumber   string   `json:"partNumber,omitempty"`
	LaborHours   *float64 `json:"laborHours,omitempty"`
	LaborRate    *float64 `json:"laborRate,omitempty"`
	PartCategory string   `json:"partCategory,omitempty"`
}

// EstimateData contains the information extracted from an estimate document
type EstimateData struct {
	Title string     `json:"title"`
	Date  string     `json:"date"` // ISO 8601 format
	Total float64    `json:"total"`
	Items []ItemData `json:"items"`
}

// Scanner defines the interface for estimate scanning operations
type Scanner interface {
	// ScanEstimate analyzes an estimate image/PDF and extracts its line items
	ScanEstimate(docData []byte, contentType string) (*EstimateData, error)
	// Close closes the scanner and releases resources
	Close() error
}

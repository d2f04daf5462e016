package estimate

import (
	"time"

	"github.com/shopspring/decimal"

	"estimatediff/internal/compare"
)

// Kind distinguishes the two versions of a repair estimate.
type Kind string

const (
	KindOriginal   Kind = "original"
	KindSupplement Kind = "supplement"
)

// Estimate is one uploaded or imported version of a repair estimate with its
// extracted line items.
type Estimate struct {
	ID          string             `json:"id"`
	Label       string             `json:"label"`
	Kind        Kind               `json:"kind"`
	Items       []compare.LineItem `json:"items"`
	Total       decimal.Decimal    `json:"total"`
	Filename    string             `json:"filename,omitempty"`
	ContentType string             `json:"content_type,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Comparison is a stored comparison run between two estimates.
type Comparison struct {
	ID           string          `json:"id"`
	OriginalID   string          `json:"original_id"`
	SupplementID string          `json:"supplement_id"`
	Report       *compare.Report `json:"report"`
	CreatedAt    time.Time       `json:"created_at"`
}

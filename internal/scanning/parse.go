package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// parseEstimateJSON parses the JSON response from a vision model
func parseEstimateJSON(text string) (*EstimateData, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var data EstimateData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	data.Date = normalizeDate(data.Date)

	data.Title = strings.TrimSpace(data.Title)
	if data.Title == "" {
		data.Title = "Unknown Estimate"
	}

	// Drop rows the model emitted without a description and fill in the
	// quantity default
	items := data.Items[:0]
	for _, item := range data.Items {
		item.Description = strings.TrimSpace(item.Description)
		if item.Description == "" {
			continue
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.Total == 0 && item.Price != 0 {
			item.Total = item.Price * item.Quantity
		}
		items = append(items, item)
	}
	data.Items = items

	if len(data.Items) == 0 {
		return nil, fmt.Errorf("no line items found in response")
	}

	// A missing grand total is reconstructed from the rows
	if data.Total == 0 {
		for _, item := range data.Items {
			data.Total += item.Total
		}
	}

	return &data, nil
}

// normalizeDate coerces the extracted date into YYYY-MM-DD, falling back to
// today when the model produced something unparseable
func normalizeDate(date string) string {
	if date == "" {
		return time.Now().Format("2006-01-02")
	}
	if parsed, err := time.Parse("2006-01-02", date); err == nil {
		return parsed.Format("2006-01-02")
	}
	formats := []string{
		"2006/01/02",
		"01/02/2006",
		"02-01-2006",
	}
	for _, format := range formats {
		if d, err := time.Parse(format, date); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return time.Now().Format("2006-01-02")
}

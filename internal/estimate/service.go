package estimate

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"estimatediff/internal/compare"
	"estimatediff/internal/scanning"
)

// IDGenerator generates unique IDs for estimates and comparisons
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles estimate and comparison operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	engine      *compare.Engine
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage, engine *compare.Engine) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		engine:      engine,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, engine *compare.Engine, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		engine:      engine,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	// Remove special characters, keep only alphanumeric, spaces, hyphens, and underscores
	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "estimate"
	}

	return base + ext
}

// UploadEstimate stores an estimate document, extracts its line items and
// saves the resulting estimate
func (s *Service) UploadEstimate(filename string, data []byte, contentType string, kind Kind, label string) (*Estimate, error) {
	if kind != KindOriginal && kind != KindSupplement {
		return nil, fmt.Errorf("invalid estimate kind: %s", kind)
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	cleanFilename := sanitizeFilename(filename)

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	estimateData, err := s.scanner.ScanEstimate(data, contentType)
	if err != nil {
		slog.Error("Failed to scan estimate",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		// Clean up the saved file since scanning failed
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("scanning estimate: %w", err)
	}

	if label == "" {
		label = estimateData.Title
	}

	items := convertItems(id, estimateData.Items)

	estimate := &Estimate{
		ID:          id,
		Label:       label,
		Kind:        kind,
		Items:       items,
		Total:       decimal.NewFromFloat(estimateData.Total),
		Filename:    savedPath,
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.SaveEstimate(estimate); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving estimate to database: %w", err)
	}

	return estimate, nil
}

// ImportEstimate saves an estimate from already-structured line items,
// bypassing the extraction layer
func (s *Service) ImportEstimate(kind Kind, label string, items []compare.LineItem) (*Estimate, error) {
	if kind != KindOriginal && kind != KindSupplement {
		return nil, fmt.Errorf("invalid estimate kind: %s", kind)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one line item is required")
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	total := decimal.Zero
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("%s-%d", id, i+1)
		}
		total = total.Add(items[i].Total)
	}

	estimate := &Estimate{
		ID:        id,
		Label:     label,
		Kind:      kind,
		Items:     items,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.SaveEstimate(estimate); err != nil {
		return nil, fmt.Errorf("saving estimate to database: %w", err)
	}

	return estimate, nil
}

// convertItems turns extracted item data into engine line items, assigning
// row IDs scoped to the estimate
func convertItems(estimateID string, items []scanning.ItemData) []compare.LineItem {
	converted := make([]compare.LineItem, 0, len(items))
	for i, item := range items {
		line := compare.LineItem{
			ID:           fmt.Sprintf("%s-%d", estimateID, i+1),
			Description:  item.Description,
			Quantity:     decimal.NewFromFloat(item.Quantity),
			Price:        decimal.NewFromFloat(item.Price),
			Total:        decimal.NewFromFloat(item.Total),
			Operation:    item.Operation,
			PartNumber:   item.PartNumber,
			PartCategory: item.PartCategory,
		}
		if item.LaborHours != nil {
			hours := decimal.NewFromFloat(*item.LaborHours)
			line.LaborHours = &hours
		}
		if item.LaborRate != nil {
			rate := decimal.NewFromFloat(*item.LaborRate)
			line.LaborRate = &rate
		}
		converted = append(converted, line)
	}
	return converted
}

// GetEstimate retrieves an estimate by ID
func (s *Service) GetEstimate(id string) (*Estimate, error) {
	estimate, err := s.db.GetEstimate(id)
	if err != nil {
		return nil, fmt.Errorf("getting estimate: %w", err)
	}
	return estimate, nil
}

// ListEstimates returns all estimates
func (s *Service) ListEstimates() ([]*Estimate, error) {
	estimates, err := s.db.ListEstimates()
	if err != nil {
		return nil, fmt.Errorf("listing estimates: %w", err)
	}
	return estimates, nil
}

// DeleteEstimate removes an estimate and its stored document
func (s *Service) DeleteEstimate(id string) error {
	estimate, err := s.db.GetEstimate(id)
	if err != nil {
		return fmt.Errorf("getting estimate for deletion: %w", err)
	}

	if estimate.Filename != "" {
		if err := s.storage.Delete(estimate.Filename); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete file", "filename", estimate.Filename, "error", err)
		}
	}

	if err := s.db.DeleteEstimate(id); err != nil {
		return fmt.Errorf("deleting estimate from database: %w", err)
	}
	return nil
}

// GetEstimateFile retrieves the stored document for an estimate
func (s *Service) GetEstimateFile(id string) ([]byte, string, error) {
	estimate, err := s.db.GetEstimate(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting estimate: %w", err)
	}
	if estimate.Filename == "" {
		return nil, "", fmt.Errorf("estimate %s has no stored document", id)
	}

	data, err := s.storage.Get(estimate.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting estimate file: %w", err)
	}

	return data, estimate.ContentType, nil
}

// Compare runs the comparison engine over two stored estimates and persists
// the resulting report
func (s *Service) Compare(originalID, supplementID string) (*Comparison, error) {
	original, err := s.db.GetEstimate(originalID)
	if err != nil {
		return nil, fmt.Errorf("getting original estimate %s: %w", originalID, err)
	}
	supplement, err := s.db.GetEstimate(supplementID)
	if err != nil {
		return nil, fmt.Errorf("getting supplement estimate %s: %w", supplementID, err)
	}

	// The cache dedupes classification of identical lines across the two
	// estimates within this comparison.
	report := s.engine.CompareWithCache(original.Items, supplement.Items, compare.NewCache())

	comparison := &Comparison{
		ID:           s.idGenerator.Generate(),
		OriginalID:   originalID,
		SupplementID: supplementID,
		Report:       report,
		CreatedAt:    s.timeSource.Now(),
	}

	if err := s.db.SaveComparison(comparison); err != nil {
		return nil, fmt.Errorf("saving comparison: %w", err)
	}

	slog.Info("Comparison complete",
		"comparison_id", comparison.ID,
		"matched", len(report.Reconciliation.Pairs),
		"added", len(report.Reconciliation.Added),
		"removed", len(report.Reconciliation.Removed),
		"risk_tier", report.Risk.Tier,
	)

	return comparison, nil
}

// GetComparison retrieves a comparison by ID
func (s *Service) GetComparison(id string) (*Comparison, error) {
	comparison, err := s.db.GetComparison(id)
	if err != nil {
		return nil, fmt.Errorf("getting comparison: %w", err)
	}
	return comparison, nil
}

// ListComparisons returns all comparisons
func (s *Service) ListComparisons() ([]*Comparison, error) {
	comparisons, err := s.db.ListComparisons()
	if err != nil {
		return nil, fmt.Errorf("listing comparisons: %w", err)
	}
	return comparisons, nil
}

// DeleteComparison removes a comparison
func (s *Service) DeleteComparison(id string) error {
	if err := s.db.DeleteComparison(id); err != nil {
		return fmt.Errorf("deleting comparison: %w", err)
	}
	return nil
}

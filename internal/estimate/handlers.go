package estimate

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"estimatediff/internal/compare"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// handleListEstimates returns a list of all estimates
func (s *Server) handleListEstimates(w http.ResponseWriter, r *http.Request) {
	estimates, err := s.service.ListEstimates()
	if err != nil {
		slog.Error("Error listing estimates", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ensure we always return an array, not nil
	if estimates == nil {
		estimates = []*Estimate{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(estimates); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleUploadEstimate handles estimate document upload
func (s *Server) handleUploadEstimate(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (max 50MB to handle multi-page scanned estimates)
	maxFormSize := int64(50 << 20) // 50MB
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File is too large. Maximum size is 50MB."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	kind := Kind(r.FormValue("kind"))
	label := r.FormValue("label")

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if err.Error() == "http: no such file" {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxFormSize {
		jsonError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	// Determine content type
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		switch ext {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		case ".pdf":
			contentType = "application/pdf"
		case ".heic":
			contentType = "image/heic"
		case ".heif":
			contentType = "image/heif"
		default:
			contentType = "application/octet-stream"
		}
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	estimate, err := s.service.UploadEstimate(header.Filename, data, contentType, kind, label)
	if err != nil {
		slog.Error("Error processing estimate", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(estimate); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleImportEstimate handles estimate creation from structured line items
func (s *Server) handleImportEstimate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind  Kind               `json:"kind"`
		Label string             `json:"label"`
		Items []compare.LineItem `json:"items"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	estimate, err := s.service.ImportEstimate(req.Kind, req.Label, req.Items)
	if err != nil {
		slog.Error("Error importing estimate", "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(estimate); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetEstimate returns a single estimate
func (s *Server) handleGetEstimate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Estimate ID required", http.StatusBadRequest)
		return
	}
	estimate, err := s.service.GetEstimate(id)
	if err != nil {
		corsError(w, "Estimate not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(estimate); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetEstimateFile returns the stored document for an estimate
func (s *Server) handleGetEstimateFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Estimate ID required", http.StatusBadRequest)
		return
	}
	data, contentType, err := s.service.GetEstimateFile(id)
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteEstimate deletes an estimate
func (s *Server) handleDeleteEstimate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Estimate ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteEstimate(id); err != nil {
		corsError(w, "Error deleting estimate", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListComparisons returns a list of all comparisons
func (s *Server) handleListComparisons(w http.ResponseWriter, r *http.Request) {
	comparisons, err := s.service.ListComparisons()
	if err != nil {
		slog.Error("Error listing comparisons", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ensure we always return an array, not nil
	if comparisons == nil {
		comparisons = []*Comparison{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(comparisons); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleCreateComparison runs a comparison between two estimates
func (s *Server) handleCreateComparison(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OriginalID   string `json:"original_id"`
		SupplementID string `json:"supplement_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.OriginalID == "" || req.SupplementID == "" {
		corsError(w, "original_id and supplement_id are required", http.StatusBadRequest)
		return
	}

	comparison, err := s.service.Compare(req.OriginalID, req.SupplementID)
	if err != nil {
		slog.Error("Error creating comparison", "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(comparison); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetComparison returns a comparison with its full report
func (s *Server) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Comparison ID required", http.StatusBadRequest)
		return
	}
	comparison, err := s.service.GetComparison(id)
	if err != nil {
		corsError(w, "Comparison not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(comparison); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleDeleteComparison deletes a comparison
func (s *Server) handleDeleteComparison(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Comparison ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteComparison(id); err != nil {
		corsError(w, "Error deleting comparison", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

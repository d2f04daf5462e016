package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// estimateScanPrompt is the shared prompt used by all LLM providers for
// extracting line items from repair estimates
const estimateScanPrompt = `You are analyzing a vehicle repair estimate or supplement document. Carefully read every table row and extract all itemized charges.

For the document as a whole, extract:
1. **Title**: the shop or insurer name plus the document kind, e.g. "ABC Collision - Supplement 1".
2. **Date**: the estimate date in ISO 8601 format (YYYY-MM-DD).
3. **Total**: the grand total or net total of the estimate as a number.

For EACH line item row, extract:
- "description": the text of the line, e.g. "Repl Rear Bumper Cover"
- "quantity": the quantity as a number (1 if not stated)
- "price": the unit price as a number
- "total": the extended line total as a number
- "operation": the operation code if present, e.g. "Repl", "R&I", "R&R", "Refn", "Blnd", "Subl", "Rpr"
- "partNumber": the OEM or aftermarket part number if present
- "laborHours": the labor hours for the line as a number, only if stated
- "laborRate": the hourly labor rate for the line as a number, only if stated
- "partCategory": the part category column if present, e.g. "OEM", "Aftermarket", "Labor", "Paint Material"

Return ONLY valid JSON in this exact format:
{
  "title": "Shop Name - Document Kind",
  "date": "YYYY-MM-DD",
  "total": 0.00,
  "items": [
    {"description": "...", "quantity": 1, "price": 0.00, "total": 0.00}
  ]
}

Important:
- Include every billable row, including labor-only, paint material, and sublet lines
- Omit optional fields rather than guessing them
- All amounts must be numbers (not strings)
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// maxPDFPages caps how many pages of a PDF are rendered and sent to the
// model. Estimates are usually 2-4 pages.
const maxPDFPages = 8

// pdfToImages renders a PDF into one PNG per page
func pdfToImages(pdfData []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}

	images := make([][]byte, 0, pages)
	for n := 0; n < pages; n++ {
		img, err := doc.Image(n)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", n+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding PNG: %w", err)
		}
		images = append(images, buf.Bytes())
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	return images, nil
}

// imageToPNG converts any image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// HEIC/HEIF (common on iPhones) is not supported by Go's standard image
	// package, so it gets its own decoder
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format by looking
// for an ftyp box with a HEIC-related brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) == "ftyp" {
		brand := string(data[8:12])
		if brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1" {
			return true
		}
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return mimeType == "image/heic" || mimeType == "image/heif" ||
		strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// prepareDocumentPages normalizes an uploaded document into one or more PNG
// page images. PDFs yield a page per image; photos yield a single page.
func prepareDocumentPages(docData []byte, contentType string) ([][]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg" // default
	}

	if mimeType == "application/pdf" {
		pages, err := pdfToImages(docData)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to images: %w", err)
		}
		return pages, nil
	}

	if mimeType == "image/png" && !isHEICFormat(docData) {
		return [][]byte{docData}, nil
	}

	pngData, err := imageToPNG(docData, mimeType)
	if err != nil {
		return nil, fmt.Errorf("converting image to PNG: %w", err)
	}
	return [][]byte{pngData}, nil
}

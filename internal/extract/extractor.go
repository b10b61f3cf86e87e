// Package extract turns uploaded documents into plain text for analysis.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"docanalyzer/internal/port"
)

var (
	// ErrUnsupportedFormat is returned for files that are accepted for upload
	// but have no text extractor (legacy binary Office formats).
	ErrUnsupportedFormat = errors.New("unsupported document format for text extraction")
	// ErrExtractionFailed wraps errors raised while decoding a corrupt file.
	ErrExtractionFailed = errors.New("text extraction failed")
)

// Format names the decoder chosen for a file.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatPPTX    Format = "pptx"
	FormatXLSX    Format = "xlsx"
	FormatCSV     Format = "csv"
	FormatText    Format = "text"
	FormatImage   Format = "image"
	FormatLegacy  Format = "legacy"
	FormatUnknown Format = "unknown"
)

var mimeFormats = map[string]Format{
	"application/pdf": FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   FormatDOCX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": FormatPPTX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         FormatXLSX,
	"text/csv":                      FormatCSV,
	"text/plain":                    FormatText,
	"image/png":                     FormatImage,
	"image/jpeg":                    FormatImage,
	"image/webp":                    FormatImage,
	"image/gif":                     FormatImage,
	"application/msword":            FormatLegacy,
	"application/vnd.ms-excel":      FormatLegacy,
	"application/vnd.ms-powerpoint": FormatLegacy,
	"application/x-ole-storage":     FormatLegacy,
}

var extFormats = map[string]Format{
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".pptx": FormatPPTX,
	".xlsx": FormatXLSX,
	".csv":  FormatCSV,
	".txt":  FormatText,
	".md":   FormatText,
	".png":  FormatImage,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
	".webp": FormatImage,
	".gif":  FormatImage,
	".doc":  FormatLegacy,
	".xls":  FormatLegacy,
	".ppt":  FormatLegacy,
}

// Extractor implements port.TextExtractor.
type Extractor struct {
	maxChars int
}

// New creates an Extractor. maxChars <= 0 disables truncation.
func New(maxChars int) *Extractor {
	return &Extractor{maxChars: maxChars}
}

// Detect picks a Format from the file's bytes, then its extension, then the
// declared content type.
func Detect(data []byte, filename, declared string) Format {
	detected := baseMIME(mimetype.Detect(data).String())
	if f, ok := mimeFormats[detected]; ok && f != FormatText {
		return f
	}

	if f, ok := extFormats[strings.ToLower(filepath.Ext(filename))]; ok {
		return f
	}
	if f, ok := mimeFormats[baseMIME(declared)]; ok {
		return f
	}
	if strings.HasPrefix(detected, "text/") || strings.HasPrefix(baseMIME(declared), "text/") {
		return FormatText
	}
	return FormatUnknown
}

// Extract dispatches to the decoder for the detected format.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := Detect(input.Data, input.Filename, input.ContentType)
	out := &port.ExtractOutput{Format: string(format)}

	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, out.Pages, err = extractPDF(input.Data)
	case FormatDOCX:
		text, err = extractDOCX(input.Data)
	case FormatPPTX:
		text, out.Pages, err = extractPPTX(input.Data)
	case FormatXLSX:
		text, out.Pages, err = extractXLSX(input.Data)
	case FormatCSV, FormatText:
		text = decodeText(input.Data)
	case FormatImage:
		out.NeedsVision = true
		return out, nil
	case FormatLegacy:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, displayName(input))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, displayName(input))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, format, err)
	}

	text = Sanitize(text)
	if text == "" {
		// Scanned PDFs have no text layer; the model reads the file directly.
		if format == FormatPDF {
			out.NeedsVision = true
		}
		return out, nil
	}

	out.Text, out.Truncated = Truncate(text, e.maxChars)
	return out, nil
}

// Truncate cuts s to at most max runes. max <= 0 means no limit.
func Truncate(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}

func decodeText(b []byte) string {
	b = trimBOM(b)
	return strings.ToValidUTF8(string(b), "�")
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

func baseMIME(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func displayName(input port.ExtractInput) string {
	if input.Filename != "" {
		return input.Filename
	}
	return input.ContentType
}

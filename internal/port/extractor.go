package port

import "context"

// ExtractInput is a file to turn into text.
type ExtractInput struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ExtractOutput is the text recovered from a file.
type ExtractOutput struct {
	Text        string
	Format      string
	Pages       int
	Truncated   bool
	NeedsVision bool // no text layer; the file must be sent to the model as-is
}

// TextExtractor turns uploaded documents into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}

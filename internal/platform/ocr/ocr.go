package ocr

import "context"

// Result is the text layer produced for one page artifact. Confidence is on
// the 0-100 scale the pipeline reasons in.
type Result struct {
	Text       string
	Confidence float64
	PageCount  int
}

// Engine produces a text layer from raw scan bytes. An engine error is a
// per-document failure; callers decide whether the whole pipeline run fails
// or degrades to the no-OCR path.
type Engine interface {
	Extract(ctx context.Context, data []byte, mimeType string) (*Result, error)
	Close() error
}

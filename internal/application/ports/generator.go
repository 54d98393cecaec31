package ports

import "context"

// InlineImage is an image payload sent alongside a prompt.
type InlineImage struct {
	MIMEType string
	Data     string // base64
}

// GenerateInput is a single generation request. Model may be empty; the
// gateway falls back to its configured default.
type GenerateInput struct {
	Prompt string
	Model  string
	Images []InlineImage
}

// TextGenerator is the single point of contact with the generative-model
// backend. One best-effort attempt per call: no retry, no circuit breaking.
type TextGenerator interface {
	Generate(ctx context.Context, input GenerateInput) (string, error)
}

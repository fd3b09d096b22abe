package llm

import "context"

// Attachment is binary content sent alongside the prompt, e.g. a resume PDF.
type Attachment struct {
	MIMEType string
	Data     []byte
}

type Request struct {
	Prompt      string
	Attachments []Attachment
}

// Provider performs a single, non-retried generation call.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}

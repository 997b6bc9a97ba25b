// Package render turns normalized item documents into one of three
// encodings: plain text, markdown, or a JSON envelope.
package render

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type Encoding int

const (
	Structured Encoding = iota
	Plain
	Markdown
)

func (e Encoding) String() string {
	switch e {
	case Plain:
		return "text"
	case Markdown:
		return "markdown"
	default:
		return "json"
	}
}

// ParseEncoding maps a caller preference to an Encoding. Anything other
// than "text" or "markdown" selects Structured.
func ParseEncoding(s string) Encoding {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt", "plain":
		return Plain
	case "markdown", "md":
		return Markdown
	default:
		return Structured
	}
}

type contextKey struct{}

// WithEncoding attaches an encoding preference to ctx.
func WithEncoding(ctx context.Context, e Encoding) context.Context {
	return context.WithValue(ctx, contextKey{}, e)
}

// FromContext returns the encoding attached to ctx, Structured if none.
func FromContext(ctx context.Context) Encoding {
	if e, ok := ctx.Value(contextKey{}).(Encoding); ok {
		return e
	}
	return Structured
}

// Document is anything that can be rendered in every encoding.
type Document interface {
	PlainText() string
	Markdown() string
	// Data is serialized as-is inside the structured envelope.
	Data() any
}

// Envelope wraps structured responses.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Output is a rendered response body.
type Output struct {
	ContentType string
	Body        []byte
}

func (o Output) String() string { return string(o.Body) }

const (
	ContentTypeText     = "text/plain; charset=utf-8"
	ContentTypeMarkdown = "text/markdown; charset=utf-8"
	ContentTypeJSON     = "application/json; charset=utf-8"
)

// Message is the envelope message for successful responses.
const Message = "ok"

// Render is deterministic for a given document and encoding.
func Render(doc Document, enc Encoding) (Output, error) {
	switch enc {
	case Plain:
		return Output{ContentType: ContentTypeText, Body: []byte(doc.PlainText())}, nil
	case Markdown:
		return Output{ContentType: ContentTypeMarkdown, Body: []byte(doc.Markdown())}, nil
	}
	b, err := json.Marshal(Envelope{Code: http.StatusOK, Message: Message, Data: doc.Data()})
	if err != nil {
		return Output{}, err
	}
	return Output{ContentType: ContentTypeJSON, Body: b}, nil
}

// Error renders a failure in the caller's preferred encoding.
func Error(enc Encoding, status int, err error) Output {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	switch enc {
	case Plain, Markdown:
		ct := ContentTypeText
		if enc == Markdown {
			ct = ContentTypeMarkdown
		}
		return Output{ContentType: ct, Body: []byte(msg + "\n")}
	}
	b, _ := json.Marshal(Envelope{Code: status, Message: msg})
	return Output{ContentType: ContentTypeJSON, Body: b}
}

// EscapeCell makes s safe for a markdown table cell.
func EscapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

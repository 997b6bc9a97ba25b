package render

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct{ items []string }

func (d doc) PlainText() string { return "1. a\n" }
func (d doc) Markdown() string  { return "# A\n" }
func (d doc) Data() any         { return d.items }

func TestParseEncoding(t *testing.T) {
	tests := map[string]Encoding{
		"text":     Plain,
		"TEXT":     Plain,
		"markdown": Markdown,
		"md":       Markdown,
		"json":     Structured,
		"":         Structured,
		"xml":      Structured,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseEncoding(in), in)
	}
}

func TestContextRoundTrip(t *testing.T) {
	assert.Equal(t, Structured, FromContext(context.Background()))

	ctx := WithEncoding(context.Background(), Markdown)
	assert.Equal(t, Markdown, FromContext(ctx))
}

func TestRender(t *testing.T) {
	d := doc{items: []string{"a"}}

	out, err := Render(d, Plain)
	require.NoError(t, err)
	assert.Equal(t, "1. a\n", out.String())
	assert.Equal(t, ContentTypeText, out.ContentType)

	out, err = Render(d, Markdown)
	require.NoError(t, err)
	assert.Equal(t, "# A\n", out.String())

	out, err = Render(d, Structured)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":200,"message":"ok","data":["a"]}`, out.String())
	assert.Equal(t, ContentTypeJSON, out.ContentType)
}

func TestRenderDeterministic(t *testing.T) {
	d := doc{items: []string{"a", "b"}}
	a, _ := Render(d, Structured)
	b, _ := Render(d, Structured)
	assert.Equal(t, a.Body, b.Body)
}

func TestError(t *testing.T) {
	out := Error(Structured, http.StatusBadGateway, errors.New("upstream down"))
	assert.JSONEq(t, `{"code":502,"message":"upstream down"}`, out.String())

	out = Error(Plain, http.StatusBadRequest, errors.New("bad date"))
	assert.Equal(t, "bad date\n", out.String())
}

func TestEscapeCell(t *testing.T) {
	assert.Equal(t, `a \| b c`, EscapeCell("a | b\nc"))
}

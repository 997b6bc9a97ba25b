package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/briangreenhill/almanac/render"
)

func TestEncoding(t *testing.T) {
	cases := map[string]render.Encoding{
		"/":                   render.Structured,
		"/?encoding=text":     render.Plain,
		"/?encoding=markdown": render.Markdown,
		"/?encoding=md":       render.Markdown,
		"/?encoding=bogus":    render.Structured,
	}
	for target, want := range cases {
		var got render.Encoding
		h := Encoding(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = render.FromContext(r.Context())
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, want, got, target)
	}
}

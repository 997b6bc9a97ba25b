package middleware

import (
	"net/http"

	"github.com/briangreenhill/almanac/render"
)

// EncodingParam is the query parameter selecting the output encoding.
const EncodingParam = "encoding"

// Encoding stores the requested render.Encoding on the request context.
// Unknown or missing values select the structured encoding.
func Encoding(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := render.ParseEncoding(r.URL.Query().Get(EncodingParam))
		next.ServeHTTP(w, r.WithContext(render.WithEncoding(r.Context(), enc)))
	})
}

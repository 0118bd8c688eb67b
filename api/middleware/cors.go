package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"https://verdeo.com.ar",
	"https://www.verdeo.com.ar",
}

// CORS returns middleware that applies the API's allowed origin policy. The
// storefront origin from configuration is appended to the defaults.
func CORS(siteBaseURL string) func(http.Handler) http.Handler {
	origins := defaultCORSOrigins
	if trimmed := strings.TrimRight(strings.TrimSpace(siteBaseURL), "/"); trimmed != "" {
		origins = append(append([]string{}, defaultCORSOrigins...), trimmed)
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

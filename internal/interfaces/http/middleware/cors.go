// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/hackerz/marketplace/internal/config"
	"github.com/rs/cors"
)

// CORS wraps the router with the configured cross-origin policy
func CORS(cfg *config.Config, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.Security.CORSAllowedOrigins,
		AllowedMethods:   cfg.Security.CORSAllowedMethods,
		AllowedHeaders:   cfg.Security.CORSAllowedHeaders,
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(next)
}

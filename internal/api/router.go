package api

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/erazemk/najdeno/internal/auth"
)

// NewRouter creates the API router with all endpoints registered. Browser
// scripts from origins may call it cross-origin; with no origins CORS
// stays off.
func NewRouter(items *ItemsHandler, jwtSecret string, origins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/items/{kind}", items.List)
	mux.HandleFunc("POST /api/items", items.Create)

	handler := auth.SessionMiddleware(jwtSecret)(mux)
	if len(origins) == 0 {
		return handler
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(handler)
}

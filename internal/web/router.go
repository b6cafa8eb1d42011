package web

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/listing"
	"github.com/erazemk/najdeno/internal/store"
	webembed "github.com/erazemk/najdeno/web"
)

// Server holds all dependencies for page handlers.
type Server struct {
	Store     listing.Store
	Renderer  *listing.Renderer
	Submitter *listing.Submitter
	// Photos stores uploads; nil disables them.
	Photos    *store.Photos
	Templates *Templates
}

// NewRouter creates the web page router. Access tokens are verified with
// jwtSecret.
func NewRouter(s *Server, jwtSecret string) (http.Handler, error) {
	if s.Templates == nil {
		templates, err := LoadTemplates()
		if err != nil {
			return nil, err
		}
		s.Templates = templates
	}

	if s.Renderer == nil {
		renderer, err := listing.NewRenderer("")
		if err != nil {
			return nil, err
		}
		s.Renderer = renderer
	}

	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", s.BoardPage)
	mux.HandleFunc("POST /items", s.SubmitItem)
	mux.HandleFunc("GET /photos/{id}", s.PhotoGet)

	return auth.SessionMiddleware(jwtSecret)(mux), nil
}

package web

import (
	"errors"
	"html/template"
	"log/slog"
	"mime"
	"net/http"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/listing"
)

// maxUploadSize bounds a submission, photo included.
const maxUploadSize = 5 << 20

type boardData struct {
	PageData
	Lost  template.HTML
	Found template.HTML
	Form  map[string]string
}

// pageView is the board as one response shows it. Concurrent requests may
// fetch with different credentials, so each gets its own panes.
type pageView struct {
	board *listing.Board
	lost  *listing.Pane
	found *listing.Pane
}

func (s *Server) newView() *pageView {
	v := &pageView{lost: listing.NewPane(), found: listing.NewPane()}
	v.board = listing.NewBoard(s.Store, s.Renderer, v.lost, v.found)
	return v
}

func (s *Server) renderBoard(w http.ResponseWriter, status int, v *pageView, form *pageForm, alert string, alertErr bool) {
	s.Templates.Render(w, status, "board.html", &boardData{
		PageData: PageData{Title: "Lost & Found", Alert: alert, AlertError: alertErr},
		Lost:     v.lost.Content(),
		Found:    v.found.Content(),
		Form:     form.MapForm,
	})
}

// BoardPage handles GET /.
func (s *Server) BoardPage(w http.ResponseWriter, r *http.Request) {
	v := s.newView()
	v.board.Refresh(r.Context())
	s.renderBoard(w, http.StatusOK, v, newPageForm(r.Context()), "", false)
}

// SubmitItem handles POST /items.
func (s *Server) SubmitItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := parseForm(r); err != nil {
		http.Error(w, "form too large or malformed", http.StatusBadRequest)
		return
	}

	form := formFromRequest(r)
	v := s.newView()

	if err := s.attachPhoto(r, form); err != nil {
		slog.Warn("rejected photo upload", "error", err)
		msg := "Failed to save the photo."
		status := http.StatusInternalServerError
		if errors.Is(err, imaging.ErrUnsupported) {
			msg = "The photo must be a JPEG or PNG image."
			status = http.StatusBadRequest
		}
		v.board.Refresh(r.Context())
		s.renderBoard(w, status, v, form, msg, true)
		return
	}

	notifier := &listing.MessageNotifier{}
	err := s.Submitter.WithNotifier(notifier).WithRefresher(v.board).Submit(r.Context(), form)
	if err != nil {
		// The submission left the store unchanged. The response still needs
		// the current lists, with the form as entered.
		v.board.Refresh(r.Context())
	}
	s.renderBoard(w, http.StatusOK, v, form, notifier.Message, err != nil)
}

// attachPhoto stores an uploaded photo, if any, and points the form's
// photo URL at it.
func (s *Server) attachPhoto(r *http.Request, form *pageForm) error {
	if s.Photos == nil || r.MultipartForm == nil {
		return nil
	}
	file, _, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	photo, err := imaging.Normalize(file, 0)
	if err != nil {
		return err
	}

	id, err := s.Photos.Save(r.Context(), photo.Data, photo.MIME)
	if err != nil {
		return err
	}

	form.MapForm[listing.FieldPhotoURL] = "/photos/" + id
	return nil
}

// parseForm parses either encoding a browser may submit the form with.
func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxUploadSize)
	}
	return r.ParseForm()
}

// PhotoGet handles GET /photos/{id}.
func (s *Server) PhotoGet(w http.ResponseWriter, r *http.Request) {
	if s.Photos == nil {
		http.NotFound(w, r)
		return
	}

	data, mimeType, err := s.Photos.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	// Ids are content digests, so a photo never changes.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}

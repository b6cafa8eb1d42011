package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/listing"
	"github.com/erazemk/najdeno/internal/model"
)

// ItemsHandler serves the two item collections as JSON.
type ItemsHandler struct {
	Store     listing.Store
	Submitter *listing.Submitter
}

// List handles GET /api/items/{kind}.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(r.PathValue("kind"))
	if !ok {
		jsonError(w, http.StatusNotFound, "unknown item kind")
		return
	}

	records, err := h.Store.Select(r.Context(), model.ActiveQuery(kind))
	if err != nil {
		slog.Error("failed to fetch items", "collection", kind.Collection(), "error", err)
		jsonError(w, http.StatusBadGateway, "failed to fetch items")
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// Create handles POST /api/items. The body is a flat object of form
// fields, as the page form would post them.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := decodeJSON(r, &values); err != nil || values == nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form := listing.MapForm(values)
	if form[listing.FieldUserID] == "" {
		if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
			form[listing.FieldUserID] = claims.UserID()
		}
	}

	notifier := &listing.MessageNotifier{}
	if err := h.Submitter.WithNotifier(notifier).Submit(r.Context(), form); err != nil {
		jsonError(w, http.StatusBadGateway, notifier.Message)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]string{"message": notifier.Message})
}

func kindFromPath(s string) (model.Kind, bool) {
	for _, k := range model.Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

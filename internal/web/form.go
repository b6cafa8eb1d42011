package web

import (
	"context"
	"net/http"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/listing"
)

// pageForm is the submission form as posted by the browser. Like a browser
// form reset, clearing it restores the field defaults.
type pageForm struct {
	listing.MapForm
	defaults map[string]string
}

// newPageForm returns an empty form. The user id defaults to the signed-in
// user, if any.
func newPageForm(ctx context.Context) *pageForm {
	f := &pageForm{
		MapForm:  listing.MapForm{},
		defaults: map[string]string{},
	}
	if claims := auth.ClaimsFromContext(ctx); claims != nil {
		f.defaults[listing.FieldUserID] = claims.UserID()
	}
	f.Reset()
	return f
}

// formFromRequest reads the posted fields. The request form must already
// be parsed.
func formFromRequest(r *http.Request) *pageForm {
	f := newPageForm(r.Context())
	for _, field := range listing.Fields {
		if v, ok := r.Form[field]; ok && len(v) > 0 {
			f.MapForm[field] = v[0]
		}
	}
	return f
}

// Reset clears every field and restores the defaults.
func (f *pageForm) Reset() {
	for _, field := range listing.Fields {
		f.MapForm[field] = ""
	}
	for field, v := range f.defaults {
		f.MapForm[field] = v
	}
}

package listing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/najdeno/internal/model"
)

// Form field names.
const (
	FieldType         = "type"
	FieldUserID       = "user_id"
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldCategory     = "category"
	FieldLocation     = "location"
	FieldDate         = "date"
	FieldContactName  = "contact_name"
	FieldContactEmail = "contact_email"
	FieldContactPhone = "contact_phone"
	FieldPhotoURL     = "photo_url"
)

// Fields lists every form field.
var Fields = []string{
	FieldType, FieldUserID, FieldTitle, FieldDescription, FieldCategory,
	FieldLocation, FieldDate, FieldContactName, FieldContactEmail,
	FieldContactPhone, FieldPhotoURL,
}

// FailureMessage is shown when an item could not be added.
const FailureMessage = "Failed to add item. Check the server log for details."

// Form is the input surface a submission reads from.
type Form interface {
	Values() map[string]string
	Reset()
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Notify(message string)
}

// Refresher re-renders the listing after a successful submission.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Submitter adds new items from a form.
type Submitter struct {
	store     Store
	refresher Refresher
	notifier  Notifier
}

// NewSubmitter creates a submitter.
func NewSubmitter(store Store, refresher Refresher, notifier Notifier) *Submitter {
	return &Submitter{store: store, refresher: refresher, notifier: notifier}
}

// WithNotifier returns a copy of the submitter reporting to n. Each request
// carries its own notifier.
func (s *Submitter) WithNotifier(n Notifier) *Submitter {
	c := *s
	c.notifier = n
	return &c
}

// WithRefresher returns a copy of the submitter refreshing r after a
// successful insert. Pages bind the board that renders their own response.
func (s *Submitter) WithRefresher(r Refresher) *Submitter {
	c := *s
	c.refresher = r
	return &c
}

// Submit inserts the item described by form. On success the user is
// notified, the form is reset and the listing refreshed. On failure the
// form keeps its values and the error is returned.
func (s *Submitter) Submit(ctx context.Context, form Form) error {
	values := form.Values()
	kind := model.ParseKind(values[FieldType])
	rec := BuildRecord(kind, values)

	if err := s.store.Insert(ctx, kind.Collection(), rec); err != nil {
		slog.Error("failed to add item", "kind", kind, "title", rec.Title, "error", err)
		s.notify(FailureMessage)
		return fmt.Errorf("adding %s item: %w", kind, err)
	}

	slog.Info("item added", "kind", kind, "title", rec.Title, "user", rec.UserID)
	s.notify(fmt.Sprintf("%s item added successfully!", kind))
	form.Reset()
	if s.refresher != nil {
		s.refresher.Refresh(ctx)
	}
	return nil
}

func (s *Submitter) notify(message string) {
	if s.notifier != nil {
		s.notifier.Notify(message)
	}
}

// BuildRecord maps flat form values onto a record of the given kind. Values
// are copied as-is; only the generic date and the optional photo are
// remapped.
func BuildRecord(kind model.Kind, values map[string]string) model.Record {
	rec := model.Record{
		UserID:       values[FieldUserID],
		Title:        values[FieldTitle],
		Description:  values[FieldDescription],
		Category:     values[FieldCategory],
		Location:     values[FieldLocation],
		ContactName:  values[FieldContactName],
		ContactEmail: values[FieldContactEmail],
		ContactPhone: values[FieldContactPhone],
	}

	date := values[FieldDate]
	if kind == model.KindLost {
		rec.DateLost = &date
	} else {
		rec.DateFound = &date
	}

	if photo := values[FieldPhotoURL]; photo != "" {
		rec.PhotoURL = &photo
	}

	return rec
}

// MapForm is a Form backed by a plain map.
type MapForm map[string]string

// Values returns a copy of the current values.
func (f MapForm) Values() map[string]string {
	values := make(map[string]string, len(f))
	for k, v := range f {
		values[k] = v
	}
	return values
}

// Reset clears every field back to empty.
func (f MapForm) Reset() {
	for k := range f {
		f[k] = ""
	}
}

// MessageNotifier records the last message it was given.
type MessageNotifier struct {
	Message string
}

// Notify implements Notifier.
func (n *MessageNotifier) Notify(message string) {
	n.Message = message
}

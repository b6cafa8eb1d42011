package model

// Record is a single lost or found item entry. The JSON names match the
// column names of the hosted tables.
type Record struct {
	ID           string     `json:"id,omitempty"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Location     string     `json:"location"`
	DateLost     *string    `json:"date_lost"`
	DateFound    *string    `json:"date_found"`
	ContactName  string     `json:"contact_name"`
	ContactEmail string     `json:"contact_email"`
	ContactPhone string     `json:"contact_phone"`
	PhotoURL     *string    `json:"photo_url"`
	Status       string     `json:"status,omitempty"`
	CreatedAt    *Timestamp `json:"created_at,omitempty"`
}

// Record statuses. Only active records are ever listed.
const (
	StatusActive = "active"
)

// Date returns whichever of the two date fields is populated.
func (r Record) Date() string {
	if r.DateLost != nil && *r.DateLost != "" {
		return *r.DateLost
	}
	if r.DateFound != nil {
		return *r.DateFound
	}
	return ""
}

// Photo returns the photo URL, or fallback when the record has none.
func (r Record) Photo(fallback string) string {
	if r.PhotoURL != nil && *r.PhotoURL != "" {
		return *r.PhotoURL
	}
	return fallback
}

// Columns lists every column of the item tables, in schema order.
var Columns = []string{
	"id", "user_id", "title", "description", "category", "location",
	"date_lost", "date_found", "contact_name", "contact_email", "contact_phone",
	"photo_url", "status", "created_at",
}

// IsColumn reports whether name is a known item column.
func IsColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

package models

import "time"

// Achievement is a catalog row, unique by title. Markup starts out equal
// to the title when no decorative rendering was captured yet and is only
// ever upgraded from that plain form, never downgraded.
type Achievement struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Markup    *string   `json:"markup" db:"markup"`
	IconFirst *string   `json:"icon_first" db:"icon_first"`
	IconLast  *string   `json:"icon_last" db:"icon_last"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasPlainMarkup reports whether the stored markup still equals the title,
// i.e. the row predates any captured decorative rendering.
func (a *Achievement) HasPlainMarkup() bool {
	return a.Markup != nil && *a.Markup == a.Title
}

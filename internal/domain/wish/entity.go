package wish

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wish is an item a user would like to receive
type Wish struct {
	ID          int64               `db:"id" json:"wishId"`
	UserID      int64               `db:"user_id" json:"ownerId"`
	Title       string              `db:"title" json:"title"`
	Description *string             `db:"description" json:"description,omitempty"`
	PhotoURL    *string             `db:"photo_url" json:"photoUrl,omitempty"`
	Price       decimal.NullDecimal `db:"price" json:"price"`
	CreatedAt   time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt   *time.Time          `db:"updated_at" json:"updatedAt,omitempty"`
}

// Patch holds the fields of a partial update; nil means unchanged
type Patch struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
}

// Apply copies the set fields onto w
func (p Patch) Apply(w *Wish) {
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.Description != nil {
		w.Description = p.Description
	}
	if p.Price != nil {
		w.Price = decimal.NewNullDecimal(*p.Price)
	}
}

// Document is the denormalized search representation of a wish
type Document struct {
	ID          int64      `ch:"id"`
	OwnerID     int64      `ch:"owner_id"`
	Title       string     `ch:"title"`
	Description string     `ch:"description"`
	PhotoURL    string     `ch:"photo_url"`
	Price       string     `ch:"price"`
	CreatedAt   time.Time  `ch:"created_at"`
	UpdatedAt   *time.Time `ch:"updated_at"`
}

// ToDocument builds the search document for w
func ToDocument(w *Wish) Document {
	d := Document{
		ID:        w.ID,
		OwnerID:   w.UserID,
		Title:     w.Title,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if w.Description != nil {
		d.Description = *w.Description
	}
	if w.PhotoURL != nil {
		d.PhotoURL = *w.PhotoURL
	}
	if w.Price.Valid {
		d.Price = w.Price.Decimal.String()
	}
	return d
}

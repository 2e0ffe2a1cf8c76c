package wish

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"dabwish/pkg/errors"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// Validate checks the fields a client may set
func Validate(w *Wish) error {
	w.Title = strings.TrimSpace(w.Title)
	if w.Title == "" {
		return errors.NewValidationError("title", "is required", w.Title)
	}
	if utf8.RuneCountInString(w.Title) > maxTitleLength {
		return errors.NewValidationError("title", fmt.Sprintf("must be at most %d characters", maxTitleLength), len(w.Title))
	}
	if w.Description != nil && utf8.RuneCountInString(*w.Description) > maxDescriptionLength {
		return errors.NewValidationError("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLength), len(*w.Description))
	}
	if w.Price.Valid && w.Price.Decimal.IsNegative() {
		return errors.NewValidationError("price", "must not be negative", w.Price.Decimal.String())
	}
	return nil
}

package template

import (
	"errors"
	"time"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("template not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Template represents a saved email template.
// JSON names follow the wire format the builder UI reads.
type Template struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

// Fields contains the mutable part of a template. Every create and update
// replaces all three.
type Fields struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Image   string `json:"image"`
}

// Fields returns the mutable part of the template
func (t *Template) Fields() Fields {
	return Fields{Title: t.Title, Content: t.Content, Image: t.Image}
}

func (t *Template) apply(f Fields) {
	t.Title = f.Title
	t.Content = f.Content
	t.Image = f.Image
}

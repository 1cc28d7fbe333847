package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type addBookInput struct {
	ISBN  string `json:"isbn" validate:"required"`
	Title string `json:"title" validate:"required,min=1"`
	Shelf string `json:"shelf" validate:"required,oneof=library wishlist"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	assert.Nil(t, v.Struct(addBookInput{ISBN: "9780547928227", Title: "The Hobbit", Shelf: "library"}))

	details := v.Struct(addBookInput{Shelf: "attic"})
	assert.Equal(t, "is required", details["isbn"])
	assert.Equal(t, "is required", details["title"])
	assert.Equal(t, "must be one of: library wishlist", details["shelf"])
}

package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/outreachlabs/leadengine/internal/usecase"
)

func TestLooksLikeRealFirstName(t *testing.T) {
	good := []string{"Jane", "Séan", "Mary-Anne", "O'Brien", "li"}
	for _, name := range good {
		assert.True(t, usecase.LooksLikeRealFirstName(name), name)
	}

	bad := []string{
		"Share", "Visit", "Partner", "View", "Read", "More", "Click", "Link",
		"click", // token match is case-insensitive
		"J", "Jane123", "Jane Doe", "jane@x.com", "",
		"Abcdefghijklmnopqrstuvwxyzabcde", // 31 chars
	}
	for _, name := range bad {
		assert.False(t, usecase.LooksLikeRealFirstName(name), name)
	}
}

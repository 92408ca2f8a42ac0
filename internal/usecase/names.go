package usecase

import (
	"strings"
	"unicode"
)

// Tokens that scrapers pick up from navigational link text instead of a
// person's name. Seen repeatedly in directory extractions.
var navigationTokens = map[string]bool{
	"share":    true,
	"visit":    true,
	"partner":  true,
	"view":     true,
	"read":     true,
	"more":     true,
	"click":    true,
	"link":     true,
	"sign":     true,
	"signup":   true,
	"login":    true,
	"learn":    true,
	"home":     true,
	"about":    true,
	"contact":  true,
	"profile":  true,
	"website":  true,
	"email":    true,
	"here":     true,
	"next":     true,
	"back":     true,
	"download": true,
}

// LooksLikeRealFirstName is a cheap heuristic to keep obvious scraper
// garbage out of the lead store. It only runs when a first name was
// actually detected.
func LooksLikeRealFirstName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 30 {
		return false
	}
	if navigationTokens[strings.ToLower(name)] {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

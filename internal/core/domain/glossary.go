package domain

import "time"

// GlossaryTerm is a single entry in the legal glossary browsed by end users.
type GlossaryTerm struct {
	ID         string
	Slug       string
	Term       string
	Definition string
	Category   string
	UpdatedAt  time.Time
}

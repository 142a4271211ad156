// Package model defines the core data types for the supplier discovery pipeline.
package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ChemicalQuery is the immutable input for one discovery request.
type ChemicalQuery struct {
	Name             string   `json:"chemical_name"`
	CAS              string   `json:"cas_number"`
	Limit            int      `json:"limit"`
	AllowedCountries []string `json:"allowed_countries,omitempty"`
	DeniedCountries  []string `json:"excluded_countries,omitempty"`
}

// Configuration errors returned by Validate. These are rejected before any
// network activity.
var (
	ErrMissingName     = eris.New("query: chemical name is required")
	ErrMissingCAS      = eris.New("query: CAS number is required")
	ErrInvalidLimit    = eris.New("query: limit must be positive")
	ErrConflictFilters = eris.New("query: allowed and excluded country lists are mutually exclusive")
)

// Validate checks the query for configuration errors.
func (q ChemicalQuery) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(q.CAS) == "" {
		return ErrMissingCAS
	}
	if q.Limit <= 0 {
		return ErrInvalidLimit
	}
	if len(q.AllowedCountries) > 0 && len(q.DeniedCountries) > 0 {
		return ErrConflictFilters
	}
	return nil
}

// SearchText is the canonical query text used for relevance scoring.
func (q ChemicalQuery) SearchText() string {
	return q.Name + " " + q.CAS
}

// Package enrich fills in supplier contact emails: scraping them from
// verified pages, generating common patterns when none were found, and
// optionally checking deliverability through a verification provider.
package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/chemsource/supplier-cli/internal/model"
	"github.com/chemsource/supplier-cli/pkg/hunter"
)

// patternLocalParts are the address prefixes generated when a supplier page
// exposed no email at all.
var patternLocalParts = []string{"info", "sales"}

// Enricher completes the email list of supplier records.
type Enricher struct {
	verifier hunter.Client // nil disables deliverability checks
}

// Option configures the Enricher.
type Option func(*Enricher)

// WithVerifier enables deliverability checks through an email verification
// provider.
func WithVerifier(v hunter.Client) Option {
	return func(e *Enricher) {
		e.verifier = v
	}
}

// New creates an Enricher.
func New(opts ...Option) *Enricher {
	e := &Enricher{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich processes records in place. Records that already carry scraped
// (FOUND) addresses keep them; records with none get pattern addresses at
// their domain. When a verifier is configured, addresses are checked:
// deliverable ones upgrade to VERIFIED, undeliverable ones are dropped, and
// verifier failures leave the address untouched.
func (e *Enricher) Enrich(ctx context.Context, records []model.SupplierRecord) {
	for i := range records {
		rec := &records[i]
		if len(rec.Emails) == 0 {
			rec.Emails = patternEmails(rec.Domain)
		}
		if e.verifier != nil {
			rec.Emails = e.verifyAll(ctx, rec.Emails)
		}
	}
}

func patternEmails(domain string) []model.EmailCandidate {
	if domain == "" {
		return nil
	}
	out := make([]model.EmailCandidate, 0, len(patternLocalParts))
	for _, local := range patternLocalParts {
		out = append(out, model.EmailCandidate{
			Address:    local + "@" + strings.ToLower(domain),
			Provenance: model.EmailPattern,
		})
	}
	return out
}

func (e *Enricher) verifyAll(ctx context.Context, emails []model.EmailCandidate) []model.EmailCandidate {
	out := emails[:0]
	for _, email := range emails {
		verdict, err := e.verifier.Verify(ctx, email.Address)
		if err != nil {
			zap.L().Debug("enrich: email verification unavailable",
				zap.String("address", email.Address),
				zap.Error(err),
			)
			out = append(out, email)
			continue
		}
		switch verdict {
		case hunter.VerdictDeliverable:
			email.Provenance = model.EmailVerified
			out = append(out, email)
		case hunter.VerdictUndeliverable:
			// Dropped.
		default:
			out = append(out, email)
		}
	}
	return out
}

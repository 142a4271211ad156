package enrich

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemsource/supplier-cli/internal/model"
	"github.com/chemsource/supplier-cli/pkg/hunter"
)

func TestExtractEmails(t *testing.T) {
	text := `Contact Sales@Acme.com or support@acme.com.
	Legal: legal@acme.co.uk. Not-an-email: foo@bar, @twitter.`

	emails := ExtractEmails(text)
	assert.Equal(t, []string{"legal@acme.co.uk", "sales@acme.com", "support@acme.com"}, emails)
}

func TestExtractEmailsNone(t *testing.T) {
	assert.Nil(t, ExtractEmails("no contact information on this page"))
}

type stubVerifier struct {
	verdicts map[string]hunter.Verdict
	errs     map[string]error
}

func (s *stubVerifier) Verify(_ context.Context, address string) (hunter.Verdict, error) {
	if err, ok := s.errs[address]; ok {
		return hunter.VerdictUnknown, err
	}
	if v, ok := s.verdicts[address]; ok {
		return v, nil
	}
	return hunter.VerdictUnknown, nil
}

func TestEnrichKeepsFoundEmails(t *testing.T) {
	records := []model.SupplierRecord{{
		Domain: "acme.com",
		Emails: []model.EmailCandidate{
			{Address: "sales@acme.com", Provenance: model.EmailFound},
		},
	}}

	New().Enrich(context.Background(), records)

	require.Len(t, records[0].Emails, 1)
	assert.Equal(t, model.EmailFound, records[0].Emails[0].Provenance)
}

func TestEnrichGeneratesPatterns(t *testing.T) {
	records := []model.SupplierRecord{{Domain: "acme.com"}}

	New().Enrich(context.Background(), records)

	require.Len(t, records[0].Emails, 2)
	assert.Equal(t, "info@acme.com", records[0].Emails[0].Address)
	assert.Equal(t, model.EmailPattern, records[0].Emails[0].Provenance)
	assert.Equal(t, "sales@acme.com", records[0].Emails[1].Address)
}

func TestEnrichVerifierUpgradesAndDrops(t *testing.T) {
	verifier := &stubVerifier{verdicts: map[string]hunter.Verdict{
		"info@acme.com":  hunter.VerdictDeliverable,
		"sales@acme.com": hunter.VerdictUndeliverable,
	}}
	records := []model.SupplierRecord{{Domain: "acme.com"}}

	New(WithVerifier(verifier)).Enrich(context.Background(), records)

	require.Len(t, records[0].Emails, 1)
	assert.Equal(t, "info@acme.com", records[0].Emails[0].Address)
	assert.Equal(t, model.EmailVerified, records[0].Emails[0].Provenance)
}

func TestEnrichVerifierErrorIsSkippable(t *testing.T) {
	verifier := &stubVerifier{errs: map[string]error{
		"info@acme.com":  eris.New("quota exceeded"),
		"sales@acme.com": eris.New("quota exceeded"),
	}}
	records := []model.SupplierRecord{{Domain: "acme.com"}}

	New(WithVerifier(verifier)).Enrich(context.Background(), records)

	// Verification failure keeps the addresses with their original tag.
	require.Len(t, records[0].Emails, 2)
	assert.Equal(t, model.EmailPattern, records[0].Emails[0].Provenance)
}

func TestEnrichUnknownVerdictKeepsTag(t *testing.T) {
	verifier := &stubVerifier{}
	records := []model.SupplierRecord{{
		Domain: "acme.com",
		Emails: []model.EmailCandidate{
			{Address: "sales@acme.com", Provenance: model.EmailFound},
		},
	}}

	New(WithVerifier(verifier)).Enrich(context.Background(), records)

	require.Len(t, records[0].Emails, 1)
	assert.Equal(t, model.EmailFound, records[0].Emails[0].Provenance)
}

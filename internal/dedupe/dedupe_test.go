package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemsource/supplier-cli/internal/model"
)

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.sigmaaldrich.com/US/en/product", "sigmaaldrich.com"},
		{"https://shop.sigmaaldrich.com/", "sigmaaldrich.com"},
		{"http://supplier.co.uk/page", "supplier.co.uk"},
		{"https://sub.supplier.co.uk", "supplier.co.uk"},
		{"sigmaaldrich.com", "sigmaaldrich.com"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RegistrableDomain(tt.in))
		})
	}
}

func email(addr string, prov model.EmailProvenance) model.EmailCandidate {
	return model.EmailCandidate{Address: addr, Provenance: prov}
}

func TestMergeCollapsesByDomain(t *testing.T) {
	records := []model.SupplierRecord{
		{Name: "Acme Shop", Domain: "acme.com", Confidence: 9,
			Emails: []model.EmailCandidate{email("sales@acme.com", model.EmailFound)}},
		{Name: "Other", Domain: "other.com", Confidence: 7},
		{Name: "Acme Docs", Domain: "acme.com", Confidence: 6,
			Emails: []model.EmailCandidate{email("info@acme.com", model.EmailFound)}},
	}

	out := Merge(records)
	require.Len(t, out, 2)

	assert.Equal(t, "Acme Shop", out[0].Name, "highest-confidence record represents the group")
	assert.Equal(t, 9.0, out[0].Confidence)
	assert.ElementsMatch(t,
		[]model.EmailCandidate{
			email("sales@acme.com", model.EmailFound),
			email("info@acme.com", model.EmailFound),
		},
		out[0].Emails, "group emails are unioned")
	assert.Equal(t, "other.com", out[1].Domain)
}

func TestMergeAdoptsCountry(t *testing.T) {
	records := []model.SupplierRecord{
		{Domain: "acme.com", Confidence: 9, Country: "Unknown"},
		{Domain: "acme.com", Confidence: 5, Country: "Germany"},
	}

	out := Merge(records)
	require.Len(t, out, 1)
	assert.Equal(t, "Germany", out[0].Country)
	assert.Equal(t, 9.0, out[0].Confidence)
}

func TestMergeEmailProvenanceUpgrade(t *testing.T) {
	records := []model.SupplierRecord{
		{Domain: "acme.com", Confidence: 9,
			Emails: []model.EmailCandidate{email("sales@acme.com", model.EmailPattern)}},
		{Domain: "acme.com", Confidence: 8,
			Emails: []model.EmailCandidate{email("SALES@acme.com", model.EmailFound)}},
	}

	out := Merge(records)
	require.Len(t, out, 1)
	require.Len(t, out[0].Emails, 1)
	assert.Equal(t, model.EmailFound, out[0].Emails[0].Provenance,
		"stronger provenance wins for the same address")
}

func TestMergeKeepsDomainlessRecordsApart(t *testing.T) {
	records := []model.SupplierRecord{
		{Name: "First", Confidence: 9},
		{Name: "Between", Domain: "acme.com", Confidence: 8},
		{Name: "Second", Confidence: 7},
	}

	out := Merge(records)
	require.Len(t, out, 3, "records without a registrable domain never group")
	assert.Equal(t, "First", out[0].Name)
	assert.Equal(t, "Second", out[2].Name)
}

func TestMergePreservesOrder(t *testing.T) {
	records := []model.SupplierRecord{
		{Domain: "a.com", Confidence: 9},
		{Domain: "b.com", Confidence: 8},
		{Domain: "a.com", Confidence: 7},
		{Domain: "c.com", Confidence: 6},
	}

	out := Merge(records)
	require.Len(t, out, 3)
	assert.Equal(t, "a.com", out[0].Domain)
	assert.Equal(t, "b.com", out[1].Domain)
	assert.Equal(t, "c.com", out[2].Domain)
}

// Package dedupe collapses supplier records that share a registrable domain.
package dedupe

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/chemsource/supplier-cli/internal/country"
	"github.com/chemsource/supplier-cli/internal/model"
)

// RegistrableDomain returns the eTLD+1 for a URL or bare host, lowercased.
// "shop.sigmaaldrich.com" and "www.sigmaaldrich.com" both map to
// "sigmaaldrich.com". Returns "" when no host can be determined.
func RegistrableDomain(raw string) string {
	host := raw
	if strings.Contains(raw, "/") || strings.Contains(raw, ":") {
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// Merge collapses records sharing a registrable domain into one record each.
//
// Within a group the highest-confidence record is kept as the representative.
// Email lists are unioned across the group (deduplicating by address, with
// stronger provenance winning), and a representative lacking a resolved
// country adopts one from a group member. Input must already be sorted by
// descending confidence; representatives keep that relative order and output
// domains are pairwise distinct.
func Merge(records []model.SupplierRecord) []model.SupplierRecord {
	byDomain := make(map[string]int)
	out := make([]model.SupplierRecord, 0, len(records))

	for _, rec := range records {
		key := rec.Domain
		if key == "" {
			key = RegistrableDomain(rec.Website)
		}
		// No domain identity means no safe grouping: distinct suppliers
		// with unparseable websites must not collapse into one.
		if key == "" {
			out = append(out, rec)
			continue
		}
		idx, seen := byDomain[key]
		if !seen {
			byDomain[key] = len(out)
			out = append(out, rec)
			continue
		}
		rep := &out[idx]
		rep.Emails = unionEmails(rep.Emails, rec.Emails)
		if unresolved(rep.Country) && !unresolved(rec.Country) {
			rep.Country = rec.Country
		}
	}
	return out
}

func unresolved(c string) bool {
	return c == "" || c == country.Unknown
}

// provenanceRank orders email provenance strength.
func provenanceRank(p model.EmailProvenance) int {
	switch p {
	case model.EmailVerified:
		return 2
	case model.EmailFound:
		return 1
	default:
		return 0
	}
}

// unionEmails merges two email lists, deduplicating by lowercased address.
// When the same address appears with different provenance, the stronger tag
// wins. Order of first appearance is preserved.
func unionEmails(a, b []model.EmailCandidate) []model.EmailCandidate {
	index := make(map[string]int, len(a)+len(b))
	out := make([]model.EmailCandidate, 0, len(a)+len(b))
	for _, list := range [][]model.EmailCandidate{a, b} {
		for _, e := range list {
			addr := strings.ToLower(e.Address)
			if i, ok := index[addr]; ok {
				if provenanceRank(e.Provenance) > provenanceRank(out[i].Provenance) {
					out[i].Provenance = e.Provenance
				}
				continue
			}
			index[addr] = len(out)
			out = append(out, model.EmailCandidate{Address: addr, Provenance: e.Provenance})
		}
	}
	return out
}

// Package score turns verified candidates into ranked supplier records by
// combining identifier, evidence-quality, directory, relevance, and contact
// signals into a single confidence value.
package score

import (
	"context"
	"math"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/chemsource/supplier-cli/internal/casmatch"
	"github.com/chemsource/supplier-cli/internal/country"
	"github.com/chemsource/supplier-cli/internal/dedupe"
	"github.com/chemsource/supplier-cli/internal/model"
)

// NeutralRelevance is assumed when the reranker is unavailable. Sitting in
// the middle of the [0, 1] range, it neither boosts nor penalizes.
const NeutralRelevance = 0.5

// Confidence weights. The total of the fixed signals plus the scaled
// relevance term can exceed the cap, so the final value is clamped.
const (
	weightIdentifierInSnippet = 3.0
	weightDatasheetEvidence   = 2.0
	weightCatalogEvidence     = 1.5
	weightKnownDirectory      = 1.0
	weightRelevanceScale      = 4.0
	weightHasEmails           = 0.5
	maxConfidence             = 10.0
)

// directoryDomains are chemical marketplaces and directories whose listings
// are strong supplier signals.
var directoryDomains = []string{
	"buyersguidechem.com",
	"chemondis.com",
	"thomasnet.com",
	"chemspider.com",
	"molport.com",
}

// Input is one verified candidate plus what its landing page showed.
type Input struct {
	Candidate model.Candidate
	PageTitle string
	PageText  string
}

// Scorer builds SupplierRecords from verified candidates.
type Scorer struct {
	reranker Reranker
}

// New creates a Scorer. A nil reranker is allowed; relevance then stays
// neutral for every candidate.
func New(reranker Reranker) *Scorer {
	return &Scorer{reranker: reranker}
}

// ScoreAll converts the inputs that carry matched evidence into supplier
// records. Inputs without a match contribute nothing. Relevance scores come
// from a single batched rerank call; if that fails, every candidate gets the
// neutral score rather than failing the pipeline.
func (s *Scorer) ScoreAll(ctx context.Context, query model.ChemicalQuery, inputs []Input) []model.SupplierRecord {
	matched := make([]Input, 0, len(inputs))
	for _, in := range inputs {
		if in.Candidate.Evidence != nil && in.Candidate.Evidence.Matched() {
			matched = append(matched, in)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	relevance := s.relevanceScores(ctx, query, matched)

	records := make([]model.SupplierRecord, 0, len(matched))
	for i, in := range matched {
		rec := buildRecord(in, query.CAS, relevance[i])
		rec.Order = i
		records = append(records, rec)
	}
	return records
}

func (s *Scorer) relevanceScores(ctx context.Context, query model.ChemicalQuery, inputs []Input) []float64 {
	neutral := make([]float64, len(inputs))
	for i := range neutral {
		neutral[i] = NeutralRelevance
	}
	if s.reranker == nil {
		return neutral
	}

	docs := make([]string, len(inputs))
	for i, in := range inputs {
		docs[i] = in.Candidate.SnippetText()
	}

	scores, err := s.reranker.Scores(ctx, query.SearchText(), docs)
	if err != nil {
		zap.L().Warn("score: rerank unavailable, using neutral relevance",
			zap.Error(err),
		)
		return neutral
	}
	return scores
}

func buildRecord(in Input, identifier string, relevance float64) model.SupplierRecord {
	cand := in.Candidate
	evidenceURL := strings.ToLower(cand.Evidence.EvidenceURL)

	confidence := 0.0
	if casmatch.Matches(cand.SnippetText(), identifier) {
		confidence += weightIdentifierInSnippet
	}
	if containsAny(evidenceURL, "sds", "tds", "datasheet") {
		confidence += weightDatasheetEvidence
	} else if containsAny(evidenceURL, "catalog", "product") {
		confidence += weightCatalogEvidence
	}
	if containsAny(evidenceURL, directoryDomains...) {
		confidence += weightKnownDirectory
	}
	confidence += weightRelevanceScale * relevance
	if len(cand.Emails) > 0 {
		confidence += weightHasEmails
	}
	confidence = math.Min(maxConfidence, math.Round(confidence*100)/100)

	domain := dedupe.RegistrableDomain(cand.URL)
	emails := make([]model.EmailCandidate, 0, len(cand.Emails))
	for _, addr := range cand.Emails {
		emails = append(emails, model.EmailCandidate{
			Address:    addr,
			Provenance: model.EmailFound,
		})
	}

	return model.SupplierRecord{
		Name:       supplierName(in.PageTitle, cand.URL),
		Website:    websiteOf(cand.URL),
		Domain:     domain,
		Country:    country.Detect(cand.URL, in.PageText),
		Evidence:   *cand.Evidence,
		Emails:     emails,
		Confidence: confidence,
	}
}

// supplierName takes the page title up to the first "|", truncated to 120
// runes, falling back to the host when the title is empty.
func supplierName(title, rawURL string) string {
	name := title
	if i := strings.Index(name, "|"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > 120 {
		name = string(runes[:120])
	}
	if name == "" {
		if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
		return rawURL
	}
	return name
}

// websiteOf canonicalizes a candidate URL to scheme plus host.
func websiteOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// evidenceRank orders evidence quality for tie-breaking: direct matches beat
// followed-link matches.
func evidenceRank(status model.EvidenceStatus) int {
	switch status {
	case model.EvidenceDirectMatch:
		return 2
	case model.EvidenceFollowedLinkMatch:
		return 1
	default:
		return 0
	}
}

// Rank sorts records by descending confidence, breaking ties by evidence
// quality and then by original candidate order. Stable and deterministic.
func Rank(records []model.SupplierRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Confidence != records[j].Confidence {
			return records[i].Confidence > records[j].Confidence
		}
		ri, rj := evidenceRank(records[i].Evidence.Status), evidenceRank(records[j].Evidence.Status)
		if ri != rj {
			return ri > rj
		}
		return records[i].Order < records[j].Order
	})
}

package score

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemsource/supplier-cli/internal/model"
)

type fixedReranker struct {
	scores []float64
	err    error
	calls  int
}

func (f *fixedReranker) Scores(_ context.Context, _ string, docs []string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.scores != nil {
		return f.scores, nil
	}
	out := make([]float64, len(docs))
	for i := range out {
		out[i] = NeutralRelevance
	}
	return out, nil
}

func query() model.ChemicalQuery {
	return model.ChemicalQuery{Name: "Acetone", CAS: "67-64-1", Limit: 10}
}

func matchedInput(url, title, snippet, evidenceURL string, emails ...string) Input {
	return Input{
		Candidate: model.Candidate{
			URL:     url,
			Title:   title,
			Snippet: snippet,
			Emails:  emails,
			Evidence: &model.Evidence{
				Status:      model.EvidenceDirectMatch,
				EvidenceURL: evidenceURL,
				MatchedText: "67-64-1",
			},
		},
		PageTitle: title,
	}
}

func TestScoreAllSkipsUnmatched(t *testing.T) {
	inputs := []Input{
		matchedInput("https://a.com/p", "A", "acetone 67-64-1", "https://a.com/p"),
		{Candidate: model.Candidate{
			URL:      "https://b.com",
			Evidence: &model.Evidence{Status: model.EvidenceNoMatch},
		}},
		{Candidate: model.Candidate{
			URL:      "https://c.com",
			Evidence: &model.Evidence{Status: model.EvidenceFetchFailed},
		}},
	}

	s := New(&fixedReranker{})
	records := s.ScoreAll(context.Background(), query(), inputs)
	require.Len(t, records, 1)
	assert.Equal(t, "a.com", records[0].Domain)
}

func TestConfidenceSignals(t *testing.T) {
	rerank := &fixedReranker{scores: []float64{1.0}}
	s := New(rerank)

	// Every signal on: CAS in snippet (+3), SDS evidence URL (+2),
	// directory domain (+1), relevance (4*1.0), emails (+0.5) = 10.5 → 10.
	in := matchedInput(
		"https://www.buyersguidechem.com/supplier",
		"Acme",
		"Acetone CAS 67-64-1 supplier listing",
		"https://www.buyersguidechem.com/sds/acetone.pdf",
		"sales@acme.com",
	)
	records := s.ScoreAll(context.Background(), query(), []Input{in})
	require.Len(t, records, 1)
	assert.Equal(t, 10.0, records[0].Confidence, "score must be capped at 10")
}

func TestConfidenceCatalogBeatsNothingButNotDatasheet(t *testing.T) {
	s := New(nil)

	sds := matchedInput("https://a.com", "A", "no identifier here", "https://a.com/sds.pdf")
	catalog := matchedInput("https://b.com", "B", "no identifier here", "https://b.com/catalog")
	plain := matchedInput("https://c.com", "C", "no identifier here", "https://c.com/page")

	records := s.ScoreAll(context.Background(), query(), []Input{sds, catalog, plain})
	require.Len(t, records, 3)

	// Neutral relevance contributes 2.0 to each.
	assert.Equal(t, 4.0, records[0].Confidence)
	assert.Equal(t, 3.5, records[1].Confidence)
	assert.Equal(t, 2.0, records[2].Confidence)
}

func TestRerankFailureFallsBackToNeutral(t *testing.T) {
	rerank := &fixedReranker{err: eris.New("circuit breaker is open")}
	s := New(rerank)

	in := matchedInput("https://a.com", "A", "nothing relevant", "https://a.com/page")
	records := s.ScoreAll(context.Background(), query(), []Input{in})
	require.Len(t, records, 1)
	// 4 * 0.5 neutral relevance only.
	assert.Equal(t, 2.0, records[0].Confidence)
}

func TestNoRerankCallWithoutMatches(t *testing.T) {
	rerank := &fixedReranker{}
	s := New(rerank)

	inputs := []Input{{Candidate: model.Candidate{
		URL:      "https://b.com",
		Evidence: &model.Evidence{Status: model.EvidenceNoMatch},
	}}}
	records := s.ScoreAll(context.Background(), query(), inputs)
	assert.Empty(t, records)
	assert.Zero(t, rerank.calls)
}

func TestSupplierName(t *testing.T) {
	assert.Equal(t, "Acme Chemicals",
		supplierName("Acme Chemicals | Industrial Solvents", "https://acme.com"))
	assert.Equal(t, "acme.com", supplierName("", "https://acme.com/page"))
	long := strings.Repeat("x", 200)
	assert.Len(t, supplierName(long, "https://acme.com"), 120)
}

func TestWebsiteOf(t *testing.T) {
	assert.Equal(t, "https://shop.acme.com", websiteOf("https://shop.acme.com/products/acetone?id=1"))
	assert.Equal(t, "http://acme.com", websiteOf("http://acme.com/"))
}

func TestRank(t *testing.T) {
	records := []model.SupplierRecord{
		{Domain: "a.com", Confidence: 5, Order: 0,
			Evidence: model.Evidence{Status: model.EvidenceFollowedLinkMatch}},
		{Domain: "b.com", Confidence: 8, Order: 1,
			Evidence: model.Evidence{Status: model.EvidenceFollowedLinkMatch}},
		{Domain: "c.com", Confidence: 5, Order: 2,
			Evidence: model.Evidence{Status: model.EvidenceDirectMatch}},
		{Domain: "d.com", Confidence: 5, Order: 3,
			Evidence: model.Evidence{Status: model.EvidenceDirectMatch}},
	}

	Rank(records)

	domains := []string{records[0].Domain, records[1].Domain, records[2].Domain, records[3].Domain}
	// Highest confidence first; within the 5s, direct matches beat the
	// followed-link match, then original order decides.
	assert.Equal(t, []string{"b.com", "c.com", "d.com", "a.com"}, domains)
}

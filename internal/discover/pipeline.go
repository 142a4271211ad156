// Package discover orchestrates the full supplier discovery pipeline:
// plan queries, verify candidate pages for identifier evidence, score,
// deduplicate, filter by country policy, enrich contacts, and rank.
package discover

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chemsource/supplier-cli/internal/country"
	"github.com/chemsource/supplier-cli/internal/dedupe"
	"github.com/chemsource/supplier-cli/internal/model"
	"github.com/chemsource/supplier-cli/internal/resilience"
	"github.com/chemsource/supplier-cli/internal/score"
	"github.com/chemsource/supplier-cli/internal/verify"
)

// CandidatePlanner expands a chemical query into candidate URLs.
type CandidatePlanner interface {
	Plan(ctx context.Context, query model.ChemicalQuery) ([]model.Candidate, error)
}

// EvidenceChecker verifies one candidate URL for identifier evidence.
type EvidenceChecker interface {
	Verify(ctx context.Context, candidateURL, identifier string) verify.Result
}

// RecordScorer turns verified candidates into supplier records.
type RecordScorer interface {
	ScoreAll(ctx context.Context, query model.ChemicalQuery, inputs []score.Input) []model.SupplierRecord
}

// EmailEnricher completes supplier contact emails in place.
type EmailEnricher interface {
	Enrich(ctx context.Context, records []model.SupplierRecord)
}

// Report is the outcome of one discovery run.
type Report struct {
	Result model.DiscoveryResult `json:"result"`
	// Failed lists candidates whose pages could not be fetched, for
	// later retry.
	Failed []resilience.DLQEntry `json:"failed,omitempty"`
	// Stats summarize the run for logging and persistence.
	Stats Stats `json:"stats"`
}

// Stats counts pipeline stages for one run. Verified counts candidates with
// matching evidence only; fetched-but-unmatched candidates appear in neither
// Verified nor FetchFailed.
type Stats struct {
	Candidates  int           `json:"candidates"`
	Verified    int           `json:"verified"`
	FetchFailed int           `json:"fetch_failed"`
	Suppliers   int           `json:"suppliers"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// Pipeline wires the discovery stages together.
type Pipeline struct {
	planner          CandidatePlanner
	verifier         EvidenceChecker
	scorer           RecordScorer
	enricher         EmailEnricher
	fetchConcurrency int
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithFetchConcurrency bounds simultaneous page verifications.
func WithFetchConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.fetchConcurrency = n
		}
	}
}

// New creates a Pipeline from its collaborators.
func New(planner CandidatePlanner, verifier EvidenceChecker, scorer RecordScorer, enricher EmailEnricher, opts ...Option) *Pipeline {
	p := &Pipeline{
		planner:          planner,
		verifier:         verifier,
		scorer:           scorer,
		enricher:         enricher,
		fetchConcurrency: 8,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Discover runs the full pipeline for one chemical query.
//
// Zero surviving candidates yield an empty supplier list, not an error; the
// only error cases are invalid input, a failed plan, and context
// cancellation. Verification is a scatter/gather barrier: ranking happens
// only after every fetch completes, so output order is deterministic no
// matter which fetches finish first.
func (p *Pipeline) Discover(ctx context.Context, query model.ChemicalQuery) (*Report, error) {
	start := time.Now()

	if err := query.Validate(); err != nil {
		return nil, err
	}

	candidates, err := p.planner.Plan(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "discover: plan queries")
	}

	report := &Report{
		Result: model.DiscoveryResult{
			ChemicalName: query.Name,
			CAS:          query.CAS,
			Suppliers:    []model.SupplierRecord{},
		},
		Stats: Stats{Candidates: len(candidates)},
	}
	if len(candidates) == 0 {
		report.Stats.Elapsed = time.Since(start)
		return report, nil
	}

	results, err := p.verifyAll(ctx, query.CAS, candidates)
	if err != nil {
		return nil, err
	}

	inputs := make([]score.Input, 0, len(candidates))
	for i := range candidates {
		cand := candidates[i]
		res := results[i]
		cand.Evidence = &res.Evidence
		cand.Emails = res.Emails

		switch {
		case res.Evidence.Status == model.EvidenceFetchFailed:
			report.Stats.FetchFailed++
			report.Failed = append(report.Failed, failedEntry(cand, res.Err))
		case res.Evidence.Matched():
			report.Stats.Verified++
		}

		in := score.Input{Candidate: cand}
		if res.Page != nil {
			in.PageTitle = res.Page.Title
			in.PageText = res.Page.Text
		}
		inputs = append(inputs, in)
	}

	records := p.scorer.ScoreAll(ctx, query, inputs)
	score.Rank(records)
	records = dedupe.Merge(records)
	records = country.Filter(records, query.AllowedCountries, query.DeniedCountries)
	p.enricher.Enrich(ctx, records)
	score.Rank(records)

	if query.Limit > 0 && len(records) > query.Limit {
		records = records[:query.Limit]
	}
	if records == nil {
		records = []model.SupplierRecord{}
	}

	report.Result.Suppliers = records
	report.Stats.Suppliers = len(records)
	report.Stats.Elapsed = time.Since(start)

	zap.L().Info("discover: run complete",
		zap.String("chemical", query.Name),
		zap.String("cas", query.CAS),
		zap.Int("candidates", report.Stats.Candidates),
		zap.Int("verified", report.Stats.Verified),
		zap.Int("fetch_failed", report.Stats.FetchFailed),
		zap.Int("suppliers", report.Stats.Suppliers),
		zap.Duration("elapsed", report.Stats.Elapsed),
	)

	return report, nil
}

// verifyAll fans candidate verification out over a bounded worker pool and
// gathers results index-aligned with the input.
func (p *Pipeline) verifyAll(ctx context.Context, identifier string, candidates []model.Candidate) ([]verify.Result, error) {
	results := make([]verify.Result, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.fetchConcurrency)
	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			results[i] = p.verifier.Verify(gctx, cand.URL, identifier)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "discover: verification canceled")
	}
	return results, nil
}

func failedEntry(cand model.Candidate, fetchErr error) resilience.DLQEntry {
	now := time.Now().UTC()
	msg := "fetch failed"
	if fetchErr != nil {
		msg = fetchErr.Error()
	}
	return resilience.DLQEntry{
		ID:           uuid.NewString(),
		Candidate:    cand,
		Error:        msg,
		ErrorType:    resilience.ClassifyError(fetchErr),
		MaxRetries:   3,
		NextRetryAt:  now.Add(time.Hour),
		CreatedAt:    now,
		LastFailedAt: now,
	}
}

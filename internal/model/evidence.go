package model

// EvidenceStatus classifies the verification outcome for a candidate.
type EvidenceStatus string

const (
	// EvidenceDirectMatch means the identifier was found on the candidate's own page.
	EvidenceDirectMatch EvidenceStatus = "DIRECT_MATCH"
	// EvidenceFollowedLinkMatch means the identifier was found on a followed
	// same-site catalog/SDS link.
	EvidenceFollowedLinkMatch EvidenceStatus = "FOLLOWED_LINK_MATCH"
	// EvidenceNoMatch means no page demonstrably listed the identifier.
	EvidenceNoMatch EvidenceStatus = "NO_MATCH"
	// EvidenceFetchFailed means the primary page could not be fetched or rendered.
	EvidenceFetchFailed EvidenceStatus = "FETCH_FAILED"
)

// Evidence is the verification outcome for one candidate.
//
// Invariant: DIRECT_MATCH and FOLLOWED_LINK_MATCH always carry a non-empty
// EvidenceURL; NO_MATCH and FETCH_FAILED never do.
type Evidence struct {
	Status      EvidenceStatus `json:"status"`
	EvidenceURL string         `json:"evidence_url,omitempty"`
	MatchedText string         `json:"matched_text,omitempty"`
}

// Matched reports whether this evidence ties the candidate to the identifier.
func (e Evidence) Matched() bool {
	return e.Status == EvidenceDirectMatch || e.Status == EvidenceFollowedLinkMatch
}

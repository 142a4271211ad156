package model

// Candidate is a provisional supplier lead surfaced by search. It is created
// by the query planner and mutated only by the evidence verifier, which
// attaches the verification outcome and any emails seen on the way.
type Candidate struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	Query    string `json:"query"`    // the query variant that surfaced this candidate
	Position int    `json:"position"` // merge order after deterministic flattening

	Evidence *Evidence `json:"evidence,omitempty"`
	Emails   []string  `json:"emails,omitempty"` // raw addresses scraped during verification
}

// SnippetText returns title and snippet joined for relevance scoring.
func (c Candidate) SnippetText() string {
	if c.Title == "" {
		return c.Snippet
	}
	if c.Snippet == "" {
		return c.Title
	}
	return c.Title + " " + c.Snippet
}

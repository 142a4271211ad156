package model

// EmailProvenance classifies how an email address was obtained.
type EmailProvenance string

const (
	// EmailFound was scraped directly from a verified page.
	EmailFound EmailProvenance = "FOUND"
	// EmailPattern was generated from a common address pattern at the domain.
	EmailPattern EmailProvenance = "PATTERN"
	// EmailVerified passed a deliverability check.
	EmailVerified EmailProvenance = "VERIFIED"
)

// EmailCandidate is one contact address with its provenance tag.
type EmailCandidate struct {
	Address    string          `json:"address"`
	Provenance EmailProvenance `json:"provenance"`
}

// SupplierRecord is the unit returned to callers. Identity for deduplication
// is the registrable domain of Website. Created by the confidence scorer,
// mutated only by the deduplicator and the email enricher, immutable once the
// orchestrator emits it.
type SupplierRecord struct {
	Name       string           `json:"supplier_name"`
	Website    string           `json:"website"`
	Domain     string           `json:"domain"`
	Country    string           `json:"country,omitempty"`
	Evidence   Evidence         `json:"evidence"`
	Emails     []EmailCandidate `json:"emails,omitempty"`
	Confidence float64          `json:"confidence_score"`

	// Order preserves the candidate's merge position for deterministic
	// tie-breaking in the final ranking.
	Order int `json:"-"`
}

// DiscoveryResult is the persisted artifact of one discovery request.
type DiscoveryResult struct {
	ChemicalName string           `json:"chemical_name"`
	CAS          string           `json:"cas_number"`
	Suppliers    []SupplierRecord `json:"suppliers"`
}

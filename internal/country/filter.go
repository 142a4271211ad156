package country

import "github.com/chemsource/supplier-cli/internal/model"

// Filter applies allow/deny country policies to supplier records, preserving
// input order.
//
// An allow-list keeps only records resolved to a listed country; unknowns are
// dropped because they cannot prove membership. A deny-list drops records
// resolved to a listed country; unknowns are kept because absence of evidence
// is not exclusion. The two lists are mutually exclusive upstream.
func Filter(records []model.SupplierRecord, allowed, denied []string) []model.SupplierRecord {
	if len(allowed) == 0 && len(denied) == 0 {
		return records
	}

	allowSet := toSet(allowed)
	denySet := toSet(denied)

	out := records[:0:0]
	for _, rec := range records {
		resolved := rec.Country
		if resolved == "" {
			resolved = Unknown
		}
		if len(allowSet) > 0 {
			if _, ok := allowSet[resolved]; ok {
				out = append(out, rec)
			}
			continue
		}
		if _, ok := denySet[resolved]; !ok || resolved == Unknown {
			out = append(out, rec)
		}
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[CanonicalName(item)] = struct{}{}
	}
	return set
}

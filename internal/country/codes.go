package country

import "strings"

// codeNames maps ISO-ish short codes accepted on the command line and API to
// canonical country names.
var codeNames = map[string]string{
	"us":  "United States",
	"usa": "United States",
	"uk":  "United Kingdom",
	"gb":  "United Kingdom",
	"de":  "Germany",
	"fr":  "France",
	"it":  "Italy",
	"es":  "Spain",
	"nl":  "Netherlands",
	"be":  "Belgium",
	"ch":  "Switzerland",
	"at":  "Austria",
	"se":  "Sweden",
	"dk":  "Denmark",
	"no":  "Norway",
	"fi":  "Finland",
	"ca":  "Canada",
	"au":  "Australia",
	"nz":  "New Zealand",
	"jp":  "Japan",
	"cn":  "China",
	"kr":  "South Korea",
	"in":  "India",
	"sg":  "Singapore",
	"hk":  "Hong Kong",
	"tw":  "Taiwan",
	"br":  "Brazil",
	"mx":  "Mexico",
	"ru":  "Russia",
}

// Codes returns a copy of the code-to-name table, for listing endpoints.
func Codes() map[string]string {
	out := make(map[string]string, len(codeNames))
	for k, v := range codeNames {
		out[k] = v
	}
	return out
}

// CanonicalName resolves a user-supplied country code or name to its
// canonical form. Unrecognized codes are title-cased and passed through, so
// "portugal" still filters against a detected "Portugal".
func CanonicalName(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if name, ok := codeNames[key]; ok {
		return name
	}
	return titleCase(key)
}

// CanonicalNames resolves a list of codes or names, dropping empties.
func CanonicalNames(items []string) []string {
	var out []string
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		out = append(out, CanonicalName(item))
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

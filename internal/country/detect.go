// Package country resolves a supplier's likely country from its website and
// page content, and applies allow/deny filtering policies.
package country

import (
	"net/url"
	"regexp"
	"strings"
)

// Unknown is the resolved value when no signal is strong enough.
const Unknown = "Unknown"

// suffixNames maps domain suffixes to countries. Generic TLDs such as .com,
// .org, and .net are deliberately absent: a .com site can be anywhere.
var suffixNames = map[string]string{
	".us":    "United States",
	".uk":    "United Kingdom",
	".co.uk": "United Kingdom",
	".de":    "Germany",
	".fr":    "France",
	".it":    "Italy",
	".es":    "Spain",
	".nl":    "Netherlands",
	".be":    "Belgium",
	".ch":    "Switzerland",
	".at":    "Austria",
	".se":    "Sweden",
	".dk":    "Denmark",
	".no":    "Norway",
	".fi":    "Finland",
	".ca":    "Canada",
	".au":    "Australia",
	".nz":    "New Zealand",
	".jp":    "Japan",
	".cn":    "China",
	".kr":    "South Korea",
	".in":    "India",
	".sg":    "Singapore",
	".hk":    "Hong Kong",
	".tw":    "Taiwan",
	".br":    "Brazil",
	".mx":    "Mexico",
	".ru":    "Russia",
}

// pathHints map country-specific URL path segments and subdomain prefixes to
// countries, for international sites that segment by region.
var pathHints = []struct {
	fragment string
	name     string
}{
	{"/us/", "United States"},
	{"usa.", "United States"},
	{"/uk/", "United Kingdom"},
	{"gb.", "United Kingdom"},
	{"/de/", "Germany"},
	{"/fr/", "France"},
	{"/ca/", "Canada"},
	{"/au/", "Australia"},
	{"/jp/", "Japan"},
	{"/cn/", "China"},
	{"/china/", "China"},
	{"/in/", "India"},
	{"/india/", "India"},
	{"/sg/", "Singapore"},
}

// textPatterns are address-style country mentions. Ordered so that more
// specific countries match before substring-prone ones.
var textPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"United States", regexp.MustCompile(`\busa\b|united states|\bu\.s\.a\b`)},
	{"United Kingdom", regexp.MustCompile(`united kingdom|\buk\b|britain|england|scotland|wales`)},
	{"Germany", regexp.MustCompile(`germany|deutschland`)},
	{"France", regexp.MustCompile(`\bfrance\b|français`)},
	{"China", regexp.MustCompile(`\bchina\b|中国|beijing|shanghai`)},
	{"Japan", regexp.MustCompile(`\bjapan\b|日本|tokyo|osaka`)},
	{"India", regexp.MustCompile(`\bindia\b|mumbai|delhi|bangalore`)},
	{"Canada", regexp.MustCompile(`\bcanada\b|toronto|vancouver`)},
	{"Australia", regexp.MustCompile(`\baustralia\b|sydney|melbourne`)},
	{"Netherlands", regexp.MustCompile(`netherlands|\bdutch\b|amsterdam`)},
	{"Switzerland", regexp.MustCompile(`switzerland|\bswiss\b|zurich`)},
	{"Singapore", regexp.MustCompile(`singapore`)},
	{"South Korea", regexp.MustCompile(`south korea|\bkorea\b|seoul`)},
	{"Italy", regexp.MustCompile(`\bitaly\b|milano|\brome\b`)},
	{"Spain", regexp.MustCompile(`\bspain\b|madrid|barcelona`)},
	{"Belgium", regexp.MustCompile(`belgium|brussels`)},
	{"Sweden", regexp.MustCompile(`\bsweden\b|stockholm`)},
	{"Denmark", regexp.MustCompile(`denmark|copenhagen`)},
	{"Norway", regexp.MustCompile(`\bnorway\b|\boslo\b`)},
	{"Finland", regexp.MustCompile(`finland|helsinki`)},
}

// Detect resolves a country from a website URL and its page text.
// Precedence: explicit textual signal, then URL path hints, then domain
// suffix, then Unknown. Generic TLDs never imply a country.
func Detect(rawURL, pageText string) string {
	if name := fromText(pageText); name != Unknown {
		return name
	}
	if name := fromURL(rawURL); name != Unknown {
		return name
	}
	return Unknown
}

func fromText(pageText string) string {
	if pageText == "" {
		return Unknown
	}
	lower := strings.ToLower(pageText)
	for _, p := range textPatterns {
		if p.re.MatchString(lower) {
			return p.name
		}
	}
	return Unknown
}

func fromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return Unknown
	}
	host := strings.ToLower(u.Hostname())
	full := strings.ToLower(rawURL)

	for _, hint := range pathHints {
		if strings.HasSuffix(hint.fragment, ".") {
			if strings.HasPrefix(host, hint.fragment) {
				return hint.name
			}
			continue
		}
		if strings.Contains(full, hint.fragment) {
			return hint.name
		}
	}

	// Longest suffix first so .co.uk wins over .uk.
	if name, ok := suffixNames[lastTwoLabels(host)]; ok {
		return name
	}
	if name, ok := suffixNames[lastLabel(host)]; ok {
		return name
	}
	return Unknown
}

func lastLabel(host string) string {
	if i := strings.LastIndex(host, "."); i >= 0 {
		return host[i:]
	}
	return ""
}

func lastTwoLabels(host string) string {
	i := strings.LastIndex(host, ".")
	if i <= 0 {
		return ""
	}
	j := strings.LastIndex(host[:i], ".")
	if j < 0 {
		return ""
	}
	return host[j:]
}

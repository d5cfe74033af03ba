package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	corporateSuffixes = map[string]struct{}{"fc": {}, "afc": {}, "cf": {}, "sc": {}}
	corporatePrefixes = map[string]struct{}{"fc": {}, "afc": {}}
)

// defaultTeamAliases map normalized short forms to the normalized canonical
// name. Keys and values are already in normalized form.
var defaultTeamAliases = map[string]string{
	"man united":           "manchester united",
	"man city":             "manchester city",
	"spurs":                "tottenham hotspur",
	"tottenham":            "tottenham hotspur",
	"wolves":               "wolverhampton wanderers",
	"wolverhampton":        "wolverhampton wanderers",
	"brighton":             "brighton and hove albion",
	"brighton hove albion": "brighton and hove albion",
	"newcastle":            "newcastle united",
	"west ham":             "west ham united",
	"nottm forest":         "nottingham forest",
	"notts forest":         "nottingham forest",
	"leicester":            "leicester city",
	"leeds":                "leeds united",
	"ipswich":              "ipswich town",
	"luton":                "luton town",
	"sheffield weds":       "sheffield wednesday",
	"west brom":            "west bromwich albion",
	"qpr":                  "queens park rangers",
}

// TeamNormalizer folds display names into the comparison form used for merge
// keys and subject matching. It is safe for concurrent use.
type TeamNormalizer struct {
	aliases map[string]string
}

// NewTeamNormalizer builds a normalizer with the default alias table extended
// by extra. Extra entries may be given in display form.
func NewTeamNormalizer(extra map[string]string) *TeamNormalizer {
	aliases := make(map[string]string, len(defaultTeamAliases)+len(extra))
	for alias, canonical := range defaultTeamAliases {
		aliases[alias] = canonical
	}

	n := &TeamNormalizer{aliases: aliases}
	for alias, canonical := range extra {
		key := n.fold(alias)
		value := n.fold(canonical)
		if key == "" || value == "" {
			continue
		}
		aliases[key] = value
	}
	return n
}

func (n *TeamNormalizer) Normalize(name string) string {
	folded := n.fold(name)
	if canonical, ok := n.aliases[folded]; ok {
		return canonical
	}
	return folded
}

// Same reports whether two display names refer to the same team.
func (n *TeamNormalizer) Same(a, b string) bool {
	left := n.Normalize(a)
	return left != "" && left == n.Normalize(b)
}

func (n *TeamNormalizer) fold(name string) string {
	value := stripDiacritics(strings.ToLower(strings.TrimSpace(name)))
	value = strings.ReplaceAll(value, "&", " and ")

	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r == '\'' || r == '’' || r == '.':
			// "Nott'm" and "A.F.C." keep their letters together.
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	tokens := strings.Fields(b.String())
	for i, token := range tokens {
		if token == "utd" {
			tokens[i] = "united"
		}
	}
	for len(tokens) > 1 {
		if _, ok := corporateSuffixes[tokens[len(tokens)-1]]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	for len(tokens) > 1 {
		if _, ok := corporatePrefixes[tokens[0]]; !ok {
			break
		}
		tokens = tokens[1:]
	}

	return strings.Join(tokens, " ")
}

func stripDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// Package postcode maps free-text trip locations to UK outward postcodes
// ("UB3", "W1A", "SW19"), the coarse location key the overtime rules use.
package postcode

import (
	"regexp"
	"strings"
)

// DefaultHome is the outward code of the worker's residence.
const DefaultHome = "UB3"

var (
	fullRe    = regexp.MustCompile(`(?i)\b([A-Z]{1,2}[0-9R][0-9A-Z]?) ?[0-9][ABD-HJLNP-UW-Z]{2}\b`)
	outwardRe = regexp.MustCompile(`(?i)\b([A-Z]{1,2}[0-9R][0-9A-Z]?)\b`)
	exactRe   = regexp.MustCompile(`(?i)^[A-Z]{1,2}[0-9R][0-9A-Z]?$`)
)

// Alias maps a named place to a fixed outward code. Match is compared
// case-insensitively as a substring of the trimmed location text.
type Alias struct {
	Match string
	Code  string
}

// DefaultAliases are the named business locations recognised out of the box.
var DefaultAliases = []Alias{
	{Match: "rico pudo", Code: "UB7"},
}

// Normalizer turns location text into an outward code.
// The zero value is not usable; construct with New.
type Normalizer struct {
	home    string
	aliases []Alias
}

// New returns a Normalizer whose "home" token resolves to home.
func New(home string, aliases ...Alias) *Normalizer {
	n := &Normalizer{home: strings.ToUpper(strings.TrimSpace(home))}
	for _, a := range aliases {
		n.aliases = append(n.aliases, Alias{
			Match: strings.ToLower(strings.TrimSpace(a.Match)),
			Code:  strings.ToUpper(strings.TrimSpace(a.Code)),
		})
	}
	return n
}

// Home returns the outward code that "home" resolves to.
func (n *Normalizer) Home() string {
	return n.home
}

// Normalize returns the outward code for text, or "" when nothing matches.
//
// Order: the literal "home", then aliases, then a full postcode (outward part
// only), then a bare outward code anywhere in the text.
func (n *Normalizer) Normalize(text string) string {
	loc := strings.ToLower(strings.TrimSpace(text))
	if loc == "" {
		return ""
	}
	if loc == "home" {
		return n.home
	}
	for _, a := range n.aliases {
		if a.Match != "" && strings.Contains(loc, a.Match) {
			return a.Code
		}
	}
	if m := fullRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := outwardRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// ValidOutward reports whether code is shaped like an outward postcode.
func ValidOutward(code string) bool {
	return exactRe.MatchString(strings.TrimSpace(code))
}

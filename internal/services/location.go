package services

import (
	"regexp"
	"strings"
)

// Location is a free-text place split into city and country parts.
type Location struct {
	City    string
	Country string
}

// ParseLocation splits s on its first comma into city and country. Without a
// comma the whole token is used for both, leaving the country decision to
// IsCountry.
func ParseLocation(s string) Location {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}
	}

	city, country, found := strings.Cut(s, ",")
	if !found {
		return Location{City: s, Country: s}
	}

	return Location{
		City:    strings.TrimSpace(city),
		Country: strings.TrimSpace(country),
	}
}

// IsEmpty reports whether the input named no place at all.
func (l Location) IsEmpty() bool {
	return l.City == "" && l.Country == ""
}

// HasCountryHint reports whether the input named a country separately from
// the city, as in "Lyon, France".
func (l Location) HasCountryHint() bool {
	return l.Country != "" && !strings.EqualFold(l.City, l.Country)
}

// Token returns the city part, or the country part when there is no city.
func (l Location) Token() string {
	if l.City != "" {
		return l.City
	}
	return l.Country
}

type countryGroup struct {
	name    string
	aliases []string
}

// substringMinLen is the shortest token or alias considered for partial
// country matches.
const substringMinLen = 4

var countryTable = buildCountryTable([][]string{
	{"United States", "usa", "us", "america", "united states of america"},
	{"United Kingdom", "uk", "britain", "great britain", "england", "scotland", "wales", "gb"},
	{"United Arab Emirates", "uae", "emirates"},
	{"Germany", "deutschland"},
	{"France"},
	{"Spain", "españa", "espana"},
	{"Italy", "italia"},
	{"Netherlands", "holland", "the netherlands"},
	{"Belgium", "belgique"},
	{"Switzerland", "schweiz", "suisse"},
	{"Austria", "osterreich"},
	{"Portugal"},
	{"Ireland", "eire"},
	{"Sweden", "sverige"},
	{"Norway", "norge"},
	{"Denmark", "danmark"},
	{"Finland", "suomi"},
	{"Poland", "polska"},
	{"Greece", "hellas"},
	{"Turkey", "türkiye", "turkiye"},
	{"Russia", "russian federation"},
	{"Ukraine"},
	{"Canada"},
	{"Mexico", "méxico"},
	{"Brazil", "brasil"},
	{"Argentina"},
	{"Colombia"},
	{"Chile"},
	{"Peru", "perú"},
	{"Australia"},
	{"New Zealand", "nz", "aotearoa"},
	{"India", "bharat"},
	{"Pakistan"},
	{"Bangladesh"},
	{"China", "prc", "people's republic of china"},
	{"Japan", "nippon"},
	{"South Korea", "korea", "republic of korea"},
	{"Singapore"},
	{"Malaysia"},
	{"Thailand"},
	{"Vietnam", "viet nam"},
	{"Indonesia"},
	{"Philippines"},
	{"Saudi Arabia", "ksa"},
	{"Qatar"},
	{"Israel"},
	{"Egypt"},
	{"Morocco", "maroc"},
	{"Nigeria"},
	{"Ghana"},
	{"Kenya"},
	{"Ethiopia"},
	{"South Africa", "rsa"},
})

var countryIndex = buildCountryIndex(countryTable)

func buildCountryTable(rows [][]string) []countryGroup {
	groups := make([]countryGroup, 0, len(rows))
	for _, row := range rows {
		aliases := make([]string, 0, len(row))
		for _, alias := range row {
			aliases = append(aliases, strings.ToLower(alias))
		}
		groups = append(groups, countryGroup{name: row[0], aliases: aliases})
	}
	return groups
}

func buildCountryIndex(groups []countryGroup) map[string]int {
	index := make(map[string]int)
	for i, group := range groups {
		for _, alias := range group.aliases {
			if _, taken := index[alias]; !taken {
				index[alias] = i
			}
		}
	}
	return index
}

// lookupCountry resolves token to a country group: exact alias first, then
// partial matches when both sides are long enough. A token containing an
// alias only counts when the alias appears as whole words.
func lookupCountry(token string) (*countryGroup, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return nil, false
	}

	if i, ok := countryIndex[t]; ok {
		return &countryTable[i], true
	}

	if len([]rune(t)) < substringMinLen {
		return nil, false
	}

	for i := range countryTable {
		for _, alias := range countryTable[i].aliases {
			if len([]rune(alias)) < substringMinLen {
				continue
			}
			if strings.Contains(alias, t) || containsWords(t, alias) {
				return &countryTable[i], true
			}
		}
	}

	return nil, false
}

func containsWords(s, sub string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], sub)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(sub)
		if (start == 0 || s[start-1] == ' ') && (end == len(s) || s[end] == ' ') {
			return true
		}
		i = start + 1
	}
}

// IsCountry reports whether token names a known country.
func IsCountry(token string) bool {
	_, ok := lookupCountry(token)
	return ok
}

// CanonicalCountry returns the canonical country name for token.
func CanonicalCountry(token string) (string, bool) {
	group, ok := lookupCountry(token)
	if !ok {
		return "", false
	}
	return group.name, true
}

// Word edges for country patterns. \b only knows ASCII word characters, so
// aliases ending in an accented letter ("perú") would never match with it.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:[^\p{L}\p{N}_]|$)`
)

// CountryPattern returns a word-bounded regular expression matching every
// alias of the country token resolves to, or the escaped token itself when it
// is not a known country. Callers match it case-insensitively.
func CountryPattern(token string) string {
	group, ok := lookupCountry(token)
	if !ok {
		return wordStart + regexp.QuoteMeta(strings.TrimSpace(token)) + wordEnd
	}

	quoted := make([]string, len(group.aliases))
	for i, alias := range group.aliases {
		quoted[i] = regexp.QuoteMeta(alias)
	}
	return wordStart + `(?:` + strings.Join(quoted, "|") + `)` + wordEnd
}

// substringPattern matches token anywhere in a field, metacharacters escaped.
func substringPattern(token string) string {
	return regexp.QuoteMeta(strings.TrimSpace(token))
}

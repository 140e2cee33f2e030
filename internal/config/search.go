package config

// SearchConfig holds the trip search expansion limits.
type SearchConfig struct {
	// ExactThreshold is the exact-match count below which fallback expansion runs.
	ExactThreshold int `yaml:"exact_threshold"`
	// CountryFallbackLimit caps results added by country-level expansion.
	CountryFallbackLimit int `yaml:"country_fallback_limit"`
	// OpenFallbackLimit caps results added when no location constraint applies.
	OpenFallbackLimit int `yaml:"open_fallback_limit"`
}

func loadSearchConfig() *SearchConfig {
	return &SearchConfig{
		ExactThreshold:       getEnvAsInt("SEARCH_EXACT_THRESHOLD", 3),
		CountryFallbackLimit: getEnvAsInt("SEARCH_COUNTRY_FALLBACK_LIMIT", 10),
		OpenFallbackLimit:    getEnvAsInt("SEARCH_OPEN_FALLBACK_LIMIT", 7),
	}
}

// DefaultSearchConfig returns the built-in limits without reading the environment.
func DefaultSearchConfig() *SearchConfig {
	return &SearchConfig{
		ExactThreshold:       3,
		CountryFallbackLimit: 10,
		OpenFallbackLimit:    7,
	}
}

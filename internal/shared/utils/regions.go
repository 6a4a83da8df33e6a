package utils

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var regionNamer = display.English.Regions()

// countryAliases lists common alternate spellings
var countryAliases = map[string]string{
	"usa":                   "US",
	"unitedstatesofamerica": "US",
	"america":               "US",
	"uk":                    "GB",
	"greatbritain":          "GB",
	"england":               "GB",
	"deutschland":           "DE",
	"espana":                "ES",
	"czechrepublic":         "CZ",
	"republicofkorea":       "KR",
}

// countryByNormalizedName indexes the English name of every ISO 3166
// country plus the aliases
var countryByNormalizedName = func() map[string]string {
	m := make(map[string]string, 256+len(countryAliases))
	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			code := string([]rune{a, b})
			if name := CountryName(code); name != "" {
				m[NormalizeForMatch(name)] = code
			}
		}
	}
	for alias, code := range countryAliases {
		m[alias] = code
	}
	return m
}()

// countryRegion parses a two-letter country code
func countryRegion(code string) (language.Region, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return language.Region{}, false
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return language.Region{}, false
	}
	return region, true
}

// CountryName returns the English display name for a country code, or ""
// when unknown
func CountryName(code string) string {
	region, ok := countryRegion(code)
	if !ok {
		return ""
	}
	return regionNamer.Name(region)
}

// CountryCode resolves a country code or display name to its code
func CountryCode(nameOrCode string) string {
	if code, ok := countryAliases[NormalizeForMatch(nameOrCode)]; ok {
		return code
	}
	if region, ok := countryRegion(nameOrCode); ok {
		return region.String()
	}
	return countryByNormalizedName[NormalizeForMatch(nameOrCode)]
}

// regionNames maps country code to region abbreviation to full name
var regionNames = map[string]map[string]string{
	"US": {
		"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
		"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
		"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
		"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
		"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
		"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
		"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
		"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
		"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
		"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
		"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
		"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
		"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming", "PR": "Puerto Rico",
	},
	"CA": {
		"AB": "Alberta", "BC": "British Columbia", "MB": "Manitoba", "NB": "New Brunswick",
		"NL": "Newfoundland and Labrador", "NS": "Nova Scotia", "NT": "Northwest Territories",
		"NU": "Nunavut", "ON": "Ontario", "PE": "Prince Edward Island", "QC": "Quebec",
		"SK": "Saskatchewan", "YT": "Yukon",
	},
}

// RegionName expands a region abbreviation ("TN") to its name ("Tennessee").
// Values that are already names are returned unchanged.
func RegionName(countryCode, region string) string {
	regions := regionNames[strings.ToUpper(countryCode)]
	if name, ok := regions[strings.ToUpper(strings.TrimSpace(region))]; ok {
		return name
	}
	return region
}

// RegionAbbreviation finds the abbreviation of a region name, or "" when unknown
func RegionAbbreviation(countryCode, region string) string {
	regions := regionNames[strings.ToUpper(countryCode)]
	upper := strings.ToUpper(strings.TrimSpace(region))
	if _, ok := regions[upper]; ok {
		return upper
	}
	want := NormalizeForMatch(region)
	for abbr, name := range regions {
		if NormalizeForMatch(name) == want {
			return abbr
		}
	}
	return ""
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// MonthName returns the English month name for 1..12, or ""
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return TitleCase(monthNames[month-1])
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeForMatch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Elvis", "elvis"},
		{"  Él-vis  Presley ", "elvispresley"},
		{"3734 Elvis Presley Blvd.", "3734elvispresleyblvd"},
		{"Zoë", "zoe"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeForMatch(tt.in))
		})
	}
}

func TestHasNormalizedPrefix(t *testing.T) {
	assert.True(t, HasNormalizedPrefix("Élvis", "el"))
	assert.True(t, HasNormalizedPrefix("3734 Elvis Presley Blvd.", "3734 elv"))
	assert.True(t, HasNormalizedPrefix("anything", ""))
	assert.False(t, HasNormalizedPrefix("Charles", "el"))
}

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("Québec", "quebec"))
	assert.True(t, EqualFold(" Tennessee", "TENNESSEE"))
	assert.False(t, EqualFold("New York", "NewYork"))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "4111111111111111", DigitsOnly("4111 1111-1111 1111"))
	assert.Equal(t, "", DigitsOnly("•••• "))
}

func TestCountryLookups(t *testing.T) {
	assert.Equal(t, "United States", CountryName("us"))
	assert.Equal(t, "", CountryName("XX"))
	assert.Equal(t, "US", CountryCode("United States"))
	assert.Equal(t, "US", CountryCode("USA"))
	assert.Equal(t, "DE", CountryCode("de"))
	assert.Equal(t, "GB", CountryCode("UK"))
	assert.Equal(t, "", CountryCode("Atlantis"))
}

func TestCountryNamesCoverEveryCountry(t *testing.T) {
	assert.Equal(t, "Luxembourg", CountryName("LU"))
	assert.Equal(t, "Germany", CountryName("de"))
	assert.Equal(t, "Japan", CountryName(" JP "))
	assert.Equal(t, "", CountryName("USA"))
	assert.Equal(t, "LU", CountryCode("Luxembourg"))
	assert.Equal(t, "CI", CountryCode("Côte d’Ivoire"))
}

func TestRegionLookups(t *testing.T) {
	assert.Equal(t, "Tennessee", RegionName("US", "TN"))
	assert.Equal(t, "Tennessee", RegionName("US", "Tennessee"))
	assert.Equal(t, "TN", RegionAbbreviation("US", "tennessee"))
	assert.Equal(t, "QC", RegionAbbreviation("CA", "Québec"))
	assert.Equal(t, "", RegionAbbreviation("US", "Atlantis"))
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "April", MonthName(4))
	assert.Equal(t, "", MonthName(13))
}

func TestHashValue(t *testing.T) {
	h := DefaultHasher()

	assert.Equal(t, "", h.HashValue("  "))
	assert.Len(t, h.HashValue("Elvis"), ValueHashLength)
	assert.Equal(t, h.HashValue("Elvis"), h.HashValue("elvis"))
	assert.NotEqual(t, h.HashValue("Elvis"), NewHasher(SHA256, "salt").HashValue("Elvis"))
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextMatcherTiers(t *testing.T) {
	cases := []struct {
		name     string
		m        TextMatcher
		needle   string
		haystack string
		want     bool
	}{
		{"word overlap", CompanyMatcher, "goldman", "Goldman Sachs Group", true},
		{"case insensitive", CompanyMatcher, "GOOGLE", "google llc", true},
		{"token inside token", CompanyMatcher, "morgan", "JPMorgan Chase", true},
		{"haystack token inside needle token", CompanyMatcher, "microsoftcorp", "Microsoft", true},
		{"no overlap", CompanyMatcher, "goldman", "Google", false},
		{"short tokens dropped, substring fallback", CompanyMatcher, "ey", "EY Parthenon", true},
		{"short tokens dropped, no substring", CompanyMatcher, "ab", "Google", false},
		{"empty needle", CompanyMatcher, "", "Google", false},
		{"empty haystack", CompanyMatcher, "Google", "  ", false},
		{"role threshold drops 3-letter words", RoleMatcher, "vp of sales", "Sales Director", true},
		{"role threshold drops 3-letter needle", RoleMatcher, "ops", "Operations Analyst", false},
		{"role no match", RoleMatcher, "software engineer", "Investment Banker", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.m.Matches(tc.needle, tc.haystack))
		})
	}
}

func TestTextMatcherScore(t *testing.T) {
	full := CompanyMatcher.Score("goldman sachs", "Goldman Sachs Group")
	half := CompanyMatcher.Score("goldman stanley", "Goldman Sachs Group")
	sub := CompanyMatcher.Score("ey", "ey parthenon")

	assert.Equal(t, 1.0, full)
	assert.Equal(t, 0.75, half)
	assert.Equal(t, substringScore, sub)
	assert.Zero(t, CompanyMatcher.Score("apple", "Google"))
	assert.Greater(t, full, half)
	assert.Greater(t, half, sub)
}

package search

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const popularCacheKey = "popular:movies"

// normalizeQuery canonicalizes a title query for cache-key derivation: NFC
// unicode normalization, trim, lowercase, inner whitespace collapsed to
// single spaces. "The  Matrix " and "the matrix" share one cache entry.
func normalizeQuery(query string) string {
	query = norm.NFC.String(query)
	query = strings.ToLower(strings.TrimSpace(query))
	return strings.Join(strings.Fields(query), " ")
}

func searchCacheKey(query string, page int) string {
	return "search:" + normalizeQuery(query) + ":" + strconv.Itoa(page)
}

func movieCacheKey(id string) string {
	return "movie:" + strings.TrimSpace(id)
}

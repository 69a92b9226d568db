package product

import (
	"strconv"
	"strings"
)

// CacheKey derives the deterministic cache key for a normalized filter
// record. Every filter field participates in a fixed order with an
// explicit placeholder for absent values; any field added to the query
// builder must be added here or stale entries will be served.
func CacheKey(f ListFilters) string {
	var b strings.Builder
	b.WriteString("products:")
	b.WriteString("cat:")
	b.WriteString(int64OrDefault(f.CategoryID, "all"))
	b.WriteString("|min:")
	b.WriteString(floatOrDefault(f.MinPrice, "none"))
	b.WriteString("|max:")
	b.WriteString(floatOrDefault(f.MaxPrice, "none"))
	b.WriteString("|color:")
	b.WriteString(stringOrDefault(f.Color, "all"))
	b.WriteString("|size:")
	b.WriteString(stringOrDefault(f.Size, "all"))
	b.WriteString("|sort:")
	b.WriteString(f.Sort)
	b.WriteString("|cursor:")
	b.WriteString(int64OrDefault(f.Cursor, "0"))
	return b.String()
}

func int64OrDefault(value *int64, fallback string) string {
	if value == nil {
		return fallback
	}
	return strconv.FormatInt(*value, 10)
}

func floatOrDefault(value *float64, fallback string) string {
	if value == nil {
		return fallback
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func stringOrDefault(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}

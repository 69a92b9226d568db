package product

import (
	"math"
	"strconv"
	"strings"
)

// Sort options accepted by the listing endpoint. Anything else falls
// back to SortNewest.
const (
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortNewest    = "newest"
	SortPopular   = "popular"
)

// RawListFilters carries the listing query parameters exactly as they
// arrived on the wire, before any normalization.
type RawListFilters struct {
	CategoryID string
	MinPrice   string
	MaxPrice   string
	Color      string
	Size       string
	Sort       string
	Cursor     string
}

// ListFilters is the canonical filter record. Numeric fields are nil
// when absent or unparseable, never zero. String fields are trimmed
// or nil. Sort is always one of the four accepted values.
type ListFilters struct {
	CategoryID *int64
	MinPrice   *float64
	MaxPrice   *float64
	Color      *string
	Size       *string
	Sort       string
	Cursor     *int64
}

// NormalizeFilters sanitizes raw query parameters into a canonical
// record. It is pure and idempotent: normalizing the Raw() projection
// of its own output yields the same record.
func NormalizeFilters(raw RawListFilters) ListFilters {
	return ListFilters{
		CategoryID: parseInt64(raw.CategoryID),
		MinPrice:   parseFloat(raw.MinPrice),
		MaxPrice:   parseFloat(raw.MaxPrice),
		Color:      trimmedOrNil(raw.Color),
		Size:       trimmedOrNil(raw.Size),
		Sort:       normalizeSort(raw.Sort),
		Cursor:     parseInt64(raw.Cursor),
	}
}

// Raw projects the canonical record back onto wire form.
func (f ListFilters) Raw() RawListFilters {
	raw := RawListFilters{Sort: f.Sort}
	if f.CategoryID != nil {
		raw.CategoryID = strconv.FormatInt(*f.CategoryID, 10)
	}
	if f.MinPrice != nil {
		raw.MinPrice = strconv.FormatFloat(*f.MinPrice, 'f', -1, 64)
	}
	if f.MaxPrice != nil {
		raw.MaxPrice = strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64)
	}
	if f.Color != nil {
		raw.Color = *f.Color
	}
	if f.Size != nil {
		raw.Size = *f.Size
	}
	if f.Cursor != nil {
		raw.Cursor = strconv.FormatInt(*f.Cursor, 10)
	}
	return raw
}

func normalizeSort(value string) string {
	switch strings.TrimSpace(value) {
	case SortPriceLow:
		return SortPriceLow
	case SortPriceHigh:
		return SortPriceHigh
	case SortPopular:
		return SortPopular
	default:
		return SortNewest
	}
}

func parseInt64(value string) *int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseFloat(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	return &parsed
}

func trimmedOrNil(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

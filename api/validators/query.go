package validators

import (
	"net/http"
	"strconv"
	"strings"

	product "github.com/justgold/justgold-backend/internal/products"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
)

// ParseListFilters lifts the listing query parameters into the raw
// filter record. Values pass through untouched; normalization happens
// in the listing service.
func ParseListFilters(r *http.Request) product.RawListFilters {
	q := r.URL.Query()
	return product.RawListFilters{
		CategoryID: q.Get("categoryId"),
		MinPrice:   q.Get("minPrice"),
		MaxPrice:   q.Get("maxPrice"),
		Color:      q.Get("color"),
		Size:       q.Get("size"),
		Sort:       q.Get("sort"),
		Cursor:     q.Get("cursor"),
	}
}

// ParsePathID parses a numeric chi URL parameter.
func ParsePathID(raw string, field string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "identifier must be a positive number").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

// ParseIDSlug splits the canonical "<id>-<slug>" product path segment.
// The slug part may be empty or stale; the id alone identifies the row.
func ParseIDSlug(raw string) (int64, string, error) {
	raw = strings.TrimSpace(raw)
	idPart := raw
	slugPart := ""
	if i := strings.Index(raw, "-"); i >= 0 {
		idPart = raw[:i]
		slugPart = raw[i+1:]
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", pkgerrors.New(pkgerrors.CodeValidation, "product path must start with a numeric id")
	}
	return id, slugPart, nil
}

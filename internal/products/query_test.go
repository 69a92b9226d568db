package product

import (
	"strings"
	"testing"
)

func TestBuildListQueryBase(t *testing.T) {
	t.Parallel()

	q := BuildListQuery(NormalizeFilters(RawListFilters{}))

	if !strings.Contains(q.Text, "p.is_active = ?") {
		t.Fatalf("missing active predicate: %s", q.Text)
	}
	if !strings.Contains(q.Text, "ORDER BY p.created_at DESC, p.id DESC") {
		t.Fatalf("default sort must be newest with id tiebreak: %s", q.Text)
	}
	if !strings.HasSuffix(q.Text, "LIMIT ?") {
		t.Fatalf("query must end with a bound limit: %s", q.Text)
	}
	if q.PageSize != ListPageSize {
		t.Fatalf("PageSize = %d, want %d", q.PageSize, ListPageSize)
	}
	// active flag + over-fetch limit
	if len(q.Values) != 2 {
		t.Fatalf("values = %v, want [true, %d]", q.Values, ListPageSize+1)
	}
	if q.Values[len(q.Values)-1] != ListPageSize+1 {
		t.Fatalf("limit must over-fetch by one, got %v", q.Values[len(q.Values)-1])
	}
}

func TestBuildListQueryCategoryIncludesChildren(t *testing.T) {
	t.Parallel()

	q := BuildListQuery(ListFilters{CategoryID: int64Ptr(7), Sort: SortNewest})
	if !strings.Contains(q.Text, "(c.id = ? OR c.parent_id = ?)") {
		t.Fatalf("category filter must match the id or its parent: %s", q.Text)
	}
	if q.Values[1] != int64(7) || q.Values[2] != int64(7) {
		t.Fatalf("category id must bind twice, got %v", q.Values)
	}
}

func TestBuildListQueryPriceBoundsUseEffectivePrice(t *testing.T) {
	t.Parallel()

	q := BuildListQuery(ListFilters{MinPrice: floatPtr(10), MaxPrice: floatPtr(50), Sort: SortNewest})
	if strings.Count(q.Text, effectivePriceExpr) != 3 {
		// select column + two bounds
		t.Fatalf("price bounds must compare the effective price expression: %s", q.Text)
	}
	if !strings.Contains(q.Text, effectivePriceExpr+" >= ?") || !strings.Contains(q.Text, effectivePriceExpr+" <= ?") {
		t.Fatalf("missing price bound predicates: %s", q.Text)
	}
}

func TestBuildListQueryColorAndSizeAreExistential(t *testing.T) {
	t.Parallel()

	q := BuildListQuery(ListFilters{Color: strPtr("Rose"), Size: strPtr("JG-12"), Sort: SortNewest})

	if !strings.Contains(q.Text, "EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND (LOWER(v.shade) LIKE ? OR LOWER(v.color_type) LIKE ?))") {
		t.Fatalf("color filter must be an existential partial match: %s", q.Text)
	}
	if !strings.Contains(q.Text, "EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND v.variant_model_no = ?)") {
		t.Fatalf("size filter must be an existential exact match: %s", q.Text)
	}

	// color match is case-insensitive and partial
	found := false
	for _, v := range q.Values {
		if v == "%rose%" {
			found = true
		}
	}
	if !found {
		t.Fatalf("color pattern must be lowercased and wrapped in wildcards, values: %v", q.Values)
	}
}

func TestBuildListQueryCursorDirection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sort     string
		wantOp   string
		wantSort string
	}{
		{SortPriceLow, "p.id > ?", "ORDER BY effective_price ASC, p.id ASC"},
		{SortPriceHigh, "p.id < ?", "ORDER BY effective_price DESC, p.id DESC"},
		{SortNewest, "p.id < ?", "ORDER BY p.created_at DESC, p.id DESC"},
		{SortPopular, "p.id < ?", "ORDER BY p.base_stock DESC, p.id DESC"},
	}

	for _, tc := range cases {
		t.Run(tc.sort, func(t *testing.T) {
			q := BuildListQuery(ListFilters{Sort: tc.sort, Cursor: int64Ptr(40)})
			if !strings.Contains(q.Text, tc.wantOp) {
				t.Fatalf("sort %s: cursor predicate %q missing in %s", tc.sort, tc.wantOp, q.Text)
			}
			if !strings.Contains(q.Text, tc.wantSort) {
				t.Fatalf("sort %s: order clause %q missing in %s", tc.sort, tc.wantSort, q.Text)
			}
		})
	}
}

func TestBuildListQueryNoCursorNoPredicate(t *testing.T) {
	t.Parallel()

	q := BuildListQuery(ListFilters{Sort: SortNewest})
	if strings.Contains(q.Text, "p.id > ?") || strings.Contains(q.Text, "p.id < ?") {
		t.Fatalf("first page must not carry a cursor predicate: %s", q.Text)
	}
}

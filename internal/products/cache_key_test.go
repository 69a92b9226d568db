package product

import "testing"

func TestCacheKeyPlaceholders(t *testing.T) {
	t.Parallel()

	key := CacheKey(NormalizeFilters(RawListFilters{}))
	want := "products:cat:all|min:none|max:none|color:all|size:all|sort:newest|cursor:0"
	if key != want {
		t.Fatalf("empty filters key = %q, want %q", key, want)
	}
}

func TestCacheKeyFullFilters(t *testing.T) {
	t.Parallel()

	key := CacheKey(NormalizeFilters(RawListFilters{
		CategoryID: "4",
		MinPrice:   "10",
		MaxPrice:   "99.5",
		Color:      "red",
		Size:       "JG-12",
		Sort:       "price_low",
		Cursor:     "40",
	}))
	want := "products:cat:4|min:10|max:99.5|color:red|size:JG-12|sort:price_low|cursor:40"
	if key != want {
		t.Fatalf("key = %q, want %q", key, want)
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	t.Parallel()

	raw := RawListFilters{CategoryID: " 4 ", Color: " red ", Sort: "popular"}
	a := CacheKey(NormalizeFilters(raw))
	b := CacheKey(NormalizeFilters(NormalizeFilters(raw).Raw()))
	if a != b {
		t.Fatalf("semantically equal filters produced different keys: %q vs %q", a, b)
	}
}

func TestCacheKeySensitivity(t *testing.T) {
	t.Parallel()

	base := ListFilters{Sort: SortNewest}
	variants := []ListFilters{
		{CategoryID: int64Ptr(1), Sort: SortNewest},
		{MinPrice: floatPtr(5), Sort: SortNewest},
		{MaxPrice: floatPtr(50), Sort: SortNewest},
		{Color: strPtr("red"), Sort: SortNewest},
		{Size: strPtr("JG-1"), Sort: SortNewest},
		{Sort: SortPopular},
		{Cursor: int64Ptr(7), Sort: SortNewest},
	}

	baseKey := CacheKey(base)
	seen := map[string]struct{}{baseKey: {}}
	for _, f := range variants {
		key := CacheKey(f)
		if _, dup := seen[key]; dup {
			t.Fatalf("filter %+v did not change the cache key %q", f, key)
		}
		seen[key] = struct{}{}
	}
}

func strPtr(s string) *string { return &s }

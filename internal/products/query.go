package product

import "strings"

// ListPageSize is the fixed page size for the listing endpoint.
const ListPageSize = 20

// ListQuery is a compiled, parameterized listing query. PageSize is
// the page the caller asked for; the query itself fetches one extra
// row so the service can detect whether more pages exist.
type ListQuery struct {
	Text     string
	Values   []any
	PageSize int
}

// effectivePriceExpr computes the price a product is filtered and
// sorted by: the cheapest variant price when any variant carries one,
// else the product's base price.
const effectivePriceExpr = "COALESCE((SELECT MIN(v.price) FROM product_variants v WHERE v.product_id = p.id AND v.price IS NOT NULL), p.base_price)"

// BuildListQuery compiles a normalized filter record into SQL. All
// user input travels through bind values. Malformed filters were
// neutralized by NormalizeFilters, so nothing here can fail.
func BuildListQuery(f ListFilters) ListQuery {
	var sb strings.Builder
	values := make([]any, 0, 8)

	sb.WriteString("SELECT p.id, p.name, p.slug, p.base_price, p.base_stock, p.thumbnail, p.thumbnail_key, p.created_at, ")
	sb.WriteString(effectivePriceExpr)
	sb.WriteString(" AS effective_price")
	sb.WriteString(" FROM products p")
	sb.WriteString(" JOIN categories c ON c.id = p.category_id")
	sb.WriteString(" WHERE p.is_active = ?")
	values = append(values, true)

	if f.CategoryID != nil {
		// A parent category id transparently includes its subcategories.
		sb.WriteString(" AND (c.id = ? OR c.parent_id = ?)")
		values = append(values, *f.CategoryID, *f.CategoryID)
	}
	if f.MinPrice != nil {
		sb.WriteString(" AND " + effectivePriceExpr + " >= ?")
		values = append(values, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		sb.WriteString(" AND " + effectivePriceExpr + " <= ?")
		values = append(values, *f.MaxPrice)
	}
	if f.Color != nil {
		pattern := "%" + strings.ToLower(*f.Color) + "%"
		sb.WriteString(" AND EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND (LOWER(v.shade) LIKE ? OR LOWER(v.color_type) LIKE ?))")
		values = append(values, pattern, pattern)
	}
	if f.Size != nil {
		sb.WriteString(" AND EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND v.variant_model_no = ?)")
		values = append(values, *f.Size)
	}

	column, direction := sortOrder(f.Sort)

	if f.Cursor != nil {
		// Keyset cursor: strict inequality on product id in the sort
		// direction keeps pages stable under concurrent inserts.
		if direction == "ASC" {
			sb.WriteString(" AND p.id > ?")
		} else {
			sb.WriteString(" AND p.id < ?")
		}
		values = append(values, *f.Cursor)
	}

	sb.WriteString(" ORDER BY " + column + " " + direction + ", p.id " + direction)
	sb.WriteString(" LIMIT ?")
	values = append(values, ListPageSize+1)

	return ListQuery{
		Text:     sb.String(),
		Values:   values,
		PageSize: ListPageSize,
	}
}

func sortOrder(sort string) (column, direction string) {
	switch sort {
	case SortPriceLow:
		return "effective_price", "ASC"
	case SortPriceHigh:
		return "effective_price", "DESC"
	case SortPopular:
		return "p.base_stock", "DESC"
	default:
		return "p.created_at", "DESC"
	}
}

package product

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/justgold/justgold-backend/pkg/db/models"
	"github.com/justgold/justgold-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const categoriesDDL = `
CREATE TABLE IF NOT EXISTS categories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  parent_id INTEGER
);`

const productsDDL = `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  base_price NUMERIC NOT NULL,
  base_stock INTEGER NOT NULL DEFAULT 30,
  category_id INTEGER NOT NULL,
  model_no TEXT,
  how_to_apply TEXT,
  benefits TEXT,
  key_features TEXT,
  ingredients TEXT,
  thumbnail TEXT,
  thumbnail_key TEXT,
  afterimage TEXT,
  afterimage_key TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`

const variantsDDL = `
CREATE TABLE IF NOT EXISTS product_variants (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  shade TEXT NOT NULL,
  color_type TEXT,
  color_panel_type TEXT,
  color_panel_value TEXT,
  stock INTEGER NOT NULL DEFAULT 0,
  main_image TEXT,
  main_image_key TEXT,
  secondary_image TEXT,
  secondary_image_key TEXT,
  price NUMERIC,
  discount_price NUMERIC,
  variant_model_no TEXT,
  created_at DATETIME
);`

const imagesDDL = `
CREATE TABLE IF NOT EXISTS product_images (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  image_url TEXT NOT NULL,
  image_key TEXT,
  media_type TEXT NOT NULL DEFAULT 'image',
  created_at DATETIME
);`

func setupCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{categoriesDDL, productsDDL, variantsDDL, imagesDDL} {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func mustCreateCategory(t *testing.T, tx *gorm.DB, name string, parentID *int64) *models.Category {
	t.Helper()
	category := &models.Category{
		Name:     name,
		Slug:     Slugify(name),
		ParentID: parentID,
	}
	require.NoError(t, tx.Create(category).Error)
	return category
}

func mustCreateProduct(t *testing.T, tx *gorm.DB, name string, basePrice int64, categoryID int64) *models.Product {
	t.Helper()
	row := &models.Product{
		Name:       name,
		Slug:       Slugify(name),
		BasePrice:  decimal.NewFromInt(basePrice),
		BaseStock:  30,
		CategoryID: categoryID,
		IsActive:   true,
	}
	require.NoError(t, tx.Create(row).Error)
	return row
}

func mustCreateVariant(t *testing.T, tx *gorm.DB, productID int64, shade string, price *int64) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ProductID: productID,
		Shade:     shade,
	}
	if price != nil {
		variant.Price = decimal.NewNullDecimal(decimal.NewFromInt(*price))
	}
	require.NoError(t, tx.Create(variant).Error)
	return variant
}

func decimalFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func formatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}

func testServiceLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
}

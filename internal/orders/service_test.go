package orders

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/justgold/justgold-backend/pkg/db"
	"github.com/justgold/justgold-backend/pkg/db/models"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/justgold/justgold-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const orderSchemaDDL = `
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
);
CREATE TABLE IF NOT EXISTS product_variants (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL,
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
);
CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  total_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS order_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  product_variant_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL
);`

func setupOrderDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	for _, ddl := range strings.Split(orderSchemaDDL, ";") {
		if strings.TrimSpace(ddl) == "" {
			continue
		}
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(
		NewRepository(conn),
		db.FromGorm(conn),
		logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel}),
	)
	require.NoError(t, err)
	return svc
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, name string, basePrice int64) *models.Product {
	t.Helper()
	row := &models.Product{
		Name:       name,
		Slug:       strings.ToLower(name),
		BasePrice:  decimal.NewFromInt(basePrice),
		BaseStock:  30,
		CategoryID: 1,
		IsActive:   true,
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func mustCreateVariant(t *testing.T, conn *gorm.DB, productID int64, stock int, price *int64) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{ProductID: productID, Shade: "Ruby", Stock: stock}
	if price != nil {
		variant.Price = decimal.NewNullDecimal(decimal.NewFromInt(*price))
	}
	require.NoError(t, conn.Create(variant).Error)
	return variant
}

func variantStock(t *testing.T, conn *gorm.DB, id int64) int {
	t.Helper()
	var row models.ProductVariant
	require.NoError(t, conn.First(&row, "id = ?", id).Error)
	return row.Stock
}

func TestCreateOrderPricesAndDecrementsStock(t *testing.T) {
	conn := setupOrderDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	product := mustCreateProduct(t, conn, "Velvet Lipstick", 1000)
	price := int64(750)
	priced := mustCreateVariant(t, conn, product.ID, 10, &price)
	fallback := mustCreateVariant(t, conn, product.ID, 5, nil)

	order, err := svc.Create(ctx, 7, []OrderItemInput{
		{ProductVariantID: priced.ID, Quantity: 2},
		{ProductVariantID: fallback.ID, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), order.UserID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(750)))
	assert.True(t, order.Items[1].Price.Equal(decimal.NewFromInt(1000)), "null variant price falls back to base price")
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(2500)))

	assert.Equal(t, 8, variantStock(t, conn, priced.ID))
	assert.Equal(t, 4, variantStock(t, conn, fallback.ID))
}

func TestCreateOrderAllowsNegativeStock(t *testing.T) {
	conn := setupOrderDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	product := mustCreateProduct(t, conn, "Gloss", 500)
	variant := mustCreateVariant(t, conn, product.ID, 1, nil)

	_, err := svc.Create(ctx, 3, []OrderItemInput{{ProductVariantID: variant.ID, Quantity: 4}})
	require.NoError(t, err)

	assert.Equal(t, -3, variantStock(t, conn, variant.ID))
}

func TestCreateOrderUnknownVariantRollsBack(t *testing.T) {
	conn := setupOrderDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	product := mustCreateProduct(t, conn, "Liner", 400)
	variant := mustCreateVariant(t, conn, product.ID, 9, nil)

	_, err := svc.Create(ctx, 3, []OrderItemInput{
		{ProductVariantID: variant.ID, Quantity: 2},
		{ProductVariantID: variant.ID + 100, Quantity: 1},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	var orderCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
	assert.Equal(t, 9, variantStock(t, conn, variant.ID), "stock untouched after rollback")
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestService(t, setupOrderDB(t))
	ctx := context.Background()

	cases := []struct {
		name   string
		userID int64
		items  []OrderItemInput
	}{
		{name: "no items", userID: 1, items: nil},
		{name: "missing user", userID: 0, items: []OrderItemInput{{ProductVariantID: 1, Quantity: 1}}},
		{name: "zero quantity", userID: 1, items: []OrderItemInput{{ProductVariantID: 1, Quantity: 0}}},
		{name: "missing variant id", userID: 1, items: []OrderItemInput{{Quantity: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.userID, tc.items)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	conn := setupOrderDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	product := mustCreateProduct(t, conn, "Balm", 300)
	variant := mustCreateVariant(t, conn, product.ID, 50, nil)

	first, err := svc.Create(ctx, 5, []OrderItemInput{{ProductVariantID: variant.ID, Quantity: 1}})
	require.NoError(t, err)
	second, err := svc.Create(ctx, 5, []OrderItemInput{{ProductVariantID: variant.ID, Quantity: 2}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 9, []OrderItemInput{{ProductVariantID: variant.ID, Quantity: 1}})
	require.NoError(t, err)

	got, err := svc.ListByUser(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
	require.Len(t, got[0].Items, 1)
	assert.Equal(t, 2, got[0].Items[0].Quantity)
}

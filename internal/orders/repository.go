package orders

import (
	"context"

	"github.com/justgold/justgold-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles order persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindVariantPricing loads a variant joined with its product's base
// price so the caller can compute the price at purchase time.
func (r *Repository) FindVariantPricing(ctx context.Context, variantID int64) (*models.ProductVariant, *models.Product, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", variantID).Error; err != nil {
		return nil, nil, err
	}
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", variant.ProductID).Error; err != nil {
		return nil, nil, err
	}
	return &variant, &product, nil
}

// CreateOrder inserts the order together with its items.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindOrder reloads an order with its items.
func (r *Repository) FindOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns a user's orders, newest first, items included.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DecrementStock subtracts the purchased quantity from a variant. The
// value is allowed to go negative; stock is advisory, not reserved.
func (r *Repository) DecrementStock(ctx context.Context, variantID int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity)).
		Error
}

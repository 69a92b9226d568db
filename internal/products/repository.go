package product

import (
	"context"
	"database/sql"
	"time"

	"github.com/justgold/justgold-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository wires together product, variant, and gallery persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetDetail loads a product with its variants and gallery entries.
func (r *Repository) GetDetail(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct persists the full product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product by id. Variants and gallery rows
// cascade at the database level.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// FindVariants returns the product's variants limited to the given
// ids, or all of them when ids is empty.
func (r *Repository) FindVariants(ctx context.Context, productID int64, ids []int64) ([]models.ProductVariant, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	var rows []models.ProductVariant
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindVariantByID loads a single variant scoped to its product.
func (r *Repository) FindVariantByID(ctx context.Context, productID, variantID int64) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ? AND product_id = ?", variantID, productID).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// CreateVariant inserts a variant row.
func (r *Repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

// UpdateVariant persists the full variant row.
func (r *Repository) UpdateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Save(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariants removes the product's variants with the given ids.
func (r *Repository) DeleteVariants(ctx context.Context, productID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("product_id = ? AND id IN ?", productID, ids).
		Delete(&models.ProductVariant{}).
		Error
}

// FindImages returns the product's gallery entries limited to the
// given ids, or all of them when ids is empty.
func (r *Repository) FindImages(ctx context.Context, productID int64, ids []int64) ([]models.ProductImage, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	var rows []models.ProductImage
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateImage inserts a gallery row.
func (r *Repository) CreateImage(ctx context.Context, image *models.ProductImage) (*models.ProductImage, error) {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

// DeleteImages removes the product's gallery entries with the given ids.
func (r *Repository) DeleteImages(ctx context.Context, productID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("product_id = ? AND id IN ?", productID, ids).
		Delete(&models.ProductImage{}).
		Error
}

type listRecord struct {
	ID             int64
	Name           string
	Slug           string
	BasePrice      decimal.Decimal
	BaseStock      int
	Thumbnail      sql.NullString
	ThumbnailKey   sql.NullString
	CreatedAt      time.Time
	EffectivePrice decimal.Decimal
}

// ListRows executes a compiled listing query.
func (r *Repository) ListRows(ctx context.Context, query ListQuery) ([]listRecord, error) {
	var records []listRecord
	if err := r.db.WithContext(ctx).Raw(query.Text, query.Values...).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

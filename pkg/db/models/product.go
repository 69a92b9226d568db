package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical catalog entry.
type Product struct {
	ID            int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string           `gorm:"column:name;not null"`
	Slug          string           `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	Description   *string          `gorm:"column:description"`
	BasePrice     decimal.Decimal  `gorm:"column:base_price;type:numeric(10,2);not null"`
	BaseStock     int              `gorm:"column:base_stock;not null;default:30"`
	CategoryID    int64            `gorm:"column:category_id;not null"`
	ModelNo       *string          `gorm:"column:model_no"`
	HowToApply    *string          `gorm:"column:how_to_apply"`
	Benefits      *string          `gorm:"column:benefits"`
	KeyFeatures   *string          `gorm:"column:key_features"`
	Ingredients   *string          `gorm:"column:ingredients"`
	Thumbnail     *string          `gorm:"column:thumbnail"`
	ThumbnailKey  *string          `gorm:"column:thumbnail_key"`
	Afterimage    *string          `gorm:"column:afterimage"`
	AfterimageKey *string          `gorm:"column:afterimage_key"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	Variants      []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images        []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
}

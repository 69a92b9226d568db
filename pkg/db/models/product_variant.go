package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariant stores a shade/size combination for a product. Price is
// nullable; display price falls back to the owning product's base price.
type ProductVariant struct {
	ID                int64               `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID         int64               `gorm:"column:product_id;not null;index"`
	Shade             string              `gorm:"column:shade;not null"`
	ColorType         *string             `gorm:"column:color_type"`
	ColorPanelType    *string             `gorm:"column:color_panel_type"`
	ColorPanelValue   *string             `gorm:"column:color_panel_value"`
	Stock             int                 `gorm:"column:stock;not null;default:0"`
	MainImage         *string             `gorm:"column:main_image"`
	MainImageKey      *string             `gorm:"column:main_image_key"`
	SecondaryImage    *string             `gorm:"column:secondary_image"`
	SecondaryImageKey *string             `gorm:"column:secondary_image_key"`
	Price             decimal.NullDecimal `gorm:"column:price;type:numeric(10,2)"`
	DiscountPrice     decimal.NullDecimal `gorm:"column:discount_price;type:numeric(10,2)"`
	VariantModelNo    *string             `gorm:"column:variant_model_no"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
}

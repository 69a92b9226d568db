package models

import "time"

// Media types stored in product_images.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// ProductImage is a gallery or video entry attached to a product.
type ProductImage struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64     `gorm:"column:product_id;not null;index"`
	ImageURL  string    `gorm:"column:image_url;not null"`
	ImageKey  *string   `gorm:"column:image_key"`
	MediaType string    `gorm:"column:media_type;not null;default:image"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

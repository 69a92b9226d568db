package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusPending = "pending"
)

// Order groups purchased items for a user.
type Order struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64           `gorm:"column:user_id;not null;index"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null"`
	Status      string          `gorm:"column:status;not null;default:pending"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// OrderItem records a purchased variant with its price at purchase time.
type OrderItem struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID          int64           `gorm:"column:order_id;not null;index"`
	ProductVariantID int64           `gorm:"column:product_variant_id;not null"`
	Quantity         int             `gorm:"column:quantity;not null"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
}

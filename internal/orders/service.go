package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justgold/justgold-backend/pkg/db"
	"github.com/justgold/justgold-backend/pkg/db/models"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/justgold/justgold-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItemInput is one purchased line as submitted by the client.
type OrderItemInput struct {
	ProductVariantID int64
	Quantity         int
}

// OrderItemDTO mirrors a stored order line.
type OrderItemDTO struct {
	ID               int64           `json:"id"`
	ProductVariantID int64           `json:"productVariantId"`
	Quantity         int             `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
}

// OrderDTO is the response shape for a placed order.
type OrderDTO struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	Items       []OrderItemDTO  `json:"items"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Service places and reads orders.
type Service interface {
	Create(ctx context.Context, userID int64, items []OrderItemInput) (*OrderDTO, error)
	ListByUser(ctx context.Context, userID int64) ([]OrderDTO, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
}

func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbClient: dbClient, logg: logg}, nil
}

// Create places an order in one transaction: insert the order with its
// items priced at purchase time, then decrement each variant's stock.
// The line price is the variant's price when set, else the owning
// product's base price. Stock may go negative; it is advisory only.
func (s *service) Create(ctx context.Context, userID int64, items []OrderItemInput) (*OrderDTO, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order item is required")
	}
	for i, item := range items {
		if item.ProductVariantID <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: variant id is required", i))
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i))
		}
	}

	var orderID int64
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order := &models.Order{
			UserID: userID,
			Status: models.OrderStatusPending,
		}
		total := decimal.Zero
		for i, item := range items {
			variant, product, err := repo.FindVariantPricing(ctx, item.ProductVariantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d: variant not found", i))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variant")
			}
			price := product.BasePrice
			if variant.Price.Valid {
				price = variant.Price.Decimal
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductVariantID: variant.ID,
				Quantity:         item.Quantity,
				Price:            price,
			})
			total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		order.TotalAmount = total

		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		for _, item := range items {
			if err := repo.DecrementStock(ctx, item.ProductVariantID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
			}
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	placed, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload order")
	}
	dto := newOrderDTO(placed)
	return &dto, nil
}

// ListByUser returns the user's orders, newest first.
func (s *service) ListByUser(ctx context.Context, userID int64) ([]OrderDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newOrderDTO(&rows[i]))
	}
	return out, nil
}

func newOrderDTO(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:          order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		Items:       make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:               item.ID,
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
			Price:            item.Price,
		})
	}
	return dto
}

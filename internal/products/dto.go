package product

import (
	"time"

	"github.com/justgold/justgold-backend/internal/media"
	"github.com/justgold/justgold-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ListedProduct is one row of the browse listing.
type ListedProduct struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Thumbnail      string          `json:"thumbnail,omitempty"`
	BasePrice      decimal.Decimal `json:"base_price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ListResult is the listing payload, cacheable as one JSON document.
type ListResult struct {
	Products   []ListedProduct `json:"products"`
	NextCursor *int64          `json:"nextCursor"`
	HasMore    bool            `json:"hasMore"`
}

// VariantDTO is a variant as returned by the detail and mutation
// endpoints, with media URLs resolved and the effective price computed.
type VariantDTO struct {
	ID              int64            `json:"id"`
	Shade           string           `json:"shade"`
	ColorType       *string          `json:"color_type,omitempty"`
	ColorPanelType  *string          `json:"color_panel_type,omitempty"`
	ColorPanelValue *string          `json:"color_panel_value,omitempty"`
	Stock           int              `json:"stock"`
	MainImage       string           `json:"main_image,omitempty"`
	SecondaryImage  string           `json:"secondary_image,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	DiscountPrice   *decimal.Decimal `json:"discount_price,omitempty"`
	EffectivePrice  decimal.Decimal  `json:"effective_price"`
	VariantModelNo  *string          `json:"variant_model_no,omitempty"`
}

// ImageDTO is one gallery entry.
type ImageDTO struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	MediaType string `json:"media_type"`
}

// ProductDTO is the full product representation.
type ProductDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	BaseStock   int             `json:"base_stock"`
	CategoryID  int64           `json:"category_id"`
	ModelNo     *string         `json:"model_no,omitempty"`
	HowToApply  *string         `json:"how_to_apply,omitempty"`
	Benefits    *string         `json:"benefits,omitempty"`
	KeyFeatures *string         `json:"key_features,omitempty"`
	Ingredients *string         `json:"ingredients,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Afterimage  string          `json:"afterimage,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	Variants    []VariantDTO    `json:"variants"`
	Images      []ImageDTO      `json:"images"`
}

// NewProductDTO shapes a loaded product, resolving every stored
// (key, legacy URL) pair into a display URL.
func NewProductDTO(p *models.Product, resolver *media.Resolver) *ProductDTO {
	dto := &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		BasePrice:   p.BasePrice,
		BaseStock:   p.BaseStock,
		CategoryID:  p.CategoryID,
		ModelNo:     p.ModelNo,
		HowToApply:  p.HowToApply,
		Benefits:    p.Benefits,
		KeyFeatures: p.KeyFeatures,
		Ingredients: p.Ingredients,
		Thumbnail:   resolver.ResolveURL(p.ThumbnailKey, p.Thumbnail),
		Afterimage:  resolver.ResolveURL(p.AfterimageKey, p.Afterimage),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		Variants:    make([]VariantDTO, 0, len(p.Variants)),
		Images:      make([]ImageDTO, 0, len(p.Images)),
	}
	for _, variant := range p.Variants {
		dto.Variants = append(dto.Variants, newVariantDTO(variant, p.BasePrice, resolver))
	}
	for _, image := range p.Images {
		dto.Images = append(dto.Images, ImageDTO{
			ID:        image.ID,
			URL:       resolver.ResolveURL(image.ImageKey, &image.ImageURL),
			MediaType: image.MediaType,
		})
	}
	return dto
}

func newVariantDTO(v models.ProductVariant, basePrice decimal.Decimal, resolver *media.Resolver) VariantDTO {
	dto := VariantDTO{
		ID:              v.ID,
		Shade:           v.Shade,
		ColorType:       v.ColorType,
		ColorPanelType:  v.ColorPanelType,
		ColorPanelValue: v.ColorPanelValue,
		Stock:           v.Stock,
		MainImage:       resolver.ResolveURL(v.MainImageKey, v.MainImage),
		SecondaryImage:  resolver.ResolveURL(v.SecondaryImageKey, v.SecondaryImage),
		EffectivePrice:  basePrice,
		VariantModelNo:  v.VariantModelNo,
	}
	if v.Price.Valid {
		price := v.Price.Decimal
		dto.Price = &price
		dto.EffectivePrice = price
	}
	if v.DiscountPrice.Valid {
		discount := v.DiscountPrice.Decimal
		dto.DiscountPrice = &discount
	}
	return dto
}

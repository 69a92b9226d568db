package product

import (
	"fmt"
	"strings"

	"github.com/justgold/justgold-backend/pkg/db/models"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// UploadedAsset is a file already pushed to the media store.
type UploadedAsset struct {
	URL string
	Key string
}

// VariantInput is one submitted variant in a create or update batch.
// A nil ID means insert; a present ID means partial update where only
// provided fields overwrite stored values.
type VariantInput struct {
	ID              *int64
	Shade           Optional[string]
	ColorType       Optional[string]
	ColorPanelType  Optional[string]
	ColorPanelValue Optional[string]
	Stock           Optional[int]
	Price           Optional[decimal.Decimal]
	DiscountPrice   Optional[decimal.Decimal]
	VariantModelNo  Optional[string]
	ColorPanelFile  *UploadedAsset
	MainImage       *UploadedAsset
	SecondaryImage  *UploadedAsset
}

func (in VariantInput) colorPanelInput(required bool) ColorPanelInput {
	panel := ColorPanelInput{Required: required}
	if value, ok := in.ColorPanelType.Get(); ok {
		panel.Type = &value
	}
	if value, ok := in.ColorPanelValue.Get(); ok {
		panel.Value = &value
	}
	if in.ColorPanelFile != nil {
		panel.FileURL = &in.ColorPanelFile.URL
	}
	return panel
}

// newVariantFromInput builds an insert row. Unset stock defaults to
// zero; the color panel is required only on product creation.
func newVariantFromInput(productID int64, in VariantInput, panelRequired bool) (*models.ProductVariant, error) {
	shade := strings.TrimSpace(in.Shade.Or(""))
	if shade == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shade is required")
	}

	variant := &models.ProductVariant{
		ProductID: productID,
		Shade:     shade,
		Stock:     in.Stock.Or(0),
	}
	if value, ok := in.ColorType.Get(); ok {
		variant.ColorType = trimmedOrNil(value)
	}
	if value, ok := in.VariantModelNo.Get(); ok {
		variant.VariantModelNo = trimmedOrNil(value)
	}
	if value, ok := in.Price.Get(); ok {
		variant.Price = decimal.NewNullDecimal(value)
	}
	if value, ok := in.DiscountPrice.Get(); ok {
		variant.DiscountPrice = decimal.NewNullDecimal(value)
	}
	if in.MainImage != nil {
		variant.MainImage = &in.MainImage.URL
		variant.MainImageKey = &in.MainImage.Key
	}
	if in.SecondaryImage != nil {
		variant.SecondaryImage = &in.SecondaryImage.URL
		variant.SecondaryImageKey = &in.SecondaryImage.Key
	}

	panel, err := ResolveColorPanel(in.colorPanelInput(panelRequired))
	if err != nil {
		return nil, err
	}
	if panel != nil {
		variant.ColorPanelType = &panel.Type
		variant.ColorPanelValue = &panel.Value
	}
	return variant, nil
}

// applyVariantInput merges a submitted variant onto an existing row.
// Absent or empty fields keep the stored values. It returns the URLs
// of images replaced by a fresh upload, which the caller queues for
// external deletion after commit.
func applyVariantInput(variant *models.ProductVariant, in VariantInput) ([]string, error) {
	if value, ok := in.Shade.Get(); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			variant.Shade = trimmed
		}
	}
	if value, ok := in.ColorType.Get(); ok {
		if trimmed := trimmedOrNil(value); trimmed != nil {
			variant.ColorType = trimmed
		}
	}
	if value, ok := in.VariantModelNo.Get(); ok {
		if trimmed := trimmedOrNil(value); trimmed != nil {
			variant.VariantModelNo = trimmed
		}
	}
	if value, ok := in.Stock.Get(); ok {
		variant.Stock = value
	}
	if value, ok := in.Price.Get(); ok {
		variant.Price = decimal.NewNullDecimal(value)
	}
	if value, ok := in.DiscountPrice.Get(); ok {
		variant.DiscountPrice = decimal.NewNullDecimal(value)
	}

	var replaced []string
	if in.MainImage != nil {
		if old := strDeref(variant.MainImage); old != "" {
			replaced = append(replaced, old)
		}
		variant.MainImage = &in.MainImage.URL
		variant.MainImageKey = &in.MainImage.Key
	}
	if in.SecondaryImage != nil {
		if old := strDeref(variant.SecondaryImage); old != "" {
			replaced = append(replaced, old)
		}
		variant.SecondaryImage = &in.SecondaryImage.URL
		variant.SecondaryImageKey = &in.SecondaryImage.Key
	}

	panel, err := ResolveColorPanel(in.colorPanelInput(false))
	if err != nil {
		return nil, err
	}
	if panel != nil {
		variant.ColorPanelType = &panel.Type
		variant.ColorPanelValue = &panel.Value
	}
	return replaced, nil
}

// variantError prefixes a validation failure with the position of the
// offending variant so batch rejections stay actionable.
func variantError(index int, err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return pkgerrors.New(typed.Code(), fmt.Sprintf("variant %d: %s", index, typed.Message()))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("variant %d", index))
}

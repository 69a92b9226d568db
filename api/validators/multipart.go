package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	product "github.com/justgold/justgold-backend/internal/products"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// FormFile is an uploaded file read fully into memory.
type FormFile struct {
	Filename string
	Data     []byte
}

// VariantPayload is one entry of the "variants" JSON form field.
// Pointer fields distinguish "absent" from "present but empty" so
// partial updates never erase stored values.
type VariantPayload struct {
	ID              *int64  `json:"id"`
	Shade           *string `json:"shade"`
	ColorType       *string `json:"color_type"`
	ColorPanelType  *string `json:"color_panel_type"`
	ColorPanelValue *string `json:"color_panel_value"`
	Stock           *int    `json:"stock"`
	Price           *string `json:"price"`
	DiscountPrice   *string `json:"discount_price"`
	VariantModelNo  *string `json:"variant_model_no"`
}

// ProductForm is the decoded multipart product payload. Scalar fields
// arrive as plain form values, variants as a JSON array, deletion
// lists as JSON id arrays, and files under fixed names: "thumbnail",
// "afterimage", "video", repeated "gallery", and per-variant
// "variant_main_image_<i>", "variant_secondary_image_<i>",
// "color_<i>".
type ProductForm struct {
	Name        *string
	Description *string
	BasePrice   *decimal.Decimal
	BaseStock   *int
	CategoryID  *int64
	ModelNo     *string
	HowToApply  *string
	Benefits    *string
	KeyFeatures *string
	Ingredients *string

	Thumbnail  *FormFile
	Afterimage *FormFile
	Video      *FormFile
	Gallery    []FormFile

	Variants       []VariantPayload
	VariantFiles   map[int]VariantFiles
	DeleteMedia    []int64
	DeleteVariants []int64
}

// VariantFiles groups the uploads belonging to one variant index.
type VariantFiles struct {
	MainImage      *FormFile
	SecondaryImage *FormFile
	ColorPanel     *FormFile
}

// DecodeProductForm parses the multipart body under the given size
// ceiling. It performs no domain validation beyond shape; the product
// service owns the semantics.
func DecodeProductForm(r *http.Request, maxUploadBytes int64) (*ProductForm, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}

	form := &ProductForm{VariantFiles: map[int]VariantFiles{}}

	form.Name = formString(r, "name")
	form.Description = formString(r, "description")
	form.ModelNo = formString(r, "model_no")
	form.HowToApply = formString(r, "how_to_apply")
	form.Benefits = formString(r, "benefits")
	form.KeyFeatures = formString(r, "key_features")
	form.Ingredients = formString(r, "ingredients")

	if raw := formString(r, "base_price"); raw != nil {
		price, err := decimal.NewFromString(*raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base_price must be a number")
		}
		form.BasePrice = &price
	}
	if raw := formString(r, "base_stock"); raw != nil {
		var stock int
		if _, err := fmt.Sscanf(*raw, "%d", &stock); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base_stock must be an integer")
		}
		form.BaseStock = &stock
	}
	if raw := formString(r, "category_id"); raw != nil {
		var id int64
		if _, err := fmt.Sscanf(*raw, "%d", &id); err != nil || id <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category_id must be a positive integer")
		}
		form.CategoryID = &id
	}

	if raw := formString(r, "variants"); raw != nil {
		if err := json.Unmarshal([]byte(*raw), &form.Variants); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "variants must be a JSON array")
		}
	}
	var err error
	if form.DeleteMedia, err = formIDList(r, "delete_media"); err != nil {
		return nil, err
	}
	if form.DeleteVariants, err = formIDList(r, "delete_variants"); err != nil {
		return nil, err
	}

	if form.Thumbnail, err = formFile(r, "thumbnail"); err != nil {
		return nil, err
	}
	if form.Afterimage, err = formFile(r, "afterimage"); err != nil {
		return nil, err
	}
	if form.Video, err = formFile(r, "video"); err != nil {
		return nil, err
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["gallery"] {
			file, err := readFileHeader(header)
			if err != nil {
				return nil, err
			}
			form.Gallery = append(form.Gallery, *file)
		}

		for name := range r.MultipartForm.File {
			index, slot, ok := variantFileSlot(name)
			if !ok {
				continue
			}
			file, err := formFile(r, name)
			if err != nil {
				return nil, err
			}
			files := form.VariantFiles[index]
			switch slot {
			case "main":
				files.MainImage = file
			case "secondary":
				files.SecondaryImage = file
			case "panel":
				files.ColorPanel = file
			}
			form.VariantFiles[index] = files
		}
	}

	return form, nil
}

// ParseOptionalPrice converts an optional decimal form string,
// treating blank as absent.
func ParseOptionalPrice(raw *string) (product.Optional[decimal.Decimal], error) {
	var out product.Optional[decimal.Decimal]
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return out, nil
	}
	value, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return out, pkgerrors.New(pkgerrors.CodeValidation, "price must be a number")
	}
	return product.Set(value), nil
}

func formString(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	value := values[0]
	return &value
}

func formIDList(r *http.Request, key string) ([]int64, error) {
	raw := formString(r, key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(*raw), &ids); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a JSON array of ids")
	}
	return ids, nil
}

func formFile(r *http.Request, key string) (*FormFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers, ok := r.MultipartForm.File[key]
	if !ok || len(headers) == 0 {
		return nil, nil
	}
	return readFileHeader(headers[0])
}

func readFileHeader(header *multipart.FileHeader) (*FormFile, error) {
	file, err := header.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file")
	}
	return &FormFile{Filename: header.Filename, Data: data}, nil
}

func variantFileSlot(fieldName string) (int, string, bool) {
	for prefix, slot := range map[string]string{
		"variant_main_image_":      "main",
		"variant_secondary_image_": "secondary",
		"color_":                   "panel",
	} {
		if strings.HasPrefix(fieldName, prefix) {
			var index int
			if _, err := fmt.Sscanf(strings.TrimPrefix(fieldName, prefix), "%d", &index); err == nil && index >= 0 {
				return index, slot, true
			}
		}
	}
	return 0, "", false
}

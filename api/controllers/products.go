package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/justgold/justgold-backend/api/responses"
	"github.com/justgold/justgold-backend/api/validators"
	product "github.com/justgold/justgold-backend/internal/products"
	"github.com/justgold/justgold-backend/pkg/config"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/justgold/justgold-backend/pkg/logger"
	"github.com/justgold/justgold-backend/pkg/storage/cloudinary"
)

// ListProducts serves the filtered, cursor-paginated catalog listing.
func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		result, err := svc.List(r.Context(), validators.ParseListFilters(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductDetail serves a single product addressed as "<id>-<slug>".
// A stale or missing slug redirects to the canonical path.
func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, slug, err := validators.ParseIDSlug(chi.URLParam(r, "idSlug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Detail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if slug != dto.Slug {
			canonical := fmt.Sprintf("/api/v1/products/product/%d-%s", dto.ID, dto.Slug)
			http.Redirect(w, r, canonical, http.StatusMovedPermanently)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// CreateProduct handles the admin multipart create form: files are
// uploaded to the media store first, then the service persists rows
// carrying the resulting (url, key) pairs.
func CreateProduct(svc product.Service, uploader cloudinary.Uploader, mediaCfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || uploader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		form, err := validators.DecodeProductForm(r, maxUploadBytes(mediaCfg))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if form.Name == nil || form.BasePrice == nil || form.CategoryID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "name, base_price and category_id are required"))
			return
		}
		if len(form.Variants) > mediaCfg.MaxVariants {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d variants allowed", mediaCfg.MaxVariants)))
			return
		}

		input := product.CreateProductInput{
			Name:        *form.Name,
			Description: form.Description,
			BasePrice:   *form.BasePrice,
			BaseStock:   form.BaseStock,
			CategoryID:  *form.CategoryID,
			ModelNo:     form.ModelNo,
			HowToApply:  form.HowToApply,
			Benefits:    form.Benefits,
			KeyFeatures: form.KeyFeatures,
			Ingredients: form.Ingredients,
		}

		if input.Thumbnail, err = uploadOptional(r.Context(), uploader, form.Thumbnail, cloudinary.ResourceImage); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Afterimage, err = uploadOptional(r.Context(), uploader, form.Afterimage, cloudinary.ResourceImage); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Gallery, err = uploadGallery(r.Context(), uploader, form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Variants, err = buildVariantInputs(r.Context(), uploader, form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// UpdateProduct handles the admin multipart partial update. Only
// provided fields overwrite stored values.
func UpdateProduct(svc product.Service, uploader cloudinary.Uploader, mediaCfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || uploader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := validators.DecodeProductForm(r, maxUploadBytes(mediaCfg))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(form.Variants) > mediaCfg.MaxVariants {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d variants allowed", mediaCfg.MaxVariants)))
			return
		}

		input := product.UpdateProductInput{
			Name:             optionalFrom(form.Name),
			Description:      optionalFrom(form.Description),
			ModelNo:          optionalFrom(form.ModelNo),
			HowToApply:       optionalFrom(form.HowToApply),
			Benefits:         optionalFrom(form.Benefits),
			KeyFeatures:      optionalFrom(form.KeyFeatures),
			Ingredients:      optionalFrom(form.Ingredients),
			DeleteMediaIDs:   form.DeleteMedia,
			DeleteVariantIDs: form.DeleteVariants,
		}
		if form.BasePrice != nil {
			input.BasePrice = product.Set(*form.BasePrice)
		}
		if form.BaseStock != nil {
			input.BaseStock = product.Set(*form.BaseStock)
		}
		if form.CategoryID != nil {
			input.CategoryID = product.Set(*form.CategoryID)
		}

		if input.Thumbnail, err = uploadOptional(r.Context(), uploader, form.Thumbnail, cloudinary.ResourceImage); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Afterimage, err = uploadOptional(r.Context(), uploader, form.Afterimage, cloudinary.ResourceImage); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Gallery, err = uploadGallery(r.Context(), uploader, form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Variants, err = buildVariantInputs(r.Context(), uploader, form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

func DeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func maxUploadBytes(mediaCfg config.MediaConfig) int64 {
	mb := mediaCfg.MaxUploadMB
	if mb <= 0 {
		mb = 100
	}
	return int64(mb) << 20
}

func uploadOptional(ctx context.Context, uploader cloudinary.Uploader, file *validators.FormFile, resourceType cloudinary.ResourceType) (*product.UploadedAsset, error) {
	if file == nil {
		return nil, nil
	}
	result, err := uploader.Upload(ctx, file.Data, file.Filename, resourceType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "media upload failed")
	}
	return &product.UploadedAsset{URL: result.URL, Key: result.PublicID}, nil
}

func uploadGallery(ctx context.Context, uploader cloudinary.Uploader, form *validators.ProductForm) ([]product.GalleryUpload, error) {
	var gallery []product.GalleryUpload
	for i := range form.Gallery {
		asset, err := uploadOptional(ctx, uploader, &form.Gallery[i], cloudinary.ResourceImage)
		if err != nil {
			return nil, err
		}
		gallery = append(gallery, product.GalleryUpload{Asset: *asset, MediaType: "image"})
	}
	if form.Video != nil {
		asset, err := uploadOptional(ctx, uploader, form.Video, cloudinary.ResourceVideo)
		if err != nil {
			return nil, err
		}
		gallery = append(gallery, product.GalleryUpload{Asset: *asset, MediaType: "video"})
	}
	return gallery, nil
}

func buildVariantInputs(ctx context.Context, uploader cloudinary.Uploader, form *validators.ProductForm) ([]product.VariantInput, error) {
	for index := range form.VariantFiles {
		if index >= len(form.Variants) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variant file index %d has no matching variant entry", index))
		}
	}

	inputs := make([]product.VariantInput, 0, len(form.Variants))
	for i, payload := range form.Variants {
		input := product.VariantInput{
			ID:              payload.ID,
			Shade:           optionalFrom(payload.Shade),
			ColorType:       optionalFrom(payload.ColorType),
			ColorPanelType:  optionalFrom(payload.ColorPanelType),
			ColorPanelValue: optionalFrom(payload.ColorPanelValue),
			VariantModelNo:  optionalFrom(payload.VariantModelNo),
		}
		if payload.Stock != nil {
			input.Stock = product.Set(*payload.Stock)
		}
		var err error
		if input.Price, err = validators.ParseOptionalPrice(payload.Price); err != nil {
			return nil, err
		}
		if input.DiscountPrice, err = validators.ParseOptionalPrice(payload.DiscountPrice); err != nil {
			return nil, err
		}

		files := form.VariantFiles[i]
		if input.MainImage, err = uploadOptional(ctx, uploader, files.MainImage, cloudinary.ResourceImage); err != nil {
			return nil, err
		}
		if input.SecondaryImage, err = uploadOptional(ctx, uploader, files.SecondaryImage, cloudinary.ResourceImage); err != nil {
			return nil, err
		}
		if input.ColorPanelFile, err = uploadOptional(ctx, uploader, files.ColorPanel, cloudinary.ResourceImage); err != nil {
			return nil, err
		}

		inputs = append(inputs, input)
	}
	return inputs, nil
}

func optionalFrom(value *string) product.Optional[string] {
	var out product.Optional[string]
	if value != nil {
		out = product.Set(*value)
	}
	return out
}

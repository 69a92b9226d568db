package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justgold/justgold-backend/internal/media"
	"github.com/justgold/justgold-backend/pkg/cache"
	"github.com/justgold/justgold-backend/pkg/db"
	"github.com/justgold/justgold-backend/pkg/db/models"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/justgold/justgold-backend/pkg/logger"
	"github.com/justgold/justgold-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const slugConstraint = "products_slug_key"

// GalleryUpload is one gallery file already pushed to the media store.
type GalleryUpload struct {
	Asset     UploadedAsset
	MediaType string
}

// CreateProductInput holds the validated payload to create a product.
// All files were uploaded before the service is called; inputs carry
// their resulting (url, key) pairs.
type CreateProductInput struct {
	Name        string
	Description *string
	BasePrice   decimal.Decimal
	BaseStock   *int
	CategoryID  int64
	ModelNo     *string
	HowToApply  *string
	Benefits    *string
	KeyFeatures *string
	Ingredients *string
	Thumbnail   *UploadedAsset
	Afterimage  *UploadedAsset
	Gallery     []GalleryUpload
	Variants    []VariantInput
}

// UpdateProductInput holds partial mutation values. Unset fields keep
// their stored values; explicit deletion lists name gallery rows and
// variants to remove.
type UpdateProductInput struct {
	Name             Optional[string]
	Description      Optional[string]
	BasePrice        Optional[decimal.Decimal]
	BaseStock        Optional[int]
	CategoryID       Optional[int64]
	ModelNo          Optional[string]
	HowToApply       Optional[string]
	Benefits         Optional[string]
	KeyFeatures      Optional[string]
	Ingredients      Optional[string]
	Thumbnail        *UploadedAsset
	Afterimage       *UploadedAsset
	Gallery          []GalleryUpload
	Variants         []VariantInput
	DeleteMediaIDs   []int64
	DeleteVariantIDs []int64
}

// Service exposes catalog management and the browse listing.
type Service interface {
	List(ctx context.Context, raw RawListFilters) (*ListResult, error)
	Detail(ctx context.Context, id int64) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id int64) error
}

type listingCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type assetReconciler interface {
	DeleteAssets(ctx context.Context, urls []string)
}

type service struct {
	repo         *Repository
	dbClient     *db.Client
	cache        listingCache
	cacheTTL     time.Duration
	resolver     *media.Resolver
	reconciler   assetReconciler
	cacheMetrics *metrics.ListingCacheMetrics
	logg         *logger.Logger
}

// NewService constructs the product service. The cache is optional;
// everything else is required.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	listCache listingCache,
	cacheTTL time.Duration,
	resolver *media.Resolver,
	reconciler assetReconciler,
	cacheMetrics *metrics.ListingCacheMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("media resolver required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("media reconciler required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &service{
		repo:         repo,
		dbClient:     dbClient,
		cache:        listCache,
		cacheTTL:     cacheTTL,
		resolver:     resolver,
		reconciler:   reconciler,
		cacheMetrics: cacheMetrics,
		logg:         logg,
	}, nil
}

// List serves the browse endpoint: normalize, consult the cache, run
// the compiled query on a miss, shape, and write back best effort.
func (s *service) List(ctx context.Context, raw RawListFilters) (*ListResult, error) {
	filters := NormalizeFilters(raw)
	key := CacheKey(filters)

	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var result ListResult
			if err := json.Unmarshal([]byte(payload), &result); err == nil {
				s.cacheMetrics.IncHit()
				return &result, nil
			}
			s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "discarding undecodable listing cache entry")
		}
		s.cacheMetrics.IncMiss()
	}

	query := BuildListQuery(filters)
	records, err := s.repo.ListRows(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	rows := records
	hasMore := false
	var nextCursor *int64
	if len(records) > query.PageSize {
		rows = records[:query.PageSize]
		hasMore = true
		last := rows[len(rows)-1].ID
		nextCursor = &last
	}

	products := make([]ListedProduct, 0, len(rows))
	for _, record := range rows {
		products = append(products, ListedProduct{
			ID:             record.ID,
			Name:           record.Name,
			Slug:           record.Slug,
			Thumbnail:      s.resolver.ResolveURL(nullStringPtr(record.ThumbnailKey), nullStringPtr(record.Thumbnail)),
			BasePrice:      record.BasePrice,
			EffectivePrice: record.EffectivePrice,
			CreatedAt:      record.CreatedAt,
		})
	}

	result := &ListResult{
		Products:   products,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil && !errors.Is(err, cache.ErrDisabled) {
				s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), fmt.Sprintf("listing cache write failed: %v", err))
			}
		}
	}

	return result, nil
}

// Detail loads a product with variants and gallery, shaped for display.
func (s *service) Detail(ctx context.Context, id int64) (*ProductDTO, error) {
	loaded, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(loaded, s.resolver), nil
}

// Create inserts the product with its gallery and variants in one
// transaction. Files were uploaded beforehand; when the transaction
// fails they are orphaned remotely, so they are cleaned up best effort.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.CategoryID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	if !input.BasePrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base_price must be positive")
	}

	var createdID int64
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row := &models.Product{
			Name:        name,
			Slug:        Slugify(name),
			Description: input.Description,
			BasePrice:   input.BasePrice,
			CategoryID:  input.CategoryID,
			ModelNo:     input.ModelNo,
			HowToApply:  input.HowToApply,
			Benefits:    input.Benefits,
			KeyFeatures: input.KeyFeatures,
			Ingredients: input.Ingredients,
			IsActive:    true,
		}
		if input.BaseStock != nil {
			row.BaseStock = *input.BaseStock
		}
		if input.Thumbnail != nil {
			row.Thumbnail = &input.Thumbnail.URL
			row.ThumbnailKey = &input.Thumbnail.Key
		}
		if input.Afterimage != nil {
			row.Afterimage = &input.Afterimage.URL
			row.AfterimageKey = &input.Afterimage.Key
		}

		created, err := txRepo.CreateProduct(ctx, row)
		if err != nil {
			if db.IsUniqueViolation(err, slugConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "a product with this name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		createdID = created.ID

		for _, upload := range input.Gallery {
			image := &models.ProductImage{
				ProductID: created.ID,
				ImageURL:  upload.Asset.URL,
				ImageKey:  trimmedOrNil(upload.Asset.Key),
				MediaType: normalizeMediaType(upload.MediaType),
			}
			if _, err := txRepo.CreateImage(ctx, image); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert gallery entry")
			}
		}

		for index, variantInput := range input.Variants {
			variant, err := newVariantFromInput(created.ID, variantInput, true)
			if err != nil {
				return variantError(index, err)
			}
			if _, err := txRepo.CreateVariant(ctx, variant); err != nil {
				return variantError(index, err)
			}
		}

		return nil
	})
	if txErr != nil {
		s.cleanupUploads(ctx, createUploadURLs(input))
		if pkgerrors.As(txErr) != nil {
			return nil, txErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "create product")
	}

	return s.Detail(ctx, createdID)
}

// Update applies partial product changes, reconciles deleted and
// replaced media, and upserts submitted variants, all-or-nothing.
func (s *service) Update(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	var toDelete []string
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		toDelete = toDelete[:0]

		if len(input.DeleteMediaIDs) > 0 {
			images, err := txRepo.FindImages(ctx, id, input.DeleteMediaIDs)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load gallery entries")
			}
			for _, image := range images {
				toDelete = append(toDelete, s.resolver.ResolveURL(image.ImageKey, &image.ImageURL))
			}
			if err := txRepo.DeleteImages(ctx, id, input.DeleteMediaIDs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete gallery entries")
			}
		}

		if len(input.DeleteVariantIDs) > 0 {
			variants, err := txRepo.FindVariants(ctx, id, input.DeleteVariantIDs)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variants")
			}
			for _, variant := range variants {
				toDelete = append(toDelete, variantAssetURLs(s.resolver, variant)...)
			}
			if err := txRepo.DeleteVariants(ctx, id, input.DeleteVariantIDs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete variants")
			}
		}

		toDelete = append(toDelete, s.applyProductInput(current, input)...)
		if _, err := txRepo.UpdateProduct(ctx, current); err != nil {
			if db.IsUniqueViolation(err, slugConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "a product with this name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}

		for _, upload := range input.Gallery {
			image := &models.ProductImage{
				ProductID: id,
				ImageURL:  upload.Asset.URL,
				ImageKey:  trimmedOrNil(upload.Asset.Key),
				MediaType: normalizeMediaType(upload.MediaType),
			}
			if _, err := txRepo.CreateImage(ctx, image); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert gallery entry")
			}
		}

		for index, variantInput := range input.Variants {
			if variantInput.ID == nil {
				variant, err := newVariantFromInput(id, variantInput, false)
				if err != nil {
					return variantError(index, err)
				}
				if _, err := txRepo.CreateVariant(ctx, variant); err != nil {
					return variantError(index, err)
				}
				continue
			}

			variant, err := txRepo.FindVariantByID(ctx, id, *variantInput.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return variantError(index, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found"))
				}
				return variantError(index, err)
			}
			replaced, err := applyVariantInput(variant, variantInput)
			if err != nil {
				return variantError(index, err)
			}
			toDelete = append(toDelete, replaced...)
			if _, err := txRepo.UpdateVariant(ctx, variant); err != nil {
				return variantError(index, err)
			}
		}

		return nil
	})
	if txErr != nil {
		s.cleanupUploads(ctx, updateUploadURLs(input))
		if pkgerrors.As(txErr) != nil {
			return nil, txErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "update product")
	}

	s.deleteAfterCommit(ctx, toDelete)
	return s.Detail(ctx, id)
}

// Delete removes the product and everything attached to it, then
// clears the associated remote assets best effort.
func (s *service) Delete(ctx context.Context, id int64) error {
	loaded, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}

	assets := collectProductAssets(s.resolver, loaded)

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteProduct(ctx, id)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	s.deleteAfterCommit(ctx, assets)
	return nil
}

// applyProductInput merges partial fields onto the loaded row and
// returns the URLs of any replaced header images.
func (s *service) applyProductInput(row *models.Product, input UpdateProductInput) []string {
	if value, ok := input.Name.Get(); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			row.Name = trimmed
			row.Slug = Slugify(trimmed)
		}
	}
	if value, ok := input.Description.Get(); ok {
		row.Description = trimmedOrNil(value)
	}
	if value, ok := input.BasePrice.Get(); ok {
		row.BasePrice = value
	}
	if value, ok := input.BaseStock.Get(); ok {
		row.BaseStock = value
	}
	if value, ok := input.CategoryID.Get(); ok {
		row.CategoryID = value
	}
	if value, ok := input.ModelNo.Get(); ok {
		row.ModelNo = trimmedOrNil(value)
	}
	if value, ok := input.HowToApply.Get(); ok {
		row.HowToApply = trimmedOrNil(value)
	}
	if value, ok := input.Benefits.Get(); ok {
		row.Benefits = trimmedOrNil(value)
	}
	if value, ok := input.KeyFeatures.Get(); ok {
		row.KeyFeatures = trimmedOrNil(value)
	}
	if value, ok := input.Ingredients.Get(); ok {
		row.Ingredients = trimmedOrNil(value)
	}

	var replaced []string
	if input.Thumbnail != nil {
		if old := s.resolver.ResolveURL(row.ThumbnailKey, row.Thumbnail); old != "" {
			replaced = append(replaced, old)
		}
		row.Thumbnail = &input.Thumbnail.URL
		row.ThumbnailKey = &input.Thumbnail.Key
	}
	if input.Afterimage != nil {
		if old := s.resolver.ResolveURL(row.AfterimageKey, row.Afterimage); old != "" {
			replaced = append(replaced, old)
		}
		row.Afterimage = &input.Afterimage.URL
		row.AfterimageKey = &input.Afterimage.Key
	}
	return replaced
}

// deleteAfterCommit fires external deletions on their own goroutine so
// the response never waits on the media store.
func (s *service) deleteAfterCommit(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	go s.reconciler.DeleteAssets(context.WithoutCancel(ctx), urls)
}

// cleanupUploads removes files that were uploaded for a mutation whose
// transaction rolled back.
func (s *service) cleanupUploads(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "asset_count", len(urls)), "rolled back mutation left uploaded assets, deleting")
	go s.reconciler.DeleteAssets(context.WithoutCancel(ctx), urls)
}

func collectProductAssets(resolver *media.Resolver, p *models.Product) []string {
	var urls []string
	if u := resolver.ResolveURL(p.ThumbnailKey, p.Thumbnail); u != "" {
		urls = append(urls, u)
	}
	if u := resolver.ResolveURL(p.AfterimageKey, p.Afterimage); u != "" {
		urls = append(urls, u)
	}
	for _, image := range p.Images {
		if u := resolver.ResolveURL(image.ImageKey, &image.ImageURL); u != "" {
			urls = append(urls, u)
		}
	}
	for _, variant := range p.Variants {
		urls = append(urls, variantAssetURLs(resolver, variant)...)
	}
	return urls
}

func variantAssetURLs(resolver *media.Resolver, v models.ProductVariant) []string {
	var urls []string
	if u := resolver.ResolveURL(v.MainImageKey, v.MainImage); u != "" {
		urls = append(urls, u)
	}
	if u := resolver.ResolveURL(v.SecondaryImageKey, v.SecondaryImage); u != "" {
		urls = append(urls, u)
	}
	return urls
}

func createUploadURLs(input CreateProductInput) []string {
	var urls []string
	if input.Thumbnail != nil {
		urls = append(urls, input.Thumbnail.URL)
	}
	if input.Afterimage != nil {
		urls = append(urls, input.Afterimage.URL)
	}
	for _, upload := range input.Gallery {
		urls = append(urls, upload.Asset.URL)
	}
	for _, variant := range input.Variants {
		urls = append(urls, variantUploadURLs(variant)...)
	}
	return urls
}

func updateUploadURLs(input UpdateProductInput) []string {
	var urls []string
	if input.Thumbnail != nil {
		urls = append(urls, input.Thumbnail.URL)
	}
	if input.Afterimage != nil {
		urls = append(urls, input.Afterimage.URL)
	}
	for _, upload := range input.Gallery {
		urls = append(urls, upload.Asset.URL)
	}
	for _, variant := range input.Variants {
		urls = append(urls, variantUploadURLs(variant)...)
	}
	return urls
}

func variantUploadURLs(in VariantInput) []string {
	var urls []string
	if in.MainImage != nil {
		urls = append(urls, in.MainImage.URL)
	}
	if in.SecondaryImage != nil {
		urls = append(urls, in.SecondaryImage.URL)
	}
	if in.ColorPanelFile != nil {
		urls = append(urls, in.ColorPanelFile.URL)
	}
	return urls
}

func normalizeMediaType(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), models.MediaTypeVideo) {
		return models.MediaTypeVideo
	}
	return models.MediaTypeImage
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

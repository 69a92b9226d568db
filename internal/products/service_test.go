package product

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/justgold/justgold-backend/internal/media"
	"github.com/justgold/justgold-backend/pkg/db"
	"github.com/justgold/justgold-backend/pkg/db/models"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/justgold/justgold-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testMediaBase = "https://res.cloudinary.com/demo/image/upload"

type fakeListingCache struct {
	mu     sync.Mutex
	store  map[string]string
	gets   int
	hits   int
	setErr error
}

func newFakeListingCache() *fakeListingCache {
	return &fakeListingCache{store: make(map[string]string)}
}

func (f *fakeListingCache) Get(_ context.Context, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	value, ok := f.store[key]
	if ok {
		f.hits++
	}
	return value, ok
}

func (f *fakeListingCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.store[key] = value
	return nil
}

type recordingReconciler struct {
	mu   sync.Mutex
	urls []string
}

func (r *recordingReconciler) DeleteAssets(_ context.Context, urls []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, urls...)
}

func (r *recordingReconciler) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

func newTestService(t *testing.T, conn *gorm.DB, listCache listingCache) (Service, *recordingReconciler) {
	t.Helper()

	reconciler := &recordingReconciler{}
	svc, err := NewService(
		NewRepository(conn),
		db.FromGorm(conn),
		listCache,
		time.Minute,
		media.NewResolver(testMediaBase),
		reconciler,
		metrics.NewListingCacheMetrics(prometheus.NewRegistry()),
		testServiceLogger(),
	)
	require.NoError(t, err)
	return svc, reconciler
}

func TestListCacheMissThenHit(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	listCache := newFakeListingCache()
	svc, _ := newTestService(t, conn, listCache)
	ctx := context.Background()

	category := mustCreateCategory(t, conn, "Lips", nil)
	created := mustCreateProduct(t, conn, "Velvet Lipstick", 1000, category.ID)

	first, err := svc.List(ctx, RawListFilters{})
	require.NoError(t, err)
	require.Len(t, first.Products, 1)
	assert.Equal(t, 0, listCache.hits)

	// remove the row; a second call must be served from the cache
	require.NoError(t, conn.Delete(&models.Product{}, created.ID).Error)

	second, err := svc.List(ctx, RawListFilters{})
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	assert.Equal(t, first.Products[0].ID, second.Products[0].ID)
	assert.Equal(t, 1, listCache.hits)
}

func TestListWithoutCache(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	svc, _ := newTestService(t, conn, nil)

	category := mustCreateCategory(t, conn, "Lips", nil)
	mustCreateProduct(t, conn, "Velvet Lipstick", 1000, category.ID)

	result, err := svc.List(context.Background(), RawListFilters{})
	require.NoError(t, err)
	assert.Len(t, result.Products, 1)
	assert.False(t, result.HasMore)
	assert.Nil(t, result.NextCursor)
}

func TestListCacheWriteFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	listCache := newFakeListingCache()
	listCache.setErr = errors.New("backend gone")
	svc, _ := newTestService(t, conn, listCache)

	category := mustCreateCategory(t, conn, "Lips", nil)
	mustCreateProduct(t, conn, "Velvet Lipstick", 1000, category.ID)

	result, err := svc.List(context.Background(), RawListFilters{})
	require.NoError(t, err)
	assert.Len(t, result.Products, 1)
}

func TestListHasMoreAndNextCursor(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	svc, _ := newTestService(t, conn, nil)
	ctx := context.Background()

	category := mustCreateCategory(t, conn, "Lips", nil)
	for i := 0; i < ListPageSize+3; i++ {
		mustCreateProduct(t, conn, "Shade No "+string(rune('A'+i)), 100, category.ID)
	}

	page, err := svc.List(ctx, RawListFilters{Sort: SortPriceLow})
	require.NoError(t, err)
	require.Len(t, page.Products, ListPageSize)
	require.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, page.Products[len(page.Products)-1].ID, *page.NextCursor)

	rest, err := svc.List(ctx, RawListFilters{Sort: SortPriceLow, Cursor: formatInt64(*page.NextCursor)})
	require.NoError(t, err)
	assert.Len(t, rest.Products, 3)
	assert.False(t, rest.HasMore)
	assert.Nil(t, rest.NextCursor)
}

func TestCreateProductEndToEnd(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	svc, _ := newTestService(t, conn, nil)
	ctx := context.Background()

	category := mustCreateCategory(t, conn, "Lips", nil)

	created, err := svc.Create(ctx, CreateProductInput{
		Name:       "Velvet Matte Lipstick",
		BasePrice:  decimal.NewFromInt(1000),
		CategoryID: category.ID,
		Thumbnail: &UploadedAsset{
			URL: testMediaBase + "/v1/just_gold/products/thumb.png",
			Key: "just_gold/products/thumb",
		},
		Gallery: []GalleryUpload{{
			Asset: UploadedAsset{
				URL: testMediaBase + "/v1/just_gold/products/gallery.png",
				Key: "just_gold/products/gallery",
			},
			MediaType: "image",
		}},
		Variants: []VariantInput{{
			Shade:           Set("Ruby"),
			ColorPanelType:  Set(ColorPanelHex),
			ColorPanelValue: Set("#a00"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "velvet-matte-lipstick", created.Slug)
	require.Len(t, created.Variants, 1)
	assert.True(t, created.Variants[0].EffectivePrice.Equal(decimal.NewFromInt(1000)),
		"null variant price must fall back to base price")
	require.Len(t, created.Images, 1)

	listed, err := svc.List(ctx, RawListFilters{})
	require.NoError(t, err)
	require.Len(t, listed.Products, 1)
	assert.True(t, listed.Products[0].EffectivePrice.Equal(decimal.NewFromInt(1000)))

	// pricing the variant moves the effective price
	variantID := created.Variants[0].ID
	_, err = svc.Update(ctx, created.ID, UpdateProductInput{
		Variants: []VariantInput{{
			ID:    &variantID,
			Price: Set(decimal.NewFromInt(500)),
		}},
	})
	require.NoError(t, err)

	listed, err = svc.List(ctx, RawListFilters{})
	require.NoError(t, err)
	require.Len(t, listed.Products, 1)
	assert.True(t, listed.Products[0].EffectivePrice.Equal(decimal.NewFromInt(500)))
}

func TestCreateDuplicateSlugConflicts(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	svc, _ := newTestService(t, conn, nil)
	ctx := context.Background()

	category := mustCreateCategory(t, conn, "Lips", nil)
	input := CreateProductInput{
		Name:       "Velvet Matte Lipstick",
		BasePrice:  decimal.NewFromInt(1000),
		CategoryID: category.ID,
	}

	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestUpdateNotFound(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	svc, _ := newTestService(t, conn, nil)

	_, err := svc.Update(context.Background(), 999, UpdateProductInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateDeletesGalleryAndQueuesAssets(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	svc, reconciler := newTestService(t, conn, nil)
	ctx := context.Background()

	category := mustCreateCategory(t, conn, "Lips", nil)
	created := mustCreateProduct(t, conn, "Velvet Lipstick", 1000, category.ID)
	imageURL := testMediaBase + "/v1/just_gold/products/gallery.png"
	image := &models.ProductImage{ProductID: created.ID, ImageURL: imageURL, MediaType: models.MediaTypeImage}
	require.NoError(t, conn.Create(image).Error)

	_, err := svc.Update(ctx, created.ID, UpdateProductInput{DeleteMediaIDs: []int64{image.ID}})
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.ProductImage{}).Where("product_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)

	require.Eventually(t, func() bool {
		for _, u := range reconciler.snapshot() {
			if u == imageURL {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond, "deleted gallery row must queue its asset")
}

func TestUpdateVariantRejectionRollsBackBatch(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	svc, _ := newTestService(t, conn, nil)
	ctx := context.Background()

	category := mustCreateCategory(t, conn, "Lips", nil)
	created := mustCreateProduct(t, conn, "Velvet Lipstick", 1000, category.ID)

	_, err := svc.Update(ctx, created.ID, UpdateProductInput{
		Variants: []VariantInput{
			{Shade: Set("Ruby"), ColorPanelType: Set(ColorPanelHex), ColorPanelValue: Set("#a00")},
			{Shade: Set("Nude"), ColorPanelType: Set(ColorPanelHex), ColorPanelValue: Set("#zzz")},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variant 1")

	var count int64
	require.NoError(t, conn.Model(&models.ProductVariant{}).Where("product_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count, "rejection must roll back every variant in the batch")
}

func TestDeleteProductRemovesRowsAndAssets(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	svc, reconciler := newTestService(t, conn, nil)
	ctx := context.Background()

	category := mustCreateCategory(t, conn, "Lips", nil)
	created := mustCreateProduct(t, conn, "Velvet Lipstick", 1000, category.ID)

	thumbURL := testMediaBase + "/v1/just_gold/products/thumb.png"
	require.NoError(t, conn.Model(created).Update("thumbnail", thumbURL).Error)

	variant := mustCreateVariant(t, conn, created.ID, "Ruby", nil)
	mainURL := testMediaBase + "/v1/just_gold/products/variant-main.png"
	require.NoError(t, conn.Model(variant).Update("main_image", mainURL).Error)

	galleryURL := testMediaBase + "/v1/just_gold/products/gallery.png"
	require.NoError(t, conn.Create(&models.ProductImage{
		ProductID: created.ID,
		ImageURL:  galleryURL,
		MediaType: models.MediaTypeImage,
	}).Error)

	require.NoError(t, svc.Delete(ctx, created.ID))

	var products, variants, images int64
	require.NoError(t, conn.Model(&models.Product{}).Count(&products).Error)
	require.NoError(t, conn.Model(&models.ProductVariant{}).Count(&variants).Error)
	require.NoError(t, conn.Model(&models.ProductImage{}).Count(&images).Error)
	assert.Zero(t, products)
	assert.Zero(t, variants, "variants must cascade with the product")
	assert.Zero(t, images, "gallery rows must cascade with the product")

	require.Eventually(t, func() bool {
		got := reconciler.snapshot()
		if len(got) != 3 {
			return false
		}
		want := map[string]struct{}{thumbURL: {}, mainURL: {}, galleryURL: {}}
		for _, u := range got {
			delete(want, u)
		}
		return len(want) == 0
	}, time.Second, 10*time.Millisecond, "one external delete per associated asset")
}

func TestDeleteNotFound(t *testing.T) {
	t.Parallel()

	conn := setupCatalogDB(t)
	svc, _ := newTestService(t, conn, nil)

	err := svc.Delete(context.Background(), 12345)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

package media

import (
	"context"
	"sync"

	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/justgold/justgold-backend/pkg/logger"
	"github.com/justgold/justgold-backend/pkg/storage/cloudinary"
)

// Destroyer removes a stored asset by public ID.
type Destroyer interface {
	Destroy(ctx context.Context, publicID string, resourceType cloudinary.ResourceType) error
}

// Reconciler removes remote assets after their database rows are gone.
// Deletion is best effort: products and variants must not fail over a
// stale asset, so every failure is logged and swallowed.
type Reconciler struct {
	store Destroyer
	logg  *logger.Logger
}

func NewReconciler(store Destroyer, logg *logger.Logger) (*Reconciler, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media store required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger required")
	}
	return &Reconciler{store: store, logg: logg}, nil
}

// DeleteAssets fans one destroy call per URL out across goroutines and
// waits for all of them. URLs without an extractable key are skipped.
// Callers invoke it after commit, typically on its own goroutine.
func (r *Reconciler) DeleteAssets(ctx context.Context, urls []string) {
	if r == nil || len(urls) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(urls))
	var wg sync.WaitGroup
	for _, rawURL := range urls {
		key, ok := ExtractKey(rawURL)
		if !ok {
			r.logg.Warn(r.logg.WithField(ctx, "asset_url", rawURL), "media delete skipped: no storage key in url")
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		resourceType := cloudinary.ResourceImage
		if IsVideo(rawURL) {
			resourceType = cloudinary.ResourceVideo
		}

		wg.Add(1)
		go func(key string, resourceType cloudinary.ResourceType) {
			defer wg.Done()
			if err := r.store.Destroy(ctx, key, resourceType); err != nil {
				r.logg.Error(r.logg.WithField(ctx, "asset_key", key), "media delete failed", err)
			}
		}(key, resourceType)
	}
	wg.Wait()
}

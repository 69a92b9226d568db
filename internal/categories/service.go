package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	product "github.com/justgold/justgold-backend/internal/products"
	"github.com/justgold/justgold-backend/pkg/db/models"
	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
	"github.com/justgold/justgold-backend/pkg/logger"
	"gorm.io/gorm"
)

// CategoryDTO is one listing entry with direct subcategories nested.
type CategoryDTO struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Subcategories []CategoryDTO `json:"subcategories,omitempty"`
}

// CreateCategoryInput holds the payload to create a category.
type CreateCategoryInput struct {
	Name     string
	ParentID *int64
}

// Service exposes the category tree.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// List returns parent categories with their direct subcategories
// nested one level. Orphaned subcategories are skipped and logged.
func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}

	parents := make([]CategoryDTO, 0)
	index := make(map[int64]int, len(rows))
	for _, row := range rows {
		if row.ParentID != nil {
			continue
		}
		index[row.ID] = len(parents)
		parents = append(parents, CategoryDTO{ID: row.ID, Name: row.Name, Slug: row.Slug})
	}
	for _, row := range rows {
		if row.ParentID == nil {
			continue
		}
		at, ok := index[*row.ParentID]
		if !ok {
			s.logg.Warn(s.logg.WithField(ctx, "category_id", row.ID), "skipping orphan subcategory in listing")
			continue
		}
		parents[at].Subcategories = append(parents[at].Subcategories, CategoryDTO{
			ID:   row.ID,
			Name: row.Name,
			Slug: row.Slug,
		})
	}
	return parents, nil
}

// Create inserts a category, verifying the parent exists when one is
// referenced.
func (s *service) Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	if input.ParentID != nil {
		if _, err := s.repo.FindByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parent category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent category")
		}
	}

	created, err := s.repo.Create(ctx, &models.Category{
		Name:     name,
		Slug:     product.Slugify(name),
		ParentID: input.ParentID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	return &CategoryDTO{ID: created.ID, Name: created.Name, Slug: created.Slug}, nil
}

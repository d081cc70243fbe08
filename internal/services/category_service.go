// internal/services/category_service.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openshelf/shop-backend/internal/apperrors"
	"github.com/openshelf/shop-backend/internal/models"
	"github.com/openshelf/shop-backend/internal/utils"
)

type CategoryService struct {
	db *gorm.DB
}

type CreateCategoryRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=100"`
	Slug        string     `json:"slug,omitempty" validate:"omitempty,max=120"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string    `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

type CategorySearchParams struct {
	utils.PaginationParams
	ActiveOnly bool
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) CreateCategory(req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "validation failed", err)
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	var existing models.Category
	if err := s.db.Where("name = ? OR slug = ?", req.Name, slug).First(&existing).Error; err == nil {
		if existing.Name == req.Name {
			return nil, apperrors.Conflictf("category with this name already exists")
		}
		return nil, apperrors.Conflictf("category with this slug already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.KindInternal, "database error", err)
	}

	if req.ParentID != nil {
		if _, err := s.getCategory(*req.ParentID); err != nil {
			return nil, apperrors.Validationf("parent category not found")
		}
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    true,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create category", err)
	}

	return category, nil
}

func (s *CategoryService) GetCategory(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.Preload("Children").First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("category not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "database error", err)
	}
	return &category, nil
}

func (s *CategoryService) UpdateCategory(id uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "validation failed", err)
	}

	category, err := s.getCategory(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil && *req.Name != category.Name {
		var count int64
		s.db.Model(&models.Category{}).Where("name = ? AND id <> ?", *req.Name, id).Count(&count)
		if count > 0 {
			return nil, apperrors.Conflictf("category with this name already exists")
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ParentID != nil {
		if err := s.checkParent(id, *req.ParentID); err != nil {
			return nil, err
		}
		updates["parent_id"] = *req.ParentID
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update category", err)
		}
	}

	return s.GetCategory(id)
}

// DeleteCategory soft-deletes so products and historical orders keep a
// valid reference. Child categories are left untouched.
func (s *CategoryService) DeleteCategory(id uuid.UUID) error {
	result := s.db.Model(&models.Category{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("category not found")
	}
	return nil
}

func (s *CategoryService) SearchCategories(params CategorySearchParams) ([]models.Category, int64, error) {
	query := s.db.Model(&models.Category{})

	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "failed to count categories", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "failed to fetch categories", err)
	}

	return categories, total, nil
}

func (s *CategoryService) getCategory(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("category not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "database error", err)
	}
	return &category, nil
}

// checkParent rejects re-parenting that would introduce a cycle by walking
// the ancestor chain of the proposed parent.
func (s *CategoryService) checkParent(id, parentID uuid.UUID) error {
	if id == parentID {
		return apperrors.Validationf("category cannot be its own parent")
	}

	current := parentID
	for {
		parent, err := s.getCategory(current)
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				return apperrors.Validationf("parent category not found")
			}
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == id {
			return apperrors.Validationf("category hierarchy cannot contain cycles")
		}
		current = *parent.ParentID
	}
}

package brands

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	"github.com/pharmaquote/pharmaquote-backend/pkg/pagination"
)

// Repository persists the brand catalog, owner scoped.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if brand.ID == uuid.Nil {
		brand.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

// Find loads a brand regardless of active flag so updates can reactivate.
func (r *Repository) Find(ctx context.Context, ownerID, brandID uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", brandID, ownerID).
		First(&brand).Error
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *Repository) FindByName(ctx context.Context, ownerID uuid.UUID, name string) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND LOWER(name) = LOWER(?)", ownerID, name).
		First(&brand).Error
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// ListFilter narrows and orders brand listings.
type ListFilter struct {
	Search   string
	Category string
	SortBy   string
	SortDesc bool
	Page     pagination.Page
}

var brandSortColumns = map[string]string{
	"name":       "name",
	"cost_price": "cost_price",
	"mrp":        "mrp",
	"created_at": "created_at",
}

func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]models.Brand, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Brand{}).
		Where("owner_id = ? AND is_active = ?", ownerID, true)

	if search := strings.TrimSpace(filter.Search); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(COALESCE(manufacturer, '')) LIKE ? OR LOWER(COALESCE(salt_name, '')) LIKE ?",
			needle, needle, needle)
	}
	if filter.Category != "" {
		query = query.Where("therapeutic_category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := brandSortColumns[filter.SortBy]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	page := filter.Page.Normalize()
	var list []models.Brand
	err := query.
		Order(column + " " + direction).
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *Repository) Save(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if err := r.db.WithContext(ctx).Save(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

// Deactivate soft-deletes a brand so historical quote lines keep resolving.
func (r *Repository) Deactivate(ctx context.Context, ownerID, brandID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Brand{}).
		Where("id = ? AND owner_id = ? AND is_active = ?", brandID, ownerID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

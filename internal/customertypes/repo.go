package customertypes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
)

// Repository persists customer types, owner scoped.
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

func (r *Repository) Create(ctx context.Context, ct *models.CustomerType) (*models.CustomerType, error) {
	if ct.ID == uuid.Nil {
		ct.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(ct).Error; err != nil {
		return nil, err
	}
	return ct, nil
}

func (r *Repository) Find(ctx context.Context, ownerID, typeID uuid.UUID) (*models.CustomerType, error) {
	var ct models.CustomerType
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", typeID, ownerID).
		First(&ct).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *Repository) FindByName(ctx context.Context, ownerID uuid.UUID, name string) (*models.CustomerType, error) {
	var ct models.CustomerType
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND LOWER(name) = LOWER(?)", ownerID, name).
		First(&ct).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *Repository) List(ctx context.Context, ownerID uuid.UUID) ([]models.CustomerType, error) {
	var types []models.CustomerType
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("is_predefined DESC, name ASC").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (r *Repository) Save(ctx context.Context, ct *models.CustomerType) (*models.CustomerType, error) {
	if err := r.db.WithContext(ctx).Save(ct).Error; err != nil {
		return nil, err
	}
	return ct, nil
}

func (r *Repository) Delete(ctx context.Context, ownerID, typeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", typeID, ownerID).
		Delete(&models.CustomerType{})
	return res.RowsAffected, res.Error
}

// CountQuoteReferences reports how many quotes point at a customer type.
func (r *Repository) CountQuoteReferences(ctx context.Context, ownerID, typeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("owner_id = ? AND customer_type_id = ?", ownerID, typeID).
		Count(&count).Error
	return count, err
}

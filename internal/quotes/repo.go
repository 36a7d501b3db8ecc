package quotes

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	"github.com/pharmaquote/pharmaquote-backend/pkg/enums"
)

// Repository persists quotes and their line items, owner scoped.
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

// Create inserts a quote together with its line items.
func (r *Repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	for i := range quote.LineItems {
		if quote.LineItems[i].ID == uuid.Nil {
			quote.LineItems[i].ID = uuid.New()
		}
		quote.LineItems[i].QuoteID = quote.ID
	}
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

// Find loads a quote with its line items.
func (r *Repository) Find(ctx context.Context, ownerID, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("id = ? AND owner_id = ?", quoteID, ownerID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

var quoteSortColumns = map[string]string{
	"quote_date":   "quote_date",
	"valid_until":  "valid_until",
	"total_amount": "total_amount",
	"status":       "status",
	"created_at":   "created_at",
}

// List returns one page of quotes matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]models.Quote, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("owner_id = ?", ownerID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if needle := strings.TrimSpace(filter.CustomerName); needle != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(needle)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := quoteSortColumns[filter.SortBy]
	if !ok {
		column = "quote_date"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	page := filter.Page.Normalize()
	var list []models.Quote
	err := query.
		Preload("LineItems").
		Order(column + " " + direction).
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateStatus persists a status transition.
func (r *Repository) UpdateStatus(ctx context.Context, ownerID, quoteID uuid.UUID, status enums.QuoteStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ? AND owner_id = ?", quoteID, ownerID).
		Update("status", status).Error
}

// Delete removes a quote and its line items. The line-item cleanup is
// explicit so sqlite tests behave like the Postgres cascade.
func (r *Repository) Delete(ctx context.Context, ownerID, quoteID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Delete(&models.QuoteLineItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", quoteID, ownerID).
		Delete(&models.Quote{}).Error
}

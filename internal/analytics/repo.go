package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository runs the aggregate queries behind the dashboard. All numbers
// come straight from SQL; nothing here mutates state.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StatusCount is one status bucket in the quote funnel.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Totals aggregates the accepted-quote revenue and margin.
type Totals struct {
	Quotes        int64           `json:"quotes"`
	Revenue       decimal.Decimal `json:"revenue"`
	Margin        decimal.Decimal `json:"margin"`
	ActiveBrands  int64           `json:"active_brands"`
	CustomerTypes int64           `json:"customer_types"`
}

func (r *Repository) CountByStatus(ctx context.Context, ownerID uuid.UUID) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Table("quotes").
		Select("status, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *Repository) Totals(ctx context.Context, ownerID uuid.UUID) (*Totals, error) {
	var totals Totals
	err := r.db.WithContext(ctx).
		Table("quotes").
		Select(`COUNT(*) AS quotes,
COALESCE(SUM(CASE WHEN status = 'accepted' THEN total_amount ELSE 0 END), 0) AS revenue,
COALESCE(SUM(CASE WHEN status = 'accepted' THEN total_margin ELSE 0 END), 0) AS margin`).
		Where("owner_id = ?", ownerID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Table("brands").
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Count(&totals.ActiveBrands).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Table("customer_types").
		Where("owner_id = ?", ownerID).
		Count(&totals.CustomerTypes).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// TrendPoint is one day of quoted and accepted amounts.
type TrendPoint struct {
	Day      string          `json:"day"`
	Quoted   decimal.Decimal `json:"quoted"`
	Accepted decimal.Decimal `json:"accepted"`
	Count    int64           `json:"count"`
}

// RevenueTrend buckets quotes per day over the trailing window.
func (r *Repository) RevenueTrend(ctx context.Context, ownerID uuid.UUID, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	var points []TrendPoint
	err := r.db.WithContext(ctx).
		Table("quotes").
		Select(`DATE(quote_date) AS day,
COALESCE(SUM(total_amount), 0) AS quoted,
COALESCE(SUM(CASE WHEN status = 'accepted' THEN total_amount ELSE 0 END), 0) AS accepted,
COUNT(*) AS count`).
		Where("owner_id = ?", ownerID).
		Where("quote_date >= ?", cutoff).
		Group("DATE(quote_date)").
		Order("day ASC").
		Scan(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

// BrandStat ranks one brand by quoted volume.
type BrandStat struct {
	BrandID   uuid.UUID       `json:"brand_id"`
	BrandName string          `json:"brand_name"`
	Quantity  int64           `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	Margin    decimal.Decimal `json:"margin"`
}

// TopBrands ranks brands by quoted amount across all quotes.
func (r *Repository) TopBrands(ctx context.Context, ownerID uuid.UUID, limit int) ([]BrandStat, error) {
	if limit <= 0 {
		limit = 5
	}
	var stats []BrandStat
	err := r.db.WithContext(ctx).
		Table("quote_line_items").
		Select(`quote_line_items.brand_id AS brand_id,
brands.name AS brand_name,
SUM(quote_line_items.quantity) AS quantity,
COALESCE(SUM(quote_line_items.line_total), 0) AS amount,
COALESCE(SUM(quote_line_items.margin_earned), 0) AS margin`).
		Joins("JOIN quotes ON quotes.id = quote_line_items.quote_id").
		Joins("JOIN brands ON brands.id = quote_line_items.brand_id").
		Where("quotes.owner_id = ?", ownerID).
		Group("quote_line_items.brand_id, brands.name").
		Order("amount DESC").
		Limit(limit).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

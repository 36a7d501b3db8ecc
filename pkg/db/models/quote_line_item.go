package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteLineItem captures the priced snapshot of one brand inside a quote.
// Line items are immutable after creation; only whole-quote status changes
// are supported.
type QuoteLineItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID         uuid.UUID       `gorm:"column:quote_id;type:uuid;not null"`
	BrandID         uuid.UUID       `gorm:"column:brand_id;type:uuid;not null"`
	Quantity        int             `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	MarginPercent   decimal.Decimal `gorm:"column:margin_percent;type:numeric(7,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	LineTotal       decimal.Decimal `gorm:"column:line_total;type:numeric(14,2);not null"`
	MarginEarned    decimal.Decimal `gorm:"column:margin_earned;type:numeric(14,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

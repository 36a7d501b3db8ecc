package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmaquote/pharmaquote-backend/pkg/enums"
)

// Quote is a time-bounded price offer to a named customer. Totals are
// derived from the line items and recomputed whenever they change.
type Quote struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID        uuid.UUID         `gorm:"column:owner_id;type:uuid;not null"`
	QuoteNumber    string            `gorm:"column:quote_number;not null;uniqueIndex:idx_quotes_quote_number"`
	CustomerName   string            `gorm:"column:customer_name;not null"`
	CustomerEmail  *string           `gorm:"column:customer_email"`
	CustomerPhone  *string           `gorm:"column:customer_phone"`
	CustomerTypeID *uuid.UUID        `gorm:"column:customer_type_id;type:uuid"`
	Status         enums.QuoteStatus `gorm:"column:status;not null;default:'draft'"`
	Notes          *string           `gorm:"column:notes"`
	QuoteDate      time.Time         `gorm:"column:quote_date;not null"`
	ValidUntil     time.Time         `gorm:"column:valid_until;not null"`
	TotalAmount    decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	TotalMargin    decimal.Decimal   `gorm:"column:total_margin;type:numeric(14,2);not null;default:0"`
	LineItems      []QuoteLineItem   `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

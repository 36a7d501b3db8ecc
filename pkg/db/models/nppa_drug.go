package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NPPAControlledDrug is a row in the national reference table of
// price-controlled drugs. The table is global, not tenant-scoped, and is
// matched against brand names case-insensitively.
type NPPAControlledDrug struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DrugName         string           `gorm:"column:drug_name;not null;uniqueIndex:idx_nppa_drug_name"`
	SaltName         *string          `gorm:"column:salt_name"`
	Strength         *string          `gorm:"column:strength"`
	MaxAllowedMargin *decimal.Decimal `gorm:"column:max_allowed_margin;type:numeric(5,2)"`
	PriceCap         *decimal.Decimal `gorm:"column:price_cap;type:numeric(12,2)"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (NPPAControlledDrug) TableName() string {
	return "nppa_controlled_drugs"
}

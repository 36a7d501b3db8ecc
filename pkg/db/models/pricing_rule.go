package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingRule overrides the default margin for a (brand, customer type)
// pair. Either SellPrice or MarginPercent drives the base price; an explicit
// SellPrice wins when both are present. MinQuantity/MaxQuantity bound the
// volume discount tier; a nil MaxQuantity leaves the tier open-ended.
type PricingRule struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID            uuid.UUID        `gorm:"column:owner_id;type:uuid;not null"`
	BrandID            uuid.UUID        `gorm:"column:brand_id;type:uuid;not null"`
	CustomerTypeID     *uuid.UUID       `gorm:"column:customer_type_id;type:uuid"`
	MarginPercent      *decimal.Decimal `gorm:"column:margin_percent;type:numeric(5,2)"`
	SellPrice          *decimal.Decimal `gorm:"column:sell_price;type:numeric(12,2)"`
	MinQuantity        int              `gorm:"column:min_quantity;not null;default:1"`
	MaxQuantity        *int             `gorm:"column:max_quantity"`
	VolumeDiscount     decimal.Decimal  `gorm:"column:volume_discount;type:numeric(5,2);not null;default:0"`
	SpecialPriceReason *string          `gorm:"column:special_price_reason"`
	ValidFrom          *time.Time       `gorm:"column:valid_from;type:date"`
	ValidUntil         *time.Time       `gorm:"column:valid_until;type:date"`
	IsActive           bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

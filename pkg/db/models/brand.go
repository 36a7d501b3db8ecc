package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Brand represents one SKU in a distributor's product catalog. MRP is the
// regulatory price ceiling; CostPrice is the distributor's landed cost.
type Brand struct {
	ID                  uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID             uuid.UUID        `gorm:"column:owner_id;type:uuid;not null"`
	Name                string           `gorm:"column:name;not null"`
	Manufacturer        *string          `gorm:"column:manufacturer"`
	TherapeuticCategory *string          `gorm:"column:therapeutic_category"`
	SaltName            *string          `gorm:"column:salt_name"`
	Strength            *string          `gorm:"column:strength"`
	Packing             *string          `gorm:"column:packing"`
	GTINCode            *string          `gorm:"column:gtin_code"`
	CostPrice           decimal.Decimal  `gorm:"column:cost_price;type:numeric(12,2);not null"`
	MRP                 decimal.Decimal  `gorm:"column:mrp;type:numeric(12,2);not null"`
	DefaultMargin       *decimal.Decimal `gorm:"column:default_margin;type:numeric(5,2)"`
	IsNPPAControlled    bool             `gorm:"column:is_nppa_controlled;not null;default:false"`
	NPPAMarginLimit     *decimal.Decimal `gorm:"column:nppa_margin_limit;type:numeric(5,2)"`
	IsActive            bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

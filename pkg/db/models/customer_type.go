package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerType is a customer segment (hospital, retail pharmacy, ...) with a
// default margin applied when no pricing rule matches. Predefined rows are
// seeded at tenant provisioning and cannot be deleted.
type CustomerType struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID       uuid.UUID       `gorm:"column:owner_id;type:uuid;not null"`
	Name          string          `gorm:"column:name;not null"`
	DefaultMargin decimal.Decimal `gorm:"column:default_margin;type:numeric(5,2);not null;default:0"`
	Description   *string         `gorm:"column:description"`
	IsPredefined  bool            `gorm:"column:is_predefined;not null;default:false"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculateRequest is the input to price resolution. CustomerTypeID is
// optional; without one, rules and customer-type margins are skipped and
// the brand's own default margin governs.
type CalculateRequest struct {
	BrandID        uuid.UUID  `json:"brand_id" validate:"required"`
	CustomerTypeID *uuid.UUID `json:"customer_type_id"`
	Quantity       int        `json:"quantity" validate:"required,gt=0"`
}

// PriceResult reports the resolved unit price, how it was derived, and the
// realized economics at the requested quantity.
type PriceResult struct {
	BrandID        uuid.UUID       `json:"brand_id"`
	BrandName      string          `json:"brand_name"`
	CustomerTypeID *uuid.UUID      `json:"customer_type_id,omitempty"`
	Quantity       int             `json:"quantity"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	MRP            decimal.Decimal `json:"mrp"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	MarginPercent  decimal.Decimal `json:"margin_percent"`
	MarginPerUnit  decimal.Decimal `json:"margin_per_unit"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalMargin    decimal.Decimal `json:"total_margin"`
	VolumeDiscount decimal.Decimal `json:"volume_discount"`
	PriceSource    string          `json:"price_source"`
	CappedAtMRP    bool            `json:"capped_at_mrp"`
	NPPAControlled bool            `json:"nppa_controlled"`
	NPPACompliant  *bool           `json:"nppa_compliant,omitempty"`
	NPPAMessage    string          `json:"nppa_message,omitempty"`
}

// Price source labels, in resolution precedence order.
const (
	SourceRulePrice          = "rule_sell_price"
	SourceRuleMargin         = "rule_margin"
	SourceCustomerTypeMargin = "customer_type_margin"
	SourceBrandMargin        = "brand_margin"
	SourceCostPrice          = "cost_price"
)

// CheckComplianceRequest is the input to a standalone compliance check of a
// proposed unit price.
type CheckComplianceRequest struct {
	BrandID       uuid.UUID       `json:"brand_id" validate:"required"`
	ProposedPrice decimal.Decimal `json:"proposed_price" validate:"required"`
}

// ComplianceResult is the verdict for a proposed price against the brand's
// ceiling margin.
type ComplianceResult struct {
	BrandID        uuid.UUID        `json:"brand_id"`
	BrandName      string           `json:"brand_name"`
	ProposedPrice  decimal.Decimal  `json:"proposed_price"`
	CostPrice      decimal.Decimal  `json:"cost_price"`
	MarginPercent  decimal.Decimal  `json:"margin_percent"`
	NPPAControlled bool             `json:"nppa_controlled"`
	NPPALimit      *decimal.Decimal `json:"nppa_limit,omitempty"`
	IsCompliant    bool             `json:"is_compliant"`
	Message        string           `json:"message"`
}

// NPPAData is the reference record surfaced for a brand, when the national
// list carries a match by drug name.
type NPPAData struct {
	BrandID          uuid.UUID        `json:"brand_id"`
	BrandName        string           `json:"brand_name"`
	Listed           bool             `json:"listed"`
	DrugName         string           `json:"drug_name,omitempty"`
	SaltName         *string          `json:"salt_name,omitempty"`
	Strength         *string          `json:"strength,omitempty"`
	MaxAllowedMargin *decimal.Decimal `json:"max_allowed_margin,omitempty"`
	PriceCap         *decimal.Decimal `json:"price_cap,omitempty"`
}

// CreateRuleRequest creates a pricing rule. Exactly one of margin_percent or
// sell_price must be provided.
type CreateRuleRequest struct {
	BrandID            uuid.UUID        `json:"brand_id" validate:"required"`
	CustomerTypeID     *uuid.UUID       `json:"customer_type_id"`
	MarginPercent      *decimal.Decimal `json:"margin_percent"`
	SellPrice          *decimal.Decimal `json:"sell_price"`
	MinQuantity        int              `json:"min_quantity"`
	MaxQuantity        *int             `json:"max_quantity"`
	VolumeDiscount     *decimal.Decimal `json:"volume_discount"`
	SpecialPriceReason string           `json:"special_price_reason"`
	ValidFrom          *time.Time       `json:"valid_from"`
	ValidUntil         *time.Time       `json:"valid_until"`
}

// UpdateRuleRequest patches a pricing rule. Nil fields are untouched.
type UpdateRuleRequest struct {
	MarginPercent      *decimal.Decimal `json:"margin_percent"`
	SellPrice          *decimal.Decimal `json:"sell_price"`
	MinQuantity        *int             `json:"min_quantity"`
	MaxQuantity        *int             `json:"max_quantity"`
	VolumeDiscount     *decimal.Decimal `json:"volume_discount"`
	SpecialPriceReason *string          `json:"special_price_reason"`
	ValidFrom          *time.Time       `json:"valid_from"`
	ValidUntil         *time.Time       `json:"valid_until"`
	IsActive           *bool            `json:"is_active"`
}

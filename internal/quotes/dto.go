package quotes

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	"github.com/pharmaquote/pharmaquote-backend/pkg/enums"
	"github.com/pharmaquote/pharmaquote-backend/pkg/pagination"
)

// LineItemInput is one requested line on a new quote. An explicit UnitPrice
// wins over MarginPercent; with neither, the line defaults to the brand's
// MRP. DiscountPercent stacks on top of whatever price the line lands on.
type LineItemInput struct {
	BrandID         uuid.UUID        `json:"brand_id" validate:"required"`
	Quantity        int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	MarginPercent   *decimal.Decimal `json:"margin_percent"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

// CreateInput is the payload to create a quote with its line items.
type CreateInput struct {
	CustomerName   string          `json:"customer_name" validate:"required,min=2,max=200"`
	CustomerEmail  *string         `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone  *string         `json:"customer_phone"`
	CustomerTypeID *uuid.UUID      `json:"customer_type_id"`
	Notes          *string         `json:"notes"`
	ValidityDays   *int            `json:"validity_days"`
	LineItems      []LineItemInput `json:"line_items" validate:"required,min=1,dive"`
}

// ListFilter narrows and orders quote listings.
type ListFilter struct {
	Status       enums.QuoteStatus
	CustomerName string
	SortBy       string
	SortDesc     bool
	Page         pagination.Page
}

// ListResult is one page of quotes plus the total match count.
type ListResult struct {
	Quotes  []models.Quote `json:"quotes"`
	Total   int64          `json:"total"`
	HasMore bool           `json:"has_more"`
}

// UpdateStatusInput moves a quote through its lifecycle.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

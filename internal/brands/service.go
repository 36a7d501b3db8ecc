package brands

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
	"github.com/pharmaquote/pharmaquote-backend/pkg/pagination"
)

// CreateInput is the payload to add a brand to the catalog.
type CreateInput struct {
	Name                string           `json:"name" validate:"required,min=2,max=200"`
	Manufacturer        *string          `json:"manufacturer"`
	TherapeuticCategory *string          `json:"therapeutic_category"`
	SaltName            *string          `json:"salt_name"`
	Strength            *string          `json:"strength"`
	Packing             *string          `json:"packing"`
	GTINCode            *string          `json:"gtin_code"`
	CostPrice           decimal.Decimal  `json:"cost_price" validate:"required"`
	MRP                 decimal.Decimal  `json:"mrp" validate:"required"`
	DefaultMargin       *decimal.Decimal `json:"default_margin"`
	IsNPPAControlled    bool             `json:"is_nppa_controlled"`
	NPPAMarginLimit     *decimal.Decimal `json:"nppa_margin_limit"`
}

// UpdateInput patches a brand. Nil fields are untouched.
type UpdateInput struct {
	Name                *string          `json:"name"`
	Manufacturer        *string          `json:"manufacturer"`
	TherapeuticCategory *string          `json:"therapeutic_category"`
	SaltName            *string          `json:"salt_name"`
	Strength            *string          `json:"strength"`
	Packing             *string          `json:"packing"`
	GTINCode            *string          `json:"gtin_code"`
	CostPrice           *decimal.Decimal `json:"cost_price"`
	MRP                 *decimal.Decimal `json:"mrp"`
	DefaultMargin       *decimal.Decimal `json:"default_margin"`
	IsNPPAControlled    *bool            `json:"is_nppa_controlled"`
	NPPAMarginLimit     *decimal.Decimal `json:"nppa_margin_limit"`
	IsActive            *bool            `json:"is_active"`
}

// ListResult is one page of brands plus the total match count.
type ListResult struct {
	Brands  []models.Brand `json:"brands"`
	Total   int64          `json:"total"`
	HasMore bool           `json:"has_more"`
}

// Service manages the brand catalog.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Brand, error)
	Get(ctx context.Context, ownerID, brandID uuid.UUID) (*models.Brand, error)
	List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, ownerID, brandID uuid.UUID, input UpdateInput) (*models.Brand, error)
	Delete(ctx context.Context, ownerID, brandID uuid.UUID) error
	Import(ctx context.Context, ownerID uuid.UUID, input ImportInput) (*ImportResult, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func validatePrices(cost, mrp decimal.Decimal) error {
	if !cost.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost_price must be positive")
	}
	if !mrp.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "mrp must be positive")
	}
	if mrp.LessThan(cost) {
		return pkgerrors.New(pkgerrors.CodeValidation, "mrp cannot be below cost_price")
	}
	return nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Brand, error) {
	if err := validatePrices(input.CostPrice, input.MRP); err != nil {
		return nil, err
	}
	if input.DefaultMargin != nil && input.DefaultMargin.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_margin cannot be negative")
	}
	if _, err := s.repo.FindByName(ctx, ownerID, input.Name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "brand name already in catalog")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check brand name")
	}

	brand := &models.Brand{
		OwnerID:             ownerID,
		Name:                input.Name,
		Manufacturer:        input.Manufacturer,
		TherapeuticCategory: input.TherapeuticCategory,
		SaltName:            input.SaltName,
		Strength:            input.Strength,
		Packing:             input.Packing,
		GTINCode:            input.GTINCode,
		CostPrice:           input.CostPrice,
		MRP:                 input.MRP,
		DefaultMargin:       input.DefaultMargin,
		IsNPPAControlled:    input.IsNPPAControlled,
		NPPAMarginLimit:     input.NPPAMarginLimit,
		IsActive:            true,
	}
	created, err := s.repo.Create(ctx, brand)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create brand")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, ownerID, brandID uuid.UUID) (*models.Brand, error) {
	brand, err := s.repo.Find(ctx, ownerID, brandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load brand")
	}
	return brand, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) (*ListResult, error) {
	list, total, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list brands")
	}
	return &ListResult{
		Brands:  list,
		Total:   total,
		HasMore: pagination.HasMore(total, filter.Page.Normalize()),
	}, nil
}

func (s *service) Update(ctx context.Context, ownerID, brandID uuid.UUID, input UpdateInput) (*models.Brand, error) {
	brand, err := s.Get(ctx, ownerID, brandID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != brand.Name {
		if _, err := s.repo.FindByName(ctx, ownerID, *input.Name); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "brand name already in catalog")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check brand name")
		}
		brand.Name = *input.Name
	}
	if input.Manufacturer != nil {
		brand.Manufacturer = input.Manufacturer
	}
	if input.TherapeuticCategory != nil {
		brand.TherapeuticCategory = input.TherapeuticCategory
	}
	if input.SaltName != nil {
		brand.SaltName = input.SaltName
	}
	if input.Strength != nil {
		brand.Strength = input.Strength
	}
	if input.Packing != nil {
		brand.Packing = input.Packing
	}
	if input.GTINCode != nil {
		brand.GTINCode = input.GTINCode
	}
	if input.CostPrice != nil {
		brand.CostPrice = *input.CostPrice
	}
	if input.MRP != nil {
		brand.MRP = *input.MRP
	}
	if err := validatePrices(brand.CostPrice, brand.MRP); err != nil {
		return nil, err
	}
	if input.DefaultMargin != nil {
		if input.DefaultMargin.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_margin cannot be negative")
		}
		brand.DefaultMargin = input.DefaultMargin
	}
	if input.IsNPPAControlled != nil {
		brand.IsNPPAControlled = *input.IsNPPAControlled
	}
	if input.NPPAMarginLimit != nil {
		brand.NPPAMarginLimit = input.NPPAMarginLimit
	}
	if input.IsActive != nil {
		brand.IsActive = *input.IsActive
	}

	saved, err := s.repo.Save(ctx, brand)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save brand")
	}
	return saved, nil
}

// Delete deactivates a brand. Rows are kept so existing quote line items
// still resolve.
func (s *service) Delete(ctx context.Context, ownerID, brandID uuid.UUID) error {
	affected, err := s.repo.Deactivate(ctx, ownerID, brandID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate brand")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
	}
	return nil
}

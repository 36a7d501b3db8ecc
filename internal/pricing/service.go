package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
	"github.com/pharmaquote/pharmaquote-backend/pkg/money"
)

// Service exposes price resolution and compliance checks.
type Service interface {
	ResolvePrice(ctx context.Context, ownerID uuid.UUID, input CalculateRequest) (*PriceResult, error)
	CheckCompliance(ctx context.Context, ownerID uuid.UUID, input CheckComplianceRequest) (*ComplianceResult, error)
	NPPADataForBrand(ctx context.Context, ownerID, brandID uuid.UUID) (*NPPAData, error)

	CreateRule(ctx context.Context, ownerID uuid.UUID, input CreateRuleRequest) (*models.PricingRule, error)
	UpdateRule(ctx context.Context, ownerID, ruleID uuid.UUID, input UpdateRuleRequest) (*models.PricingRule, error)
	DeleteRule(ctx context.Context, ownerID, ruleID uuid.UUID) error
	ListRulesForBrand(ctx context.Context, ownerID, brandID uuid.UUID) ([]models.PricingRule, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs the pricing service.
func NewService(repo *Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// ResolvePrice computes the unit price for (brand, customer type, quantity).
//
// Resolution order: an applicable rule's explicit sell price, then the rule's
// margin, then the customer type's default margin, then the brand's default
// margin, then cost price as-is. Without a customer type the rule and
// customer-type steps are skipped entirely. Volume discounts apply only when
// the rule's quantity band matches. The result never exceeds the brand's MRP.
func (s *service) ResolvePrice(ctx context.Context, ownerID uuid.UUID, input CalculateRequest) (*PriceResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	brand, err := s.repo.FindActiveBrand(ctx, ownerID, input.BrandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load brand")
	}

	var ct *models.CustomerType
	var rule *models.PricingRule
	if input.CustomerTypeID != nil {
		ct, err = s.repo.FindCustomerType(ctx, ownerID, *input.CustomerTypeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer type not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer type")
		}

		rule, err = s.repo.FindApplicableRule(ctx, ownerID, brand.ID, ct.ID, s.now())
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pricing rule")
		}
	}

	result := &PriceResult{
		BrandID:        brand.ID,
		BrandName:      brand.Name,
		CustomerTypeID: input.CustomerTypeID,
		Quantity:       input.Quantity,
		CostPrice:      brand.CostPrice,
		MRP:            brand.MRP,
		VolumeDiscount: decimal.Zero,
	}

	var unitPrice decimal.Decimal
	switch {
	case rule != nil && rule.SellPrice != nil:
		unitPrice = *rule.SellPrice
		result.PriceSource = SourceRulePrice
	case rule != nil && rule.MarginPercent != nil:
		unitPrice = money.ApplyMargin(brand.CostPrice, *rule.MarginPercent)
		result.PriceSource = SourceRuleMargin
	case ct != nil && ct.DefaultMargin.IsPositive():
		unitPrice = money.ApplyMargin(brand.CostPrice, ct.DefaultMargin)
		result.PriceSource = SourceCustomerTypeMargin
	case brand.DefaultMargin != nil && brand.DefaultMargin.IsPositive():
		unitPrice = money.ApplyMargin(brand.CostPrice, *brand.DefaultMargin)
		result.PriceSource = SourceBrandMargin
	default:
		unitPrice = brand.CostPrice
		result.PriceSource = SourceCostPrice
	}

	if rule != nil && ruleQuantityMatches(rule, input.Quantity) && rule.VolumeDiscount.IsPositive() {
		unitPrice = money.ApplyDiscount(unitPrice, rule.VolumeDiscount)
		result.VolumeDiscount = rule.VolumeDiscount
	}

	if unitPrice.GreaterThan(brand.MRP) {
		unitPrice = brand.MRP
		result.CappedAtMRP = true
	}
	unitPrice = money.Round2(unitPrice)

	qty := decimal.NewFromInt(int64(input.Quantity))
	result.UnitPrice = unitPrice
	result.MarginPercent = money.Round2(money.MarginPercent(unitPrice, brand.CostPrice))
	result.MarginPerUnit = money.Round2(unitPrice.Sub(brand.CostPrice))
	result.TotalAmount = money.Round2(unitPrice.Mul(qty))
	result.TotalMargin = money.Round2(result.MarginPerUnit.Mul(qty))

	s.annotateNPPA(ctx, brand, result)

	return result, nil
}

// annotateNPPA attaches an advisory compliance note for controlled brands.
// The annotation never blocks the price result.
func (s *service) annotateNPPA(ctx context.Context, brand *models.Brand, result *PriceResult) {
	controlled, limit := s.nppaLimit(ctx, brand)
	if !controlled {
		return
	}
	result.NPPAControlled = true
	if limit == nil {
		return
	}
	compliant := result.MarginPercent.LessThanOrEqual(*limit)
	result.NPPACompliant = &compliant
	if !compliant {
		delta := result.MarginPercent.Sub(*limit)
		result.NPPAMessage = fmt.Sprintf(
			"margin %s%% exceeds NPPA limit of %s%% by %s%%",
			result.MarginPercent.StringFixed(2), limit.StringFixed(2), delta.StringFixed(2))
	}
}

// nppaLimit reports whether the brand is price controlled and, if so, the
// governing margin ceiling. The brand's own limit wins over the national
// reference list.
func (s *service) nppaLimit(ctx context.Context, brand *models.Brand) (bool, *decimal.Decimal) {
	if brand.IsNPPAControlled && brand.NPPAMarginLimit != nil {
		return true, brand.NPPAMarginLimit
	}
	if drug, err := s.repo.FindNPPAByDrugName(ctx, brand.Name); err == nil {
		return true, drug.MaxAllowedMargin
	}
	return brand.IsNPPAControlled, nil
}

func ruleQuantityMatches(rule *models.PricingRule, qty int) bool {
	if qty < rule.MinQuantity {
		return false
	}
	if rule.MaxQuantity != nil && qty > *rule.MaxQuantity {
		return false
	}
	return true
}

package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// CreateRule validates and persists a pricing rule. The rule must carry
// exactly one of margin_percent or sell_price.
func (s *service) CreateRule(ctx context.Context, ownerID uuid.UUID, input CreateRuleRequest) (*models.PricingRule, error) {
	if (input.MarginPercent == nil) == (input.SellPrice == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of margin_percent or sell_price is required")
	}
	if input.MarginPercent != nil && input.MarginPercent.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "margin_percent cannot be negative")
	}
	if input.SellPrice != nil && !input.SellPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sell_price must be positive")
	}
	if input.VolumeDiscount != nil && (input.VolumeDiscount.IsNegative() || input.VolumeDiscount.GreaterThan(hundred)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "volume_discount must be between 0 and 100")
	}

	minQty := input.MinQuantity
	if minQty < 1 {
		minQty = 1
	}
	if input.MaxQuantity != nil && *input.MaxQuantity < minQty {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_quantity cannot be below min_quantity")
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_until cannot precede valid_from")
	}

	if _, err := s.repo.FindActiveBrand(ctx, ownerID, input.BrandID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load brand")
	}
	if input.CustomerTypeID != nil {
		if _, err := s.repo.FindCustomerType(ctx, ownerID, *input.CustomerTypeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer type not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer type")
		}
	}

	rule := &models.PricingRule{
		OwnerID:        ownerID,
		BrandID:        input.BrandID,
		CustomerTypeID: input.CustomerTypeID,
		MarginPercent:  input.MarginPercent,
		SellPrice:      input.SellPrice,
		MinQuantity:    minQty,
		MaxQuantity:    input.MaxQuantity,
		ValidFrom:      input.ValidFrom,
		ValidUntil:     input.ValidUntil,
		IsActive:       true,
	}
	if input.VolumeDiscount != nil {
		rule.VolumeDiscount = *input.VolumeDiscount
	}
	if input.SpecialPriceReason != "" {
		reason := input.SpecialPriceReason
		rule.SpecialPriceReason = &reason
	}

	created, err := s.repo.CreateRule(ctx, rule)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pricing rule")
	}
	return created, nil
}

// UpdateRule applies a partial update to a rule.
func (s *service) UpdateRule(ctx context.Context, ownerID, ruleID uuid.UUID, input UpdateRuleRequest) (*models.PricingRule, error) {
	rule, err := s.repo.FindRule(ctx, ownerID, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricing rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pricing rule")
	}

	if input.MarginPercent != nil {
		if input.MarginPercent.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "margin_percent cannot be negative")
		}
		rule.MarginPercent = input.MarginPercent
		rule.SellPrice = nil
	}
	if input.SellPrice != nil {
		if !input.SellPrice.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sell_price must be positive")
		}
		rule.SellPrice = input.SellPrice
		rule.MarginPercent = nil
	}
	if rule.MarginPercent == nil && rule.SellPrice == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule must keep one of margin_percent or sell_price")
	}
	if input.MinQuantity != nil {
		if *input.MinQuantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_quantity must be at least 1")
		}
		rule.MinQuantity = *input.MinQuantity
	}
	if input.MaxQuantity != nil {
		rule.MaxQuantity = input.MaxQuantity
	}
	if rule.MaxQuantity != nil && *rule.MaxQuantity < rule.MinQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_quantity cannot be below min_quantity")
	}
	if input.VolumeDiscount != nil {
		if input.VolumeDiscount.IsNegative() || input.VolumeDiscount.GreaterThan(hundred) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "volume_discount must be between 0 and 100")
		}
		rule.VolumeDiscount = *input.VolumeDiscount
	}
	if input.SpecialPriceReason != nil {
		rule.SpecialPriceReason = input.SpecialPriceReason
	}
	if input.ValidFrom != nil {
		rule.ValidFrom = input.ValidFrom
	}
	if input.ValidUntil != nil {
		rule.ValidUntil = input.ValidUntil
	}
	if rule.ValidFrom != nil && rule.ValidUntil != nil && rule.ValidUntil.Before(*rule.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_until cannot precede valid_from")
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}

	saved, err := s.repo.SaveRule(ctx, rule)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save pricing rule")
	}
	return saved, nil
}

// DeleteRule removes a rule permanently.
func (s *service) DeleteRule(ctx context.Context, ownerID, ruleID uuid.UUID) error {
	affected, err := s.repo.DeleteRule(ctx, ownerID, ruleID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete pricing rule")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pricing rule not found")
	}
	return nil
}

// ListRulesForBrand returns all rules configured for a brand.
func (s *service) ListRulesForBrand(ctx context.Context, ownerID, brandID uuid.UUID) ([]models.PricingRule, error) {
	rules, err := s.repo.ListRulesByBrand(ctx, ownerID, brandID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pricing rules")
	}
	return rules, nil
}

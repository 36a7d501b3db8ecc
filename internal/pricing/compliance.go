package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
	"github.com/pharmaquote/pharmaquote-backend/pkg/money"
)

// CheckCompliance evaluates a proposed unit price against the brand's margin
// ceiling. Uses the same margin arithmetic as price resolution, so a price
// the resolver produced always checks out compliant here.
func (s *service) CheckCompliance(ctx context.Context, ownerID uuid.UUID, input CheckComplianceRequest) (*ComplianceResult, error) {
	if !input.ProposedPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proposed_price must be positive")
	}

	brand, err := s.repo.FindActiveBrand(ctx, ownerID, input.BrandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load brand")
	}

	margin := money.Round2(money.MarginPercent(input.ProposedPrice, brand.CostPrice))
	result := &ComplianceResult{
		BrandID:       brand.ID,
		BrandName:     brand.Name,
		ProposedPrice: money.Round2(input.ProposedPrice),
		CostPrice:     brand.CostPrice,
		MarginPercent: margin,
		IsCompliant:   true,
		Message:       "price is compliant",
	}

	controlled, limit := s.nppaLimit(ctx, brand)
	result.NPPAControlled = controlled
	if !controlled {
		result.Message = "brand is not NPPA controlled"
		return result, nil
	}
	if limit == nil {
		result.Message = "brand is NPPA controlled but no margin limit is on record"
		return result, nil
	}

	result.NPPALimit = limit
	if margin.GreaterThan(*limit) {
		delta := margin.Sub(*limit)
		result.IsCompliant = false
		result.Message = fmt.Sprintf(
			"margin %s%% exceeds NPPA limit of %s%% by %s%%",
			margin.StringFixed(2), limit.StringFixed(2), delta.StringFixed(2))
	} else {
		result.Message = fmt.Sprintf(
			"margin %s%% is within NPPA limit of %s%%",
			margin.StringFixed(2), limit.StringFixed(2))
	}
	return result, nil
}

// NPPADataForBrand surfaces the national reference record matching a brand
// by drug name, when one exists.
func (s *service) NPPADataForBrand(ctx context.Context, ownerID, brandID uuid.UUID) (*NPPAData, error) {
	brand, err := s.repo.FindActiveBrand(ctx, ownerID, brandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load brand")
	}

	data := &NPPAData{BrandID: brand.ID, BrandName: brand.Name}
	drug, err := s.repo.FindNPPAByDrugName(ctx, brand.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return data, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load nppa record")
	}

	data.Listed = true
	data.DrugName = drug.DrugName
	data.SaltName = drug.SaltName
	data.Strength = drug.Strength
	data.MaxAllowedMargin = drug.MaxAllowedMargin
	data.PriceCap = drug.PriceCap
	return data, nil
}

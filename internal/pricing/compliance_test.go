package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
)

func TestCheckComplianceWithinLimit(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Capped Drug", "100", "200", func(b *models.Brand) {
		limit := dec("20")
		b.IsNPPAControlled = true
		b.NPPAMarginLimit = &limit
	})
	svc := NewService(NewRepository(db))

	res, err := svc.CheckCompliance(context.Background(), ownerID, CheckComplianceRequest{
		BrandID:       brand.ID,
		ProposedPrice: dec("115"),
	})
	require.NoError(t, err)

	assert.True(t, res.IsCompliant)
	assert.True(t, res.NPPAControlled)
	assert.True(t, res.MarginPercent.Equal(dec("15")), "margin %s", res.MarginPercent)
	assert.Contains(t, res.Message, "within NPPA limit")
}

func TestCheckComplianceOverLimitReportsDelta(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Capped Drug", "100", "300", func(b *models.Brand) {
		limit := dec("10")
		b.IsNPPAControlled = true
		b.NPPAMarginLimit = &limit
	})
	svc := NewService(NewRepository(db))

	res, err := svc.CheckCompliance(context.Background(), ownerID, CheckComplianceRequest{
		BrandID:       brand.ID,
		ProposedPrice: dec("125"),
	})
	require.NoError(t, err)

	assert.False(t, res.IsCompliant)
	assert.Equal(t, "margin 25.00% exceeds NPPA limit of 10.00% by 15.00%", res.Message)
}

func TestCheckComplianceUncontrolledBrand(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Free Drug", "50", "200")
	svc := NewService(NewRepository(db))

	res, err := svc.CheckCompliance(context.Background(), ownerID, CheckComplianceRequest{
		BrandID:       brand.ID,
		ProposedPrice: dec("180"),
	})
	require.NoError(t, err)

	assert.True(t, res.IsCompliant)
	assert.False(t, res.NPPAControlled)
	assert.Nil(t, res.NPPALimit)
}

func TestCheckComplianceNationalListFallback(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Paracetamol 500", "10", "40")
	limit := dec("12")
	require.NoError(t, db.Create(&models.NPPAControlledDrug{
		ID:               uuid.New(),
		DrugName:         "PARACETAMOL 500",
		MaxAllowedMargin: &limit,
	}).Error)
	svc := NewService(NewRepository(db))

	// The brand row carries no limit of its own; the national list matches
	// case-insensitively and supplies the ceiling.
	res, err := svc.CheckCompliance(context.Background(), ownerID, CheckComplianceRequest{
		BrandID:       brand.ID,
		ProposedPrice: dec("11.50"),
	})
	require.NoError(t, err)

	assert.True(t, res.NPPAControlled)
	require.NotNil(t, res.NPPALimit)
	assert.True(t, res.NPPALimit.Equal(dec("12")))
	assert.False(t, res.IsCompliant)
}

func TestCheckComplianceValidatesPrice(t *testing.T) {
	db := setupPricingTestDB(t)
	svc := NewService(NewRepository(db))

	_, err := svc.CheckCompliance(context.Background(), uuid.New(), CheckComplianceRequest{
		BrandID:       uuid.New(),
		ProposedPrice: decimal.Zero,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestNPPADataForBrand(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	cap := dec("13.50")
	require.NoError(t, db.Create(&models.NPPAControlledDrug{
		ID:       uuid.New(),
		DrugName: "Amoxicillin 250",
		PriceCap: &cap,
	}).Error)
	listed := seedBrand(t, db, ownerID, "amoxicillin 250", "5", "15")
	unlisted := seedBrand(t, db, ownerID, "Obscurin", "5", "15")
	svc := NewService(NewRepository(db))

	data, err := svc.NPPADataForBrand(context.Background(), ownerID, listed.ID)
	require.NoError(t, err)
	assert.True(t, data.Listed)
	assert.Equal(t, "Amoxicillin 250", data.DrugName)
	require.NotNil(t, data.PriceCap)
	assert.True(t, data.PriceCap.Equal(cap))

	data, err = svc.NPPADataForBrand(context.Background(), ownerID, unlisted.ID)
	require.NoError(t, err)
	assert.False(t, data.Listed)
}

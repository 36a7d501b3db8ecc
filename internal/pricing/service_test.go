package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
)

func setupPricingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
CREATE TABLE IF NOT EXISTS brands (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  name TEXT NOT NULL,
  manufacturer TEXT,
  therapeutic_category TEXT,
  salt_name TEXT,
  strength TEXT,
  packing TEXT,
  gtin_code TEXT,
  cost_price NUMERIC NOT NULL,
  mrp NUMERIC NOT NULL,
  default_margin NUMERIC,
  is_nppa_controlled INTEGER NOT NULL DEFAULT 0,
  nppa_margin_limit NUMERIC,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS customer_types (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  name TEXT NOT NULL,
  default_margin NUMERIC NOT NULL DEFAULT 0,
  description TEXT,
  is_predefined INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS pricing_rules (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  brand_id TEXT NOT NULL,
  customer_type_id TEXT,
  margin_percent NUMERIC,
  sell_price NUMERIC,
  min_quantity INTEGER NOT NULL DEFAULT 1,
  max_quantity INTEGER,
  volume_discount NUMERIC NOT NULL DEFAULT 0,
  special_price_reason TEXT,
  valid_from DATE,
  valid_until DATE,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS nppa_controlled_drugs (
  id TEXT PRIMARY KEY,
  drug_name TEXT NOT NULL UNIQUE,
  salt_name TEXT,
  strength TEXT,
  max_allowed_margin NUMERIC,
  price_cap NUMERIC,
  created_at DATETIME
);`}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedBrand(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name, cost, mrp string, fns ...func(*models.Brand)) *models.Brand {
	t.Helper()
	brand := &models.Brand{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CostPrice: dec(cost),
		MRP:       dec(mrp),
		IsActive:  true,
	}
	for _, fn := range fns {
		fn(brand)
	}
	require.NoError(t, db.Create(brand).Error)
	return brand
}

func seedCustomerType(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name, margin string) *models.CustomerType {
	t.Helper()
	ct := &models.CustomerType{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Name:          name,
		DefaultMargin: dec(margin),
	}
	require.NoError(t, db.Create(ct).Error)
	return ct
}

func seedRule(t *testing.T, db *gorm.DB, ownerID uuid.UUID, brandID uuid.UUID, fns ...func(*models.PricingRule)) *models.PricingRule {
	t.Helper()
	rule := &models.PricingRule{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		BrandID:     brandID,
		MinQuantity: 1,
		IsActive:    true,
	}
	for _, fn := range fns {
		fn(rule)
	}
	require.NoError(t, db.Create(rule).Error)
	return rule
}

func TestResolvePriceCustomerTypeMargin(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Azithral 500", "30", "35")
	ct := seedCustomerType(t, db, ownerID, "Hospital", "15")
	svc := NewService(NewRepository(db))

	res, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID:        brand.ID,
		CustomerTypeID: &ct.ID,
		Quantity:       10,
	})
	require.NoError(t, err)

	assert.Equal(t, SourceCustomerTypeMargin, res.PriceSource)
	assert.True(t, res.UnitPrice.Equal(dec("34.50")), "unit price %s", res.UnitPrice)
	assert.True(t, res.MarginPercent.Equal(dec("15")), "margin %s", res.MarginPercent)
	assert.True(t, res.TotalAmount.Equal(dec("345.00")), "total %s", res.TotalAmount)
	assert.True(t, res.TotalMargin.Equal(dec("45.00")), "total margin %s", res.TotalMargin)
	assert.False(t, res.CappedAtMRP)
	assert.False(t, res.NPPAControlled)
}

func TestResolvePriceCappedAtMRP(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Costmax", "30", "35")
	ct := seedCustomerType(t, db, ownerID, "Retail Pharmacy", "12")
	seedRule(t, db, ownerID, brand.ID, func(r *models.PricingRule) {
		m := dec("20")
		r.CustomerTypeID = &ct.ID
		r.MarginPercent = &m
	})
	svc := NewService(NewRepository(db))

	res, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID:        brand.ID,
		CustomerTypeID: &ct.ID,
		Quantity:       1,
	})
	require.NoError(t, err)

	// 30 * 1.20 = 36 exceeds the MRP of 35, so the price is clamped and the
	// realized margin recomputed from the clamped price.
	assert.Equal(t, SourceRuleMargin, res.PriceSource)
	assert.True(t, res.CappedAtMRP)
	assert.True(t, res.UnitPrice.Equal(dec("35.00")), "unit price %s", res.UnitPrice)
	assert.True(t, res.MarginPercent.Equal(dec("16.67")), "margin %s", res.MarginPercent)
}

func TestResolvePriceRuleSellPriceWinsOverMargin(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Dolo 650", "10", "30")
	ct := seedCustomerType(t, db, ownerID, "Modern Trade", "8")
	seedRule(t, db, ownerID, brand.ID, func(r *models.PricingRule) {
		sp := dec("22.50")
		m := dec("50")
		r.CustomerTypeID = &ct.ID
		r.SellPrice = &sp
		r.MarginPercent = &m
	})
	svc := NewService(NewRepository(db))

	res, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID:        brand.ID,
		CustomerTypeID: &ct.ID,
		Quantity:       3,
	})
	require.NoError(t, err)

	assert.Equal(t, SourceRulePrice, res.PriceSource)
	assert.True(t, res.UnitPrice.Equal(dec("22.50")))
	assert.True(t, res.MarginPercent.Equal(dec("125")), "margin %s", res.MarginPercent)
}

func TestResolvePriceVolumeDiscountBoundaries(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Volumax", "100", "200")
	ct := seedCustomerType(t, db, ownerID, "Chemist Association", "10")
	maxQty := 500
	seedRule(t, db, ownerID, brand.ID, func(r *models.PricingRule) {
		m := dec("20")
		r.CustomerTypeID = &ct.ID
		r.MarginPercent = &m
		r.MinQuantity = 100
		r.MaxQuantity = &maxQty
		r.VolumeDiscount = dec("5")
	})
	svc := NewService(NewRepository(db))

	below, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: brand.ID, CustomerTypeID: &ct.ID, Quantity: 99,
	})
	require.NoError(t, err)
	assert.True(t, below.VolumeDiscount.IsZero())
	assert.True(t, below.UnitPrice.Equal(dec("120.00")), "unit price %s", below.UnitPrice)

	at, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: brand.ID, CustomerTypeID: &ct.ID, Quantity: 100,
	})
	require.NoError(t, err)
	assert.True(t, at.VolumeDiscount.Equal(dec("5")))
	// 100 * 1.20 * 0.95 = 114
	assert.True(t, at.UnitPrice.Equal(dec("114.00")), "unit price %s", at.UnitPrice)

	above, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: brand.ID, CustomerTypeID: &ct.ID, Quantity: 501,
	})
	require.NoError(t, err)
	assert.True(t, above.VolumeDiscount.IsZero())
}

func TestResolvePriceFallbackChain(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	ct := seedCustomerType(t, db, ownerID, "Institution", "0")
	svc := NewService(NewRepository(db))

	withBrandMargin := seedBrand(t, db, ownerID, "BrandDefault", "50", "100", func(b *models.Brand) {
		m := dec("25")
		b.DefaultMargin = &m
	})
	res, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: withBrandMargin.ID, CustomerTypeID: &ct.ID, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, SourceBrandMargin, res.PriceSource)
	assert.True(t, res.UnitPrice.Equal(dec("62.50")))

	bare := seedBrand(t, db, ownerID, "NoMargins", "50", "100")
	res, err = svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: bare.ID, CustomerTypeID: &ct.ID, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, SourceCostPrice, res.PriceSource)
	assert.True(t, res.UnitPrice.Equal(dec("50")))
	assert.True(t, res.MarginPercent.IsZero())
}

func TestResolvePriceWithoutCustomerType(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Unattached", "50", "100", func(b *models.Brand) {
		m := dec("25")
		b.DefaultMargin = &m
	})
	// An active rule must not fire when no customer type is given.
	seedRule(t, db, ownerID, brand.ID, func(r *models.PricingRule) {
		sp := dec("90")
		r.SellPrice = &sp
	})
	svc := NewService(NewRepository(db))

	res, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: brand.ID, Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, SourceBrandMargin, res.PriceSource)
	assert.True(t, res.UnitPrice.Equal(dec("62.50")), "unit price %s", res.UnitPrice)
	assert.Nil(t, res.CustomerTypeID)

	bare := seedBrand(t, db, ownerID, "UnattachedBare", "50", "100")
	res, err = svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: bare.ID, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, SourceCostPrice, res.PriceSource)
	assert.True(t, res.UnitPrice.Equal(dec("50")))
}

func TestResolvePriceRuleValidityWindowAndTieBreak(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Windowed", "10", "100")
	ct := seedCustomerType(t, db, ownerID, "Hospital", "15")

	past := time.Now().AddDate(0, 0, -30)
	lapsed := time.Now().AddDate(0, 0, -1)
	seedRule(t, db, ownerID, brand.ID, func(r *models.PricingRule) {
		m := dec("99")
		r.CustomerTypeID = &ct.ID
		r.MarginPercent = &m
		r.ValidFrom = &past
		r.ValidUntil = &lapsed
		r.CreatedAt = time.Now().Add(-48 * time.Hour)
	})
	seedRule(t, db, ownerID, brand.ID, func(r *models.PricingRule) {
		m := dec("30")
		r.CustomerTypeID = &ct.ID
		r.MarginPercent = &m
		r.CreatedAt = time.Now().Add(-24 * time.Hour)
	})
	seedRule(t, db, ownerID, brand.ID, func(r *models.PricingRule) {
		m := dec("40")
		r.CustomerTypeID = &ct.ID
		r.MarginPercent = &m
		r.CreatedAt = time.Now().Add(-1 * time.Hour)
	})

	svc := NewService(NewRepository(db))
	res, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: brand.ID, CustomerTypeID: &ct.ID, Quantity: 1,
	})
	require.NoError(t, err)

	// The lapsed rule is skipped; between the two live rules the most
	// recently created one wins.
	assert.True(t, res.UnitPrice.Equal(dec("14.00")), "unit price %s", res.UnitPrice)
}

func TestResolvePriceGeneralRuleLosesToTypeSpecific(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Mixed", "10", "100")
	ct := seedCustomerType(t, db, ownerID, "Hospital", "15")

	seedRule(t, db, ownerID, brand.ID, func(r *models.PricingRule) {
		m := dec("50")
		r.MarginPercent = &m // no customer type: applies to everyone
		r.CreatedAt = time.Now()
	})
	seedRule(t, db, ownerID, brand.ID, func(r *models.PricingRule) {
		m := dec("20")
		r.CustomerTypeID = &ct.ID
		r.MarginPercent = &m
		r.CreatedAt = time.Now().Add(-24 * time.Hour)
	})

	svc := NewService(NewRepository(db))
	res, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: brand.ID, CustomerTypeID: &ct.ID, Quantity: 1,
	})
	require.NoError(t, err)
	assert.True(t, res.UnitPrice.Equal(dec("12.00")), "unit price %s", res.UnitPrice)
}

func TestResolvePriceNPPAAnnotationAdvisory(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Controlled", "100", "200", func(b *models.Brand) {
		limit := dec("10")
		b.IsNPPAControlled = true
		b.NPPAMarginLimit = &limit
	})
	ct := seedCustomerType(t, db, ownerID, "Retail Pharmacy", "25")
	svc := NewService(NewRepository(db))

	res, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: brand.ID, CustomerTypeID: &ct.ID, Quantity: 1,
	})
	require.NoError(t, err)

	// Overage is annotated, never blocked.
	assert.True(t, res.UnitPrice.Equal(dec("125.00")))
	assert.True(t, res.NPPAControlled)
	require.NotNil(t, res.NPPACompliant)
	assert.False(t, *res.NPPACompliant)
	assert.Contains(t, res.NPPAMessage, "exceeds NPPA limit of 10.00%")
	assert.Contains(t, res.NPPAMessage, "by 15.00%")
}

func TestResolvePriceUnknownBrand(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	ct := seedCustomerType(t, db, ownerID, "Hospital", "15")
	svc := NewService(NewRepository(db))

	_, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: uuid.New(), CustomerTypeID: &ct.ID, Quantity: 1,
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestResolvePriceInactiveBrandHidden(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerID := uuid.New()
	brand := seedBrand(t, db, ownerID, "Retired", "10", "20", func(b *models.Brand) {
		b.IsActive = false
	})
	ct := seedCustomerType(t, db, ownerID, "Hospital", "15")
	svc := NewService(NewRepository(db))

	_, err := svc.ResolvePrice(context.Background(), ownerID, CalculateRequest{
		BrandID: brand.ID, CustomerTypeID: &ct.ID, Quantity: 1,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestResolvePriceCrossTenantIsolation(t *testing.T) {
	db := setupPricingTestDB(t)
	ownerA := uuid.New()
	ownerB := uuid.New()
	brand := seedBrand(t, db, ownerA, "Private", "10", "20")
	ct := seedCustomerType(t, db, ownerB, "Hospital", "15")
	svc := NewService(NewRepository(db))

	_, err := svc.ResolvePrice(context.Background(), ownerB, CalculateRequest{
		BrandID: brand.ID, CustomerTypeID: &ct.ID, Quantity: 1,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

package analytics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	"github.com/pharmaquote/pharmaquote-backend/pkg/enums"
	"github.com/pharmaquote/pharmaquote-backend/pkg/redis"
)

type fakeCache struct {
	store map[string]string
	gets  int
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.gets++
	if v, ok := c.store[key]; ok {
		return v, nil
	}
	return "", redis.ErrCacheMiss
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.sets++
	c.store[key] = value.(string)
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.store, key)
	}
	return nil
}

func (c *fakeCache) CacheKey(scope, id string) string {
	return strings.Join([]string{"test", scope, id}, ":")
}

func setupAnalyticsTestDB(t *testing.T) *gorm.DB {
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
CREATE TABLE IF NOT EXISTS quotes (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  quote_number TEXT NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  customer_email TEXT,
  customer_phone TEXT,
  customer_type_id TEXT,
  status TEXT NOT NULL DEFAULT 'draft',
  notes TEXT,
  quote_date DATETIME NOT NULL,
  valid_until DATETIME NOT NULL,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  total_margin NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS quote_line_items (
  id TEXT PRIMARY KEY,
  quote_id TEXT NOT NULL,
  brand_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  margin_percent NUMERIC NOT NULL,
  discount_percent NUMERIC NOT NULL DEFAULT 0,
  line_total NUMERIC NOT NULL,
  margin_earned NUMERIC NOT NULL,
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

func seedQuote(t *testing.T, db *gorm.DB, ownerID uuid.UUID, status enums.QuoteStatus, amount, margin string) *models.Quote {
	t.Helper()
	quote := &models.Quote{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		QuoteNumber:  "QT-TEST-" + uuid.NewString()[:8],
		CustomerName: "Customer",
		Status:       status,
		QuoteDate:    time.Now(),
		ValidUntil:   time.Now().AddDate(0, 0, 7),
		TotalAmount:  dec(amount),
		TotalMargin:  dec(margin),
	}
	require.NoError(t, db.Create(quote).Error)
	return quote
}

func TestDashboardAggregates(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	ownerID := uuid.New()

	seedQuote(t, db, ownerID, enums.QuoteStatusDraft, "100", "10")
	seedQuote(t, db, ownerID, enums.QuoteStatusSent, "200", "20")
	seedQuote(t, db, ownerID, enums.QuoteStatusAccepted, "300", "30")
	seedQuote(t, db, ownerID, enums.QuoteStatusRejected, "400", "40")
	// Viewed and expired quotes count toward totals but not conversion.
	seedQuote(t, db, ownerID, enums.QuoteStatusViewed, "500", "50")
	seedQuote(t, db, ownerID, enums.QuoteStatusExpired, "600", "60")
	// Another tenant's data must not bleed in.
	seedQuote(t, db, uuid.New(), enums.QuoteStatusAccepted, "9999", "999")

	svc := NewService(NewRepository(db), nil, 0, nil)
	dash, err := svc.Dashboard(context.Background(), ownerID)
	require.NoError(t, err)

	assert.Equal(t, int64(6), dash.Totals.Quotes)
	assert.True(t, dash.Totals.Revenue.Equal(dec("300")), "revenue %s", dash.Totals.Revenue)
	assert.True(t, dash.Totals.Margin.Equal(dec("30")))
	// 1 accepted out of 3 issued (sent + accepted + rejected).
	assert.InDelta(t, 1.0/3.0, dash.ConversionRate, 1e-9)
}

func TestDashboardUsesCache(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	ownerID := uuid.New()
	seedQuote(t, db, ownerID, enums.QuoteStatusAccepted, "100", "10")

	cache := newFakeCache()
	svc := NewService(NewRepository(db), cache, time.Minute, nil)

	first, err := svc.Dashboard(context.Background(), ownerID)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	// Change the underlying data; the cached answer should win.
	seedQuote(t, db, ownerID, enums.QuoteStatusAccepted, "500", "50")

	second, err := svc.Dashboard(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.True(t, first.Totals.Revenue.Equal(second.Totals.Revenue))
}

func TestTopBrandsRanksByAmount(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	ownerID := uuid.New()

	big := &models.Brand{ID: uuid.New(), OwnerID: ownerID, Name: "Big Seller", CostPrice: dec("10"), MRP: dec("20"), IsActive: true}
	small := &models.Brand{ID: uuid.New(), OwnerID: ownerID, Name: "Small Seller", CostPrice: dec("10"), MRP: dec("20"), IsActive: true}
	require.NoError(t, db.Create(big).Error)
	require.NoError(t, db.Create(small).Error)

	quote := seedQuote(t, db, ownerID, enums.QuoteStatusAccepted, "1000", "100")
	lines := []models.QuoteLineItem{
		{ID: uuid.New(), QuoteID: quote.ID, BrandID: big.ID, Quantity: 50, UnitPrice: dec("15"), MarginPercent: dec("50"), LineTotal: dec("750"), MarginEarned: dec("250")},
		{ID: uuid.New(), QuoteID: quote.ID, BrandID: small.ID, Quantity: 10, UnitPrice: dec("15"), MarginPercent: dec("50"), LineTotal: dec("150"), MarginEarned: dec("50")},
	}
	for i := range lines {
		require.NoError(t, db.Create(&lines[i]).Error)
	}

	svc := NewService(NewRepository(db), nil, 0, nil)
	stats, err := svc.TopBrands(context.Background(), ownerID, 5)
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.Equal(t, "Big Seller", stats[0].BrandName)
	assert.True(t, stats[0].Amount.Equal(dec("750")))
	assert.Equal(t, int64(50), stats[0].Quantity)
}

func TestRevenueTrendWindow(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	ownerID := uuid.New()

	seedQuote(t, db, ownerID, enums.QuoteStatusAccepted, "100", "10")
	old := seedQuote(t, db, ownerID, enums.QuoteStatusAccepted, "5000", "500")
	require.NoError(t, db.Model(old).Update("quote_date", time.Now().AddDate(0, 0, -90)).Error)

	svc := NewService(NewRepository(db), nil, 0, nil)
	points, err := svc.RevenueTrend(context.Background(), ownerID, 30)
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.True(t, points[0].Quoted.Equal(dec("100")))
	assert.Equal(t, int64(1), points[0].Count)
}

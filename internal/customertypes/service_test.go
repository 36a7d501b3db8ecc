package customertypes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
)

func setupCustomerTypesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
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

func TestProvisionDefaultsIdempotent(t *testing.T) {
	db := setupCustomerTypesTestDB(t)
	ownerID := uuid.New()
	svc := NewService(NewRepository(db))

	require.NoError(t, svc.ProvisionDefaults(context.Background(), ownerID))
	require.NoError(t, svc.ProvisionDefaults(context.Background(), ownerID))

	types, err := svc.List(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, types, 4)

	byName := map[string]string{}
	for _, ct := range types {
		assert.True(t, ct.IsPredefined)
		byName[ct.Name] = ct.DefaultMargin.String()
	}
	assert.Equal(t, "15", byName["Hospital"])
	assert.Equal(t, "12", byName["Retail Pharmacy"])
	assert.Equal(t, "8", byName["Modern Trade"])
	assert.Equal(t, "10", byName["Chemist Association"])
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	db := setupCustomerTypesTestDB(t)
	ownerID := uuid.New()
	svc := NewService(NewRepository(db))

	_, err := svc.Create(context.Background(), ownerID, CreateInput{Name: "Nursing Home", DefaultMargin: dec("9")})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), ownerID, CreateInput{Name: "nursing home", DefaultMargin: dec("5")})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())

	// Same name under a different tenant is fine.
	_, err = svc.Create(context.Background(), uuid.New(), CreateInput{Name: "Nursing Home", DefaultMargin: dec("9")})
	require.NoError(t, err)
}

func TestDeletePredefinedBlocked(t *testing.T) {
	db := setupCustomerTypesTestDB(t)
	ownerID := uuid.New()
	svc := NewService(NewRepository(db))
	require.NoError(t, svc.ProvisionDefaults(context.Background(), ownerID))

	types, err := svc.List(context.Background(), ownerID)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), ownerID, types[0].ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestDeleteCustomType(t *testing.T) {
	db := setupCustomerTypesTestDB(t)
	ownerID := uuid.New()
	svc := NewService(NewRepository(db))

	ct, err := svc.Create(context.Background(), ownerID, CreateInput{Name: "Clinic Chain", DefaultMargin: dec("11")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), ownerID, ct.ID))

	_, err = svc.Get(context.Background(), ownerID, ct.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestUpdatePredefinedRenameBlockedMarginAllowed(t *testing.T) {
	db := setupCustomerTypesTestDB(t)
	ownerID := uuid.New()
	svc := NewService(NewRepository(db))
	require.NoError(t, svc.ProvisionDefaults(context.Background(), ownerID))

	types, err := svc.List(context.Background(), ownerID)
	require.NoError(t, err)
	target := types[0]

	newName := "Renamed"
	_, err = svc.Update(context.Background(), ownerID, target.ID, UpdateInput{Name: &newName})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())

	margin := dec("18")
	updated, err := svc.Update(context.Background(), ownerID, target.ID, UpdateInput{DefaultMargin: &margin})
	require.NoError(t, err)
	assert.True(t, updated.DefaultMargin.Equal(margin))
}

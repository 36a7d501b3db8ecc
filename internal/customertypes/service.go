package customertypes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
)

// CreateInput is the payload to create a custom customer type.
type CreateInput struct {
	Name          string          `json:"name" validate:"required,min=2,max=120"`
	DefaultMargin decimal.Decimal `json:"default_margin"`
	Description   *string         `json:"description"`
}

// UpdateInput patches a customer type. Nil fields are untouched.
type UpdateInput struct {
	Name          *string          `json:"name"`
	DefaultMargin *decimal.Decimal `json:"default_margin"`
	Description   *string          `json:"description"`
}

// Service manages the customer segments a distributor prices against.
type Service interface {
	ProvisionDefaults(ctx context.Context, ownerID uuid.UUID) error
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.CustomerType, error)
	Get(ctx context.Context, ownerID, typeID uuid.UUID) (*models.CustomerType, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]models.CustomerType, error)
	Update(ctx context.Context, ownerID, typeID uuid.UUID, input UpdateInput) (*models.CustomerType, error)
	Delete(ctx context.Context, ownerID, typeID uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

type defaultType struct {
	name   string
	margin string
}

// The segments every new tenant starts with.
var defaultTypes = []defaultType{
	{name: "Hospital", margin: "15"},
	{name: "Retail Pharmacy", margin: "12"},
	{name: "Modern Trade", margin: "8"},
	{name: "Chemist Association", margin: "10"},
}

// ProvisionDefaults seeds the predefined segments for a tenant. Safe to call
// repeatedly; existing rows are left untouched.
func (s *service) ProvisionDefaults(ctx context.Context, ownerID uuid.UUID) error {
	for _, dt := range defaultTypes {
		_, err := s.repo.FindByName(ctx, ownerID, dt.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check customer type")
		}
		margin, err := decimal.NewFromString(dt.margin)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse default margin")
		}
		_, err = s.repo.Create(ctx, &models.CustomerType{
			OwnerID:       ownerID,
			Name:          dt.name,
			DefaultMargin: margin,
			IsPredefined:  true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed customer type")
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.CustomerType, error) {
	if input.DefaultMargin.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_margin cannot be negative")
	}
	if _, err := s.repo.FindByName(ctx, ownerID, input.Name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer type name already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check customer type name")
	}

	ct, err := s.repo.Create(ctx, &models.CustomerType{
		OwnerID:       ownerID,
		Name:          input.Name,
		DefaultMargin: input.DefaultMargin,
		Description:   input.Description,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer type")
	}
	return ct, nil
}

func (s *service) Get(ctx context.Context, ownerID, typeID uuid.UUID) (*models.CustomerType, error) {
	ct, err := s.repo.Find(ctx, ownerID, typeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer type")
	}
	return ct, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]models.CustomerType, error) {
	types, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customer types")
	}
	return types, nil
}

func (s *service) Update(ctx context.Context, ownerID, typeID uuid.UUID, input UpdateInput) (*models.CustomerType, error) {
	ct, err := s.Get(ctx, ownerID, typeID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != ct.Name {
		if ct.IsPredefined {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "predefined customer types cannot be renamed")
		}
		if _, err := s.repo.FindByName(ctx, ownerID, *input.Name); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer type name already in use")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check customer type name")
		}
		ct.Name = *input.Name
	}
	if input.DefaultMargin != nil {
		if input.DefaultMargin.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_margin cannot be negative")
		}
		ct.DefaultMargin = *input.DefaultMargin
	}
	if input.Description != nil {
		ct.Description = input.Description
	}

	saved, err := s.repo.Save(ctx, ct)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save customer type")
	}
	return saved, nil
}

// Delete removes a custom customer type. Predefined segments and segments
// still referenced by quotes are protected.
func (s *service) Delete(ctx context.Context, ownerID, typeID uuid.UUID) error {
	ct, err := s.Get(ctx, ownerID, typeID)
	if err != nil {
		return err
	}
	if ct.IsPredefined {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "predefined customer types cannot be deleted")
	}
	refs, err := s.repo.CountQuoteReferences(ctx, ownerID, typeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count quote references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "customer type is referenced by existing quotes")
	}
	if _, err := s.repo.Delete(ctx, ownerID, typeID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete customer type")
	}
	return nil
}

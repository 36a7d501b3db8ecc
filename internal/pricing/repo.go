package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
)

// Repository bundles the reads the pricing engine needs plus pricing rule
// persistence. All lookups are owner scoped.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActiveBrand loads an active brand owned by the caller.
func (r *Repository) FindActiveBrand(ctx context.Context, ownerID, brandID uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND is_active = ?", brandID, ownerID, true).
		First(&brand).Error
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// FindApplicableRule returns the active rule for (owner, brand, customer
// type) whose validity window contains the given date. A rule with no
// customer type applies to all types but loses to a type-specific rule.
// Remaining ties are broken by recency: the most recently created rule wins.
func (r *Repository) FindApplicableRule(ctx context.Context, ownerID, brandID, customerTypeID uuid.UUID, on time.Time) (*models.PricingRule, error) {
	var rule models.PricingRule
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND brand_id = ? AND is_active = ?", ownerID, brandID, true).
		Where("customer_type_id = ? OR customer_type_id IS NULL", customerTypeID).
		Where("valid_from IS NULL OR valid_from <= ?", on).
		Where("valid_until IS NULL OR valid_until >= ?", on).
		Order("CASE WHEN customer_type_id IS NULL THEN 1 ELSE 0 END, created_at DESC, id DESC").
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// FindCustomerType loads a customer type owned by the caller.
func (r *Repository) FindCustomerType(ctx context.Context, ownerID, typeID uuid.UUID) (*models.CustomerType, error) {
	var ct models.CustomerType
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", typeID, ownerID).
		First(&ct).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// FindNPPAByDrugName matches the national reference table by drug name,
// case-insensitively.
func (r *Repository) FindNPPAByDrugName(ctx context.Context, name string) (*models.NPPAControlledDrug, error) {
	var drug models.NPPAControlledDrug
	err := r.db.WithContext(ctx).
		Where("LOWER(drug_name) = LOWER(?)", name).
		First(&drug).Error
	if err != nil {
		return nil, err
	}
	return &drug, nil
}

// CreateRule inserts a new pricing rule.
func (r *Repository) CreateRule(ctx context.Context, rule *models.PricingRule) (*models.PricingRule, error) {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// FindRule loads a rule by id, owner scoped.
func (r *Repository) FindRule(ctx context.Context, ownerID, ruleID uuid.UUID) (*models.PricingRule, error) {
	var rule models.PricingRule
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", ruleID, ownerID).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// SaveRule persists an updated rule row.
func (r *Repository) SaveRule(ctx context.Context, rule *models.PricingRule) (*models.PricingRule, error) {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule removes a rule, owner scoped. Returns the number of rows
// affected so callers can surface not-found.
func (r *Repository) DeleteRule(ctx context.Context, ownerID, ruleID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", ruleID, ownerID).
		Delete(&models.PricingRule{})
	return res.RowsAffected, res.Error
}

// ListRulesByBrand returns all rules for one brand, newest first.
func (r *Repository) ListRulesByBrand(ctx context.Context, ownerID, brandID uuid.UUID) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND brand_id = ?", ownerID, brandID).
		Order("created_at DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

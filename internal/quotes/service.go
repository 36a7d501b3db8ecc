package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmaquote/pharmaquote-backend/pkg/config"
	"github.com/pharmaquote/pharmaquote-backend/pkg/db"
	"github.com/pharmaquote/pharmaquote-backend/pkg/db/models"
	"github.com/pharmaquote/pharmaquote-backend/pkg/enums"
	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
	"github.com/pharmaquote/pharmaquote-backend/pkg/money"
	"github.com/pharmaquote/pharmaquote-backend/pkg/pagination"
)

// quoteNumberIndex is the unique index quote creation retries against.
const quoteNumberIndex = "idx_quotes_quote_number"

// numberAttempts bounds the retry loop on quote-number collisions.
const numberAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type brandReader interface {
	FindActiveBrand(ctx context.Context, ownerID, brandID uuid.UUID) (*models.Brand, error)
}

// Service manages the quote lifecycle.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Quote, error)
	Get(ctx context.Context, ownerID, quoteID uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) (*ListResult, error)
	UpdateStatus(ctx context.Context, ownerID, quoteID uuid.UUID, input UpdateStatusInput) (*models.Quote, error)
	Delete(ctx context.Context, ownerID, quoteID uuid.UUID) error
}

type service struct {
	repo   *Repository
	tx     txRunner
	brands brandReader
	cfg    config.QuotesConfig
	now    func() time.Time
}

// NewService constructs the quote service.
func NewService(repo *Repository, tx txRunner, brands brandReader, cfg config.QuotesConfig) Service {
	return &service{
		repo:   repo,
		tx:     tx,
		brands: brands,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Create prices every requested line, derives totals, and writes the quote
// and its line items in one transaction. Quote numbers are random; on a
// collision with the unique index the whole write is retried with a fresh
// number.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Quote, error) {
	if len(input.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}

	validityDays := s.cfg.DefaultValidityDays
	if input.ValidityDays != nil {
		validityDays = *input.ValidityDays
	}
	if validityDays < s.cfg.MinValidityDays || validityDays > s.cfg.MaxValidityDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("validity_days must be between %d and %d", s.cfg.MinValidityDays, s.cfg.MaxValidityDays))
	}

	now := s.now()
	quote := &models.Quote{
		OwnerID:        ownerID,
		CustomerName:   input.CustomerName,
		CustomerEmail:  input.CustomerEmail,
		CustomerPhone:  input.CustomerPhone,
		CustomerTypeID: input.CustomerTypeID,
		Status:         enums.QuoteStatusDraft,
		Notes:          input.Notes,
		QuoteDate:      now,
		ValidUntil:     now.AddDate(0, 0, validityDays),
	}

	totalAmount := decimal.Zero
	totalMargin := decimal.Zero
	for i, line := range input.LineItems {
		item, err := s.priceLine(ctx, ownerID, line)
		if err != nil {
			if coded := pkgerrors.As(err); coded != nil {
				return nil, pkgerrors.New(coded.Code(), fmt.Sprintf("line %d: %s", i+1, coded.Message()))
			}
			return nil, err
		}
		quote.LineItems = append(quote.LineItems, *item)
		totalAmount = totalAmount.Add(item.LineTotal)
		totalMargin = totalMargin.Add(item.MarginEarned)
	}
	quote.TotalAmount = money.Round2(totalAmount)
	quote.TotalMargin = money.Round2(totalMargin)

	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		number, err := newQuoteNumber(ownerID, now)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate quote number")
		}
		quote.ID = uuid.Nil
		quote.QuoteNumber = number

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := s.repo.WithTx(tx).Create(ctx, quote)
			return err
		})
		if err == nil {
			return quote, nil
		}
		lastErr = err
		if !db.IsUniqueViolation(err, quoteNumberIndex) && !db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create quote")
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "could not allocate a unique quote number")
}

// priceLine prices one line item. Lines never consult pricing rules or
// customer-type defaults; the caller's unit price wins, then the caller's
// margin over cost capped at MRP, then MRP itself.
func (s *service) priceLine(ctx context.Context, ownerID uuid.UUID, line LineItemInput) (*models.QuoteLineItem, error) {
	if line.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if line.DiscountPercent != nil &&
		(line.DiscountPercent.IsNegative() || line.DiscountPercent.GreaterThan(decimal.NewFromInt(100))) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be between 0 and 100")
	}
	if line.MarginPercent != nil && line.MarginPercent.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "margin_percent must not be negative")
	}

	brand, err := s.brands.FindActiveBrand(ctx, ownerID, line.BrandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("brand %s not found", line.BrandID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load brand")
	}

	var unitPrice decimal.Decimal
	switch {
	case line.UnitPrice != nil:
		if !line.UnitPrice.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be positive")
		}
		unitPrice = *line.UnitPrice
	case line.MarginPercent != nil:
		unitPrice = money.Min(money.ApplyMargin(brand.CostPrice, *line.MarginPercent), brand.MRP)
	default:
		unitPrice = brand.MRP
	}

	discount := decimal.Zero
	if line.DiscountPercent != nil {
		discount = *line.DiscountPercent
		unitPrice = money.ApplyDiscount(unitPrice, discount)
	}
	unitPrice = money.Round2(unitPrice)

	qty := decimal.NewFromInt(int64(line.Quantity))
	marginEarned := unitPrice.Sub(brand.CostPrice).Mul(qty)
	return &models.QuoteLineItem{
		BrandID:         brand.ID,
		Quantity:        line.Quantity,
		UnitPrice:       unitPrice,
		MarginPercent:   money.Round2(money.MarginPercent(unitPrice, brand.CostPrice)),
		DiscountPercent: discount,
		LineTotal:       money.Round2(unitPrice.Mul(qty)),
		MarginEarned:    money.Round2(marginEarned),
	}, nil
}

// effectiveStatus applies lazy expiry: a non-terminal quote past its
// validity window reads as expired without a background sweeper.
func (s *service) effectiveStatus(quote *models.Quote) enums.QuoteStatus {
	if !quote.Status.IsTerminal() && s.now().After(quote.ValidUntil) {
		return enums.QuoteStatusExpired
	}
	return quote.Status
}

func (s *service) Get(ctx context.Context, ownerID, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.Find(ctx, ownerID, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
	}
	quote.Status = s.effectiveStatus(quote)
	return quote, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) (*ListResult, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown status filter")
	}
	list, total, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotes")
	}
	for i := range list {
		list[i].Status = s.effectiveStatus(&list[i])
	}
	return &ListResult{
		Quotes:  list,
		Total:   total,
		HasMore: pagination.HasMore(total, filter.Page.Normalize()),
	}, nil
}

// UpdateStatus sets a quote to any status in the closed enum. The lifecycle
// is advisory; the only structural guard lives on deletion.
func (s *service) UpdateStatus(ctx context.Context, ownerID, quoteID uuid.UUID, input UpdateStatusInput) (*models.Quote, error) {
	target, err := enums.ParseQuoteStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	quote, err := s.repo.Find(ctx, ownerID, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
	}
	if quote.Status == target {
		return quote, nil
	}

	if err := s.repo.UpdateStatus(ctx, ownerID, quoteID, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update quote status")
	}
	quote.Status = target
	return quote, nil
}

// Delete removes a draft quote and its line items in one transaction.
func (s *service) Delete(ctx context.Context, ownerID, quoteID uuid.UUID) error {
	quote, err := s.repo.Find(ctx, ownerID, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
	}
	if !quote.Status.AllowsDeletion() {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("only draft quotes can be deleted, quote is %s", quote.Status))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, ownerID, quoteID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete quote")
	}
	return nil
}

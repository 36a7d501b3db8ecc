package brands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	pkgerrors "github.com/pharmaquote/pharmaquote-backend/pkg/errors"
)

// ImportInput carries a CSV catalog upload.
type ImportInput struct {
	Reader io.Reader
	// SkipDuplicates leaves existing brands untouched instead of failing
	// their rows.
	SkipDuplicates bool
}

// ImportResult summarizes one CSV import run.
type ImportResult struct {
	Created  int          `json:"created"`
	Skipped  int          `json:"skipped"`
	Failed   int          `json:"failed"`
	RowError []RowFailure `json:"row_errors,omitempty"`
}

// RowFailure pins an import error to its CSV line.
type RowFailure struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Required CSV columns. Header names are matched case-insensitively and the
// remaining known columns are optional.
var requiredColumns = []string{"name", "cost_price", "mrp"}

// maxRowErrors bounds the per-row error list in the response. Failures past
// the cap are still counted.
const maxRowErrors = 10

// Import ingests a brand catalog CSV. Row failures do not abort the run;
// they are collected and reported alongside the created count.
func (s *service) Import(ctx context.Context, ownerID uuid.UUID, input ImportInput) (*ImportResult, error) {
	reader := csv.NewReader(input.Reader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv file is empty or unreadable")
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("csv is missing required column %q", required))
		}
	}

	result := &ImportResult{}
	var rowErrs error
	fail := func(line int, msg string, err error) {
		result.Failed++
		if len(result.RowError) < maxRowErrors {
			result.RowError = append(result.RowError, RowFailure{Line: line, Message: msg})
		}
		rowErrs = multierr.Append(rowErrs, fmt.Errorf("line %d: %w", line, err))
	}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			fail(line, "malformed csv row", err)
			continue
		}

		row, err := rowToCreateInput(columns, record)
		if err != nil {
			fail(line, err.Error(), err)
			continue
		}

		if _, err := s.Create(ctx, ownerID, *row); err != nil {
			if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeConflict && input.SkipDuplicates {
				result.Skipped++
				continue
			}
			fail(line, err.Error(), err)
			continue
		}
		result.Created++
	}

	if result.Created == 0 && result.Failed > 0 {
		return result, pkgerrors.Wrap(pkgerrors.CodeValidation, rowErrs, "no rows imported")
	}
	return result, nil
}

func cell(columns map[string]int, record []string, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func optionalCell(columns map[string]int, record []string, name string) *string {
	v := cell(columns, record, name)
	if v == "" {
		return nil
	}
	return &v
}

func rowToCreateInput(columns map[string]int, record []string) (*CreateInput, error) {
	name := cell(columns, record, "name")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	cost, err := decimal.NewFromString(cell(columns, record, "cost_price"))
	if err != nil {
		return nil, fmt.Errorf("invalid cost_price")
	}
	mrp, err := decimal.NewFromString(cell(columns, record, "mrp"))
	if err != nil {
		return nil, fmt.Errorf("invalid mrp")
	}

	input := &CreateInput{
		Name:                name,
		Manufacturer:        optionalCell(columns, record, "manufacturer"),
		TherapeuticCategory: optionalCell(columns, record, "therapeutic_category"),
		SaltName:            optionalCell(columns, record, "salt_name"),
		Strength:            optionalCell(columns, record, "strength"),
		Packing:             optionalCell(columns, record, "packing"),
		GTINCode:            optionalCell(columns, record, "gtin_code"),
		CostPrice:           cost,
		MRP:                 mrp,
	}

	if raw := cell(columns, record, "default_margin"); raw != "" {
		margin, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid default_margin")
		}
		input.DefaultMargin = &margin
	}
	if raw := cell(columns, record, "is_nppa_controlled"); raw != "" {
		switch strings.ToLower(raw) {
		case "true", "yes", "1":
			input.IsNPPAControlled = true
		case "false", "no", "0":
		default:
			return nil, fmt.Errorf("invalid is_nppa_controlled")
		}
	}
	if raw := cell(columns, record, "nppa_margin_limit"); raw != "" {
		limit, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid nppa_margin_limit")
		}
		input.NPPAMarginLimit = &limit
	}
	return input, nil
}

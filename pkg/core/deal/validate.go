package deal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"dealdesk/pkg/core/utils"
)

// ErrInvalidDeal is wrapped by every validation failure.
var ErrInvalidDeal = errors.New("invalid deal")

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failed check on a deal.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s: %s", ErrInvalidDeal, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDeal }

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// Validate checks field constraints and the cross-field rules the
// calculators rely on.
func Validate(d Deal) error {
	verr := &ValidationError{}

	if err := utils.Validator().Struct(d); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return fmt.Errorf("%w: %v", ErrInvalidDeal, err)
		}
		for _, fe := range ves {
			verr.add(fieldPath(fe.Namespace()), describe(fe))
		}
	}

	if loan := d.Loan(); loan != nil {
		if loan.Principal >= d.Acquisition.PurchasePrice+d.Acquisition.ClosingCosts {
			verr.add("financing.loan_amount", "must be less than total cost")
		}
		if d.Financing.TermYears < d.Exit.HoldYears {
			verr.add("financing.term_years", fmt.Sprintf("loan matures before the %d-year hold ends", d.Exit.HoldYears))
		}
		if d.Financing.InterestOnlyMonths > d.Financing.TermYears*12 {
			verr.add("financing.interest_only_months", "exceeds the loan term")
		}
	}

	if len(d.Operations.Expenses) == 0 && d.Operations.ExpenseRatio == 0 {
		verr.add("operations.expenses", "provide expense lines or an expense ratio")
	}

	if d.Partnership != nil {
		if err := d.Partnership.Structure(1).Validate(); err != nil {
			verr.add("partnership", err.Error())
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// fieldPath turns "Deal.financing.term_years" into "financing.term_years".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

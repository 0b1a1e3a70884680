package determination

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	dErrors "contractguide/pkg/domain-errors"
)

// maxPriceDigits bounds textual prices; 万円 amounts beyond this are typos.
const maxPriceDigits = 24

// Input is the (contract type, planned price, special reason) triple.
// PlannedPrice is expressed in 万円 (10,000 yen units).
type Input struct {
	ContractType  ContractType
	PlannedPrice  decimal.Decimal
	SpecialReason SpecialReason
}

// NewInput validates and builds an Input.
func NewInput(ct ContractType, price decimal.Decimal, reason SpecialReason) (Input, error) {
	in := Input{ContractType: ct, PlannedPrice: price, SpecialReason: reason}
	if err := in.Validate(); err != nil {
		return Input{}, err
	}
	return in, nil
}

// Validate enforces the input invariants. The engine calls it again on every
// evaluation, so callers that skip it still get an invalid_input error.
func (in Input) Validate() error {
	if !in.ContractType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown contract_type: "+in.ContractType.Code())
	}
	if in.PlannedPrice.IsNegative() {
		return dErrors.New(dErrors.CodeInvalidInput, "planned_price must not be negative")
	}
	if !in.SpecialReason.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown special_reason: "+in.SpecialReason.Code())
	}
	return nil
}

// ParsePrice parses a planned price in 万円. Thousands separators are
// accepted; NaN, infinities, exponents and negative values are not.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, dErrors.New(dErrors.CodeInvalidInput, "planned_price is required")
	}
	if len(s) > maxPriceDigits || strings.ContainsAny(s, "eE") {
		return decimal.Zero, dErrors.New(dErrors.CodeInvalidInput, "planned_price is not a number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, dErrors.New(dErrors.CodeInvalidInput, "planned_price is not a number")
	}
	if d.IsNegative() {
		return decimal.Zero, dErrors.New(dErrors.CodeInvalidInput, "planned_price must not be negative")
	}
	return d, nil
}

// PriceFromFloat converts a float price, rejecting NaN, infinities and
// negative values.
func PriceFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, dErrors.New(dErrors.CodeInvalidInput, "planned_price is not a finite number")
	}
	if f < 0 {
		return decimal.Zero, dErrors.New(dErrors.CodeInvalidInput, "planned_price must not be negative")
	}
	return decimal.NewFromFloat(f), nil
}

package determination

import "github.com/shopspring/decimal"

// Outcome is the top-level clause result. Exactly one applies per evaluation.
type Outcome string

const (
	// OutcomePrimaryClause: price at or under the category ceiling (少額随契, 第1号).
	OutcomePrimaryClause Outcome = "primary_clause"
	// OutcomeSpecialClause: ceiling exceeded, the selected special reason's clause applies.
	OutcomeSpecialClause Outcome = "special_clause"
	// OutcomeBiddingRequired: ceiling exceeded and no special reason; no negotiated contract.
	OutcomeBiddingRequired Outcome = "bidding_required"
)

// OfficeKind says which office processes the contract.
type OfficeKind string

const (
	OfficePrimary   OfficeKind = "primary"
	OfficeOversight OfficeKind = "oversight"
)

// Office is the routing result of Step A.
type Office struct {
	Kind        OfficeKind
	Name        string
	Instruction string
}

// FormKind is the contract-document requirement.
type FormKind string

const (
	FormFormalContract   FormKind = "formal_contract"
	FormAcknowledgment   FormKind = "acknowledgment"
	FormNotRequired      FormKind = "not_required"
	FormBiddingDependent FormKind = "bidding_dependent"
)

type ContractForm struct {
	Kind FormKind
	Text string
}

// Article is the legal basis cited for the determination.
type Article struct {
	Outcome Outcome
	// Clause is the item number of 施行令第167条の2第1項 (1 for the primary
	// clause, the reason code for special clauses, 0 when bidding is required).
	Clause  int
	Ceiling decimal.Decimal
	Text    string
}

// QuotationKind is the quotation-count requirement.
type QuotationKind string

const (
	QuotationSingle              QuotationKind = "single"
	QuotationMultipleRequired    QuotationKind = "multiple_required"
	QuotationMultipleRecommended QuotationKind = "multiple_recommended"
	QuotationCompetitiveBidding  QuotationKind = "competitive_bidding"
)

// MinimumQuotations is the number of quotations the requirement asks for;
// zero when a bid replaces quotations.
func (k QuotationKind) MinimumQuotations() int {
	switch k {
	case QuotationSingle:
		return 1
	case QuotationMultipleRequired, QuotationMultipleRecommended:
		return 2
	default:
		return 0
	}
}

type Quotation struct {
	Kind QuotationKind
	Text string
}

// Summary echoes the input in display form, for the printed record.
type Summary struct {
	ContractType     ContractType
	ContractTypeName string
	PlannedPrice     decimal.Decimal
	SpecialReason    SpecialReason
	ReasonName       string
}

// PlannedPriceYen converts the 万円 price to yen for display.
func (s Summary) PlannedPriceYen() decimal.Decimal {
	return s.PlannedPrice.Mul(decimal.NewFromInt(10_000))
}

// Determination is the engine's result. Every call builds a fresh value; no
// slice is shared with the tables or with other results.
type Determination struct {
	Summary      Summary
	Office       Office
	ContractForm ContractForm
	Article      Article
	Quotation    Quotation
	Notes        []Note
	Flow         string
	Procedure    []ProcedureStep
}

// RequiresOversight reports whether the case must be referred to the oversight office.
func (d Determination) RequiresOversight() bool {
	return d.Office.Kind == OfficeOversight
}

// NotesOfKind returns the notes of the given kind in emission order.
func (d Determination) NotesOfKind(kind NoteKind) []Note {
	var out []Note
	for _, n := range d.Notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

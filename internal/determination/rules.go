package determination

import "github.com/shopspring/decimal"

// reasonCategory groups special reasons by how they interact with sourcing.
type reasonCategory int

const (
	categoryNone         reasonCategory = iota
	categorySingleSource                // one_party reasons (2, 3, 5, 6)
	categoryCompetitive                 // price-comparison reasons (7, 8, 9)
)

func (c reasonCategory) String() string {
	switch c {
	case categorySingleSource:
		return "single_source"
	case categoryCompetitive:
		return "competitive"
	default:
		return "none"
	}
}

// ceilingPosition is the price relative to the category ceiling.
type ceilingPosition int

const (
	withinCeiling ceilingPosition = iota // price <= ceiling
	overCeiling
)

// quotationBand is the price relative to the single-quotation maximum.
type quotationBand int

const (
	bandSmall quotationBand = iota // price <= single_quotation_max
	bandAbove
)

type branchKey struct {
	position ceilingPosition
	category reasonCategory
}

// branchRules selects the clause outcome. The primary clause takes precedence
// whenever the price is within the ceiling, whatever reason is selected.
var branchRules = map[branchKey]Outcome{
	{withinCeiling, categoryNone}:         OutcomePrimaryClause,
	{withinCeiling, categorySingleSource}: OutcomePrimaryClause,
	{withinCeiling, categoryCompetitive}:  OutcomePrimaryClause,
	{overCeiling, categoryNone}:           OutcomeBiddingRequired,
	{overCeiling, categorySingleSource}:   OutcomeSpecialClause,
	{overCeiling, categoryCompetitive}:    OutcomeSpecialClause,
}

type quotationKey struct {
	band     quotationBand
	category reasonCategory
}

// primaryQuotationRules is the quotation requirement inside the primary clause.
// A competitive reason keeps price comparison even though the minor-contract
// clause is the legal basis.
var primaryQuotationRules = map[quotationKey]QuotationKind{
	{bandSmall, categoryNone}:         QuotationSingle,
	{bandSmall, categorySingleSource}: QuotationSingle,
	{bandSmall, categoryCompetitive}:  QuotationSingle,
	{bandAbove, categoryNone}:         QuotationMultipleRequired,
	{bandAbove, categorySingleSource}: QuotationMultipleRequired,
	{bandAbove, categoryCompetitive}:  QuotationMultipleRecommended,
}

// specialQuotationRules is the quotation requirement under a special clause.
var specialQuotationRules = map[reasonCategory]QuotationKind{
	categorySingleSource: QuotationSingle,
	categoryCompetitive:  QuotationMultipleRequired,
}

func categorize(t *Tables, r SpecialReason) reasonCategory {
	if r.IsNone() {
		return categoryNone
	}
	if t.Reasons[r].OneParty {
		return categorySingleSource
	}
	return categoryCompetitive
}

func positionOf(price, ceiling decimal.Decimal) ceilingPosition {
	if price.LessThanOrEqual(ceiling) {
		return withinCeiling
	}
	return overCeiling
}

func bandOf(price decimal.Decimal, b Bands) quotationBand {
	if price.LessThanOrEqual(b.SingleQuotationMax.Decimal) {
		return bandSmall
	}
	return bandAbove
}

package determination

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Engine maps (contract type, planned price, special reason) to a
// Determination. It holds only its own copy of the tables and is safe for
// concurrent use.
type Engine struct {
	tables *Tables
}

// NewEngine validates t and builds an engine over a private copy of it.
func NewEngine(t *Tables) (*Engine, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Engine{tables: t.clone()}, nil
}

// Tables returns a copy of the engine's tables.
func (e *Engine) Tables() *Tables {
	return e.tables.clone()
}

// Evaluate runs the determination. It is total over valid input; invalid
// input yields a CodeInvalidInput error and a zero Determination.
func (e *Engine) Evaluate(in Input) (Determination, error) {
	if err := in.Validate(); err != nil {
		return Determination{}, err
	}

	entry := e.tables.ContractTypes[in.ContractType]
	category := categorize(e.tables, in.SpecialReason)
	notes := &noteBuilder{}

	office := e.routeOffice(in, entry, category)
	form := e.contractForm(in.PlannedPrice, notes)

	var c clauseResult
	switch branchRules[branchKey{positionOf(in.PlannedPrice, entry.PriceLimit.Decimal), category}] {
	case OutcomePrimaryClause:
		c = e.primaryClause(in, entry, category, notes)
	case OutcomeSpecialClause:
		c = e.specialClause(in, entry, category, notes)
	default:
		c = e.biddingRequired(in, entry, notes)
	}
	if c.form != nil {
		form = *c.form
	}

	return Determination{
		Summary:      e.summarize(in, entry),
		Office:       office,
		ContractForm: form,
		Article:      c.article,
		Quotation:    c.quotation,
		Notes:        notes.build(),
		Flow:         c.flow,
		Procedure:    e.procedure(office),
	}, nil
}

// routeOffice is Step A. Single-source reasons never need oversight review of
// a competitive process; otherwise the category threshold decides.
func (e *Engine) routeOffice(in Input, entry ContractTypeEntry, category reasonCategory) Office {
	if category != categorySingleSource && entry.OfficeThreshold != nil &&
		in.PlannedPrice.GreaterThan(entry.OfficeThreshold.Decimal) {
		name := e.tables.Offices.Oversight
		if entry.OversightLabel != "" {
			name = entry.OversightLabel
		}
		return Office{
			Kind:        OfficeOversight,
			Name:        name,
			Instruction: fmt.Sprintf(msgOfficeOversight, name),
		}
	}
	return Office{
		Kind:        OfficePrimary,
		Name:        e.tables.Offices.Primary,
		Instruction: fmt.Sprintf(msgOfficePrimary, e.tables.Offices.Primary),
	}
}

// contractForm is Step B, a function of the price alone.
func (e *Engine) contractForm(price decimal.Decimal, notes *noteBuilder) ContractForm {
	b := e.tables.Bands
	switch {
	case price.GreaterThan(b.FormalContractOver.Decimal):
		notes.add(NoteContractForm, noteFormFormalContract)
		return ContractForm{
			Kind: FormFormalContract,
			Text: fmt.Sprintf(msgFormFormalContract, b.FormalContractOver),
		}
	case price.GreaterThan(b.AcknowledgmentOver.Decimal):
		notes.add(NoteContractForm, noteFormAcknowledgment)
		return ContractForm{
			Kind: FormAcknowledgment,
			Text: fmt.Sprintf(msgFormAcknowledgment, b.AcknowledgmentOver, b.FormalContractOver),
		}
	default:
		notes.add(NoteContractForm, noteFormNotRequired)
		return ContractForm{
			Kind: FormNotRequired,
			Text: fmt.Sprintf(msgFormNotRequired, b.AcknowledgmentOver),
		}
	}
}

// clauseResult is the Step C output. form overrides Step B when set.
type clauseResult struct {
	article   Article
	quotation Quotation
	flow      string
	form      *ContractForm
}

func (e *Engine) primaryClause(in Input, entry ContractTypeEntry, category reasonCategory, notes *noteBuilder) clauseResult {
	b := e.tables.Bands
	price, ceiling := in.PlannedPrice, entry.PriceLimit
	band := bandOf(price, b)

	kind := primaryQuotationRules[quotationKey{band, category}]
	q := Quotation{Kind: kind}
	switch kind {
	case QuotationSingle:
		q.Text = msgQuotationSinglePrimary
	case QuotationMultipleRecommended:
		q.Text = msgQuotationCompetitive
		notes.add(NoteCompetition, noteCompetition)
	default:
		q.Text = msgQuotationMultiple
	}

	if price.LessThanOrEqual(b.PriceEstimateWaiverMax.Decimal) {
		notes.add(NotePriceEstimate, fmt.Sprintf(notePriceEstimateWaivable, b.PriceEstimateWaiverMax))
	} else {
		notes.add(NotePriceEstimate, fmt.Sprintf(notePriceEstimateRequired, b.PriceEstimateWaiverMax))
	}

	switch {
	case band == bandAbove && category == categoryNone && kind == QuotationMultipleRequired:
		notes.add(NoteJustification, noteJustificationWaiver)
	case category != categoryNone:
		notes.add(NoteJustification, noteJustificationCoOccur)
		notes.add(NoteDisclosure, e.tables.Reasons[in.SpecialReason].DisclosureNote)
	default:
		notes.add(NoteJustification, noteJustificationSingle)
	}

	return clauseResult{
		article: Article{
			Outcome: OutcomePrimaryClause,
			Clause:  1,
			Ceiling: ceiling.Decimal,
			Text:    fmt.Sprintf(msgArticlePrimary, ceiling),
		},
		quotation: q,
		flow:      fmt.Sprintf(msgFlowPrimary, price, ceiling),
	}
}

// specialClause applies the selected reason's own clause. The price-estimate
// note is emitted even when the exceeded ceiling is below the waiver maximum
// (categories 4 and 5); see DESIGN.md.
func (e *Engine) specialClause(in Input, entry ContractTypeEntry, category reasonCategory, notes *noteBuilder) clauseResult {
	reason := e.tables.Reasons[in.SpecialReason]
	code := int(in.SpecialReason)

	kind := specialQuotationRules[category]
	q := Quotation{Kind: kind, Text: msgQuotationMultiple}
	if kind == QuotationSingle {
		q.Text = msgQuotationSingleSpecial
		notes.add(NoteEmergency, reason.EmergencyAdvisory)
	}

	notes.add(NoteReasonDetail, reason.Notes)
	notes.add(NoteDocumentation, reason.Document)
	notes.add(NotePriceEstimate, fmt.Sprintf(notePriceEstimateMandatory, e.tables.Bands.PriceEstimateWaiverMax))

	return clauseResult{
		article: Article{
			Outcome: OutcomeSpecialClause,
			Clause:  code,
			Ceiling: entry.PriceLimit.Decimal,
			Text:    fmt.Sprintf(msgArticleSpecial, code, reason.Label),
		},
		quotation: q,
		flow:      fmt.Sprintf(msgFlowSpecial, in.PlannedPrice, entry.PriceLimit, code),
	}
}

func (e *Engine) biddingRequired(in Input, entry ContractTypeEntry, notes *noteBuilder) clauseResult {
	notes.add(NoteLegalBasis, noteLegalBasisBidding)
	notes.add(NotePriceEstimate, fmt.Sprintf(notePriceEstimateMandatory, e.tables.Bands.PriceEstimateWaiverMax))

	return clauseResult{
		article: Article{
			Outcome: OutcomeBiddingRequired,
			Ceiling: entry.PriceLimit.Decimal,
			Text:    msgArticleBidding,
		},
		quotation: Quotation{Kind: QuotationCompetitiveBidding, Text: msgQuotationBidding},
		flow:      fmt.Sprintf(msgFlowBidding, in.PlannedPrice, entry.PriceLimit),
		form:      &ContractForm{Kind: FormBiddingDependent, Text: msgFormBiddingDependent},
	}
}

// procedure is Step D.
func (e *Engine) procedure(office Office) []ProcedureStep {
	if office.Kind == OfficeOversight {
		return []ProcedureStep{e.tables.Referral}
	}
	return slices.Clone(e.tables.Procedure)
}

func (e *Engine) summarize(in Input, entry ContractTypeEntry) Summary {
	return Summary{
		ContractType:     in.ContractType,
		ContractTypeName: entry.Name,
		PlannedPrice:     in.PlannedPrice,
		SpecialReason:    in.SpecialReason,
		ReasonName:       e.ReasonName(in.SpecialReason),
	}
}

// ReasonName is the display name of a reason, e.g. "第3号 (福祉関係施設等からの買入れ・役務)".
func (e *Engine) ReasonName(r SpecialReason) string {
	entry, ok := e.tables.Reasons[r]
	if r.IsNone() || !ok {
		return msgReasonNone
	}
	return fmt.Sprintf(msgReasonName, int(r), entry.Label)
}

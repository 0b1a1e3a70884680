package determination

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "contractguide/pkg/domain-errors"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultTables())
	require.NoError(t, err)
	return e
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func evaluate(t *testing.T, e *Engine, ct ContractType, p string, r SpecialReason) Determination {
	t.Helper()
	d, err := e.Evaluate(Input{ContractType: ct, PlannedPrice: price(p), SpecialReason: r})
	require.NoError(t, err)
	return d
}

func noteKinds(d Determination) []NoteKind {
	kinds := make([]NoteKind, 0, len(d.Notes))
	for _, n := range d.Notes {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

// Scenario tests mirror the worked examples used by the contract office.

func TestEvaluate_GoodsPurchaseSmallAmount(t *testing.T) {
	d := evaluate(t, newTestEngine(t), ContractTypeGoodsPurchase, "5", ReasonNone)

	assert.Equal(t, OutcomePrimaryClause, d.Article.Outcome)
	assert.Equal(t, 1, d.Article.Clause)
	assert.True(t, d.Article.Ceiling.Equal(price("150")))
	assert.Equal(t, "施行令第167条の2第1項第1号 (少額随契 - 上限150万円)", d.Article.Text)
	assert.Equal(t, QuotationSingle, d.Quotation.Kind)
	assert.Equal(t, OfficePrimary, d.Office.Kind)
	assert.Equal(t, "主管課で事務を行います", d.Office.Instruction)
	assert.Equal(t, FormNotRequired, d.ContractForm.Kind)
	assert.Equal(t, "【契約書・請書は原則不要】(20万円以下)", d.ContractForm.Text)
	assert.Equal(t, []NoteKind{NoteContractForm, NotePriceEstimate, NoteJustification}, noteKinds(d))
	assert.Equal(t, "1者随契で処理する場合、業者選定理由等を執行伺書に記載してください。", d.NotesOfKind(NoteJustification)[0].Text)
	assert.Len(t, d.Procedure, 5)
	assert.Equal(t, "特になし (価格要件のみ)", d.Summary.ReasonName)
	assert.Equal(t, "財産の買入れ", d.Summary.ContractTypeName)
	assert.True(t, d.Summary.PlannedPriceYen().Equal(price("50000")))
}

func TestEvaluate_ServiceOverOfficeThreshold(t *testing.T) {
	d := evaluate(t, newTestEngine(t), ContractTypeOtherService, "60", ReasonNone)

	assert.Equal(t, OfficeOversight, d.Office.Kind)
	assert.Equal(t, "契約検査課へ依頼してください", d.Office.Instruction)
	assert.Equal(t, FormFormalContract, d.ContractForm.Kind)
	assert.Equal(t, OutcomePrimaryClause, d.Article.Outcome)
	assert.True(t, d.Article.Ceiling.Equal(price("100")))
	assert.Equal(t, QuotationMultipleRequired, d.Quotation.Kind)

	estimates := d.NotesOfKind(NotePriceEstimate)
	require.Len(t, estimates, 1)
	assert.Equal(t, "予定価格調書を作成すること (50万円超)", estimates[0].Text)

	require.Len(t, d.Procedure, 1)
	assert.Equal(t, "契約検査課への依頼", d.Procedure[0].Title)
	assert.NotEmpty(t, d.Procedure[0].Remark)
}

func TestEvaluate_LeaseInWelfareReasonOverCeiling(t *testing.T) {
	d := evaluate(t, newTestEngine(t), ContractTypePropertyLeaseIn, "90", Reason3)

	assert.Equal(t, OutcomeSpecialClause, d.Article.Outcome)
	assert.Equal(t, 3, d.Article.Clause)
	assert.True(t, d.Article.Ceiling.Equal(price("80")))
	assert.Equal(t, "施行令第167条の2第1項第3号 (福祉関係施設等からの買入れ・役務)", d.Article.Text)
	assert.Equal(t, QuotationSingle, d.Quotation.Kind)
	assert.Equal(t, OfficePrimary, d.Office.Kind)

	docs := d.NotesOfKind(NoteDocumentation)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Text, "公表手続き")
	assert.Len(t, d.NotesOfKind(NotePriceEstimate), 1)
	assert.Empty(t, d.NotesOfKind(NoteEmergency))
	assert.Equal(t, "（予定価格 90万円は第1号の上限額 80万円を超過しています。特殊事由（第3号）が適用されました。）", d.Flow)
}

func TestEvaluate_ConstructionOverCeilingWithoutReason(t *testing.T) {
	d := evaluate(t, newTestEngine(t), ContractTypeConstruction, "250", ReasonNone)

	assert.Equal(t, OutcomeBiddingRequired, d.Article.Outcome)
	assert.Equal(t, "随意契約の適用不可", d.Article.Text)
	assert.Equal(t, QuotationCompetitiveBidding, d.Quotation.Kind)
	assert.Equal(t, FormBiddingDependent, d.ContractForm.Kind)
	assert.Equal(t, "入札により、落札金額に応じて契約書または請書が必要です。", d.ContractForm.Text)
	assert.Equal(t, []NoteKind{NoteContractForm, NoteLegalBasis, NotePriceEstimate}, noteKinds(d))
	assert.Equal(t, OfficeOversight, d.Office.Kind)
	assert.Equal(t, "契約検査課 (競争入札が必要な案件)", d.Office.Name)
}

func TestEvaluate_DisposalCompetitiveReasonUnderCeiling(t *testing.T) {
	d := evaluate(t, newTestEngine(t), ContractTypePropertyDisposal, "45", Reason7)

	assert.Equal(t, OutcomePrimaryClause, d.Article.Outcome)
	assert.True(t, d.Article.Ceiling.Equal(price("50")))
	assert.Equal(t, QuotationMultipleRecommended, d.Quotation.Kind)
	assert.Equal(t, "原則として2者以上の徴取が必要 (特殊事由により競争性を確保)", d.Quotation.Text)
	assert.Len(t, d.NotesOfKind(NoteCompetition), 1)
	assert.Equal(t, FormAcknowledgment, d.ContractForm.Kind)
	assert.Equal(t, OfficePrimary, d.Office.Kind, "disposal has no oversight threshold")
	assert.Equal(t, []NoteKind{
		NoteContractForm, NoteCompetition, NotePriceEstimate, NoteJustification,
	}, noteKinds(d))
}

func TestEvaluate_CeilingBoundary(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		price string
		want  Outcome
	}{
		{"200", OutcomePrimaryClause},
		{"200.01", OutcomeBiddingRequired},
		{"200.0000001", OutcomeBiddingRequired},
		{"201", OutcomeBiddingRequired},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			d := evaluate(t, e, ContractTypeConstruction, tt.price, ReasonNone)
			assert.Equal(t, tt.want, d.Article.Outcome)
		})
	}
}

func TestEvaluate_ContractFormBands(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		price string
		want  FormKind
	}{
		{"0", FormNotRequired},
		{"20", FormNotRequired},
		{"20.01", FormAcknowledgment},
		{"50", FormAcknowledgment},
		{"50.5", FormFormalContract},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			d := evaluate(t, e, ContractTypeGoodsPurchase, tt.price, ReasonNone)
			assert.Equal(t, tt.want, d.ContractForm.Kind)
			assert.Equal(t, NoteContractForm, d.Notes[0].Kind)
		})
	}
}

func TestEvaluate_PrimaryClauseJustificationNotes(t *testing.T) {
	e := newTestEngine(t)

	t.Run("multiple quotations without reason waive the justification document", func(t *testing.T) {
		d := evaluate(t, e, ContractTypeGoodsPurchase, "30", ReasonNone)
		notes := d.NotesOfKind(NoteJustification)
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0].Text, "**不要**")
	})

	t.Run("co-occurring single-source reason still needs the document", func(t *testing.T) {
		d := evaluate(t, e, ContractTypeGoodsPurchase, "30", Reason2)
		assert.Equal(t, QuotationMultipleRequired, d.Quotation.Kind)
		notes := d.NotesOfKind(NoteJustification)
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0].Text, "【特殊事由あり】")
		assert.Empty(t, d.NotesOfKind(NoteDisclosure))
	})

	t.Run("welfare reason adds disclosure note", func(t *testing.T) {
		d := evaluate(t, e, ContractTypeGoodsPurchase, "8", Reason3)
		assert.Equal(t, QuotationSingle, d.Quotation.Kind)
		disclosures := d.NotesOfKind(NoteDisclosure)
		require.Len(t, disclosures, 1)
		assert.Equal(t, "**【重要】第3号(福祉施設等)の公表手続きが必要です。**", disclosures[0].Text)
	})

	t.Run("price estimate waivable at 50, required above", func(t *testing.T) {
		at := evaluate(t, e, ContractTypeGoodsPurchase, "50", ReasonNone)
		assert.Equal(t, "予定価格調書の作成は省略可能 (50万円以下)", at.NotesOfKind(NotePriceEstimate)[0].Text)
		above := evaluate(t, e, ContractTypeGoodsPurchase, "51", ReasonNone)
		assert.Equal(t, "予定価格調書を作成すること (50万円超)", above.NotesOfKind(NotePriceEstimate)[0].Text)
	})

	t.Run("flow cites the ceiling", func(t *testing.T) {
		d := evaluate(t, e, ContractTypeOtherService, "12.5", ReasonNone)
		assert.Equal(t, "判定は「第1号優先適用」の原則に基づき行われました。（予定価格 12.5万円は上限額 100万円以下）", d.Flow)
	})
}

func TestEvaluate_SpecialClause(t *testing.T) {
	e := newTestEngine(t)

	t.Run("emergency reason advises competition", func(t *testing.T) {
		d := evaluate(t, e, ContractTypeConstruction, "500", Reason5)
		assert.Equal(t, QuotationSingle, d.Quotation.Kind)
		assert.Equal(t, "原則として1者のみの徴取で足りる (規則第14条第1項による)", d.Quotation.Text)
		assert.Equal(t, []NoteKind{
			NoteContractForm, NoteEmergency, NoteReasonDetail, NoteDocumentation, NotePriceEstimate,
		}, noteKinds(d))
	})

	t.Run("competitive reason requires multiple quotations", func(t *testing.T) {
		d := evaluate(t, e, ContractTypeGoodsPurchase, "300", Reason8)
		assert.Equal(t, OutcomeSpecialClause, d.Article.Outcome)
		assert.Equal(t, QuotationMultipleRequired, d.Quotation.Kind)
		assert.Equal(t, OfficeOversight, d.Office.Kind)
		assert.Equal(t, "施行令第167条の2第1項第8号 (入札不調)", d.Article.Text)
	})

	// The mandatory price-estimate note is kept even when 50 is not exceeded.
	t.Run("price estimate note below 50 on low ceilings", func(t *testing.T) {
		d := evaluate(t, e, ContractTypePropertyLeaseOut, "40", Reason2)
		assert.Equal(t, OutcomeSpecialClause, d.Article.Outcome)
		notes := d.NotesOfKind(NotePriceEstimate)
		require.Len(t, notes, 1)
		assert.Equal(t, "価格が50万円を超えているため、予定価格調書の作成は必須です。", notes[0].Text)
	})
}

func TestEvaluate_OfficeRouting(t *testing.T) {
	e := newTestEngine(t)

	t.Run("single-source reasons always stay with the primary office", func(t *testing.T) {
		for _, r := range []SpecialReason{Reason2, Reason3, Reason5, Reason6} {
			for _, ct := range AllContractTypes() {
				for _, p := range []string{"0", "10", "20.5", "50.01", "1000", "99999"} {
					d := evaluate(t, e, ct, p, r)
					assert.Equal(t, OfficePrimary, d.Office.Kind, "type=%s price=%s reason=%d", ct, p, r)
					assert.Len(t, d.Procedure, 5)
				}
			}
		}
	})

	t.Run("threshold is exclusive", func(t *testing.T) {
		assert.Equal(t, OfficePrimary, evaluate(t, e, ContractTypeGoodsPurchase, "20", ReasonNone).Office.Kind)
		assert.Equal(t, OfficeOversight, evaluate(t, e, ContractTypeGoodsPurchase, "20.01", ReasonNone).Office.Kind)
		assert.Equal(t, OfficeOversight, evaluate(t, e, ContractTypePropertyLeaseIn, "21", Reason9).Office.Kind)
	})

	t.Run("categories without threshold never route to oversight", func(t *testing.T) {
		for _, ct := range []ContractType{ContractTypePropertyDisposal, ContractTypePropertyLeaseOut} {
			d := evaluate(t, e, ct, "10000", ReasonNone)
			assert.Equal(t, OfficePrimary, d.Office.Kind)
		}
	})
}

// TestEvaluate_OutcomesExhaustive checks that every valid input lands in
// exactly one outcome and that the outcome matches the ceiling rule.
func TestEvaluate_OutcomesExhaustive(t *testing.T) {
	e := newTestEngine(t)
	reasons := append([]SpecialReason{ReasonNone}, AllSpecialReasons()...)
	prices := []string{"0", "5", "10", "10.5", "20", "30", "30.01", "45", "50", "80", "80.5", "100", "150", "199.99", "200", "250", "1000"}

	for _, ct := range AllContractTypes() {
		ceiling := DefaultTables().ContractTypes[ct].PriceLimit.Decimal
		for _, r := range reasons {
			for _, p := range prices {
				d := evaluate(t, e, ct, p, r)
				var want Outcome
				switch {
				case price(p).LessThanOrEqual(ceiling):
					want = OutcomePrimaryClause
				case r.IsNone():
					want = OutcomeBiddingRequired
				default:
					want = OutcomeSpecialClause
				}
				assert.Equal(t, want, d.Article.Outcome, "type=%s price=%s reason=%d", ct, p, r)
				assert.NotEmpty(t, d.Article.Text)
				assert.NotEmpty(t, d.Quotation.Text)
				assert.NotEmpty(t, d.Flow)
				assert.NotEmpty(t, d.Procedure)
				assert.Equal(t, NoteContractForm, d.Notes[0].Kind)
			}
		}
	}
}

// TestEvaluate_QuotationMonotonic: within the primary clause a higher price
// never lowers the quotation requirement.
func TestEvaluate_QuotationMonotonic(t *testing.T) {
	e := newTestEngine(t)
	reasons := append([]SpecialReason{ReasonNone}, AllSpecialReasons()...)

	for _, ct := range AllContractTypes() {
		ceiling := DefaultTables().ContractTypes[ct].PriceLimit.Decimal
		for _, r := range reasons {
			prev := 0
			for p := decimal.Zero; p.LessThanOrEqual(ceiling); p = p.Add(decimal.NewFromFloat(0.5)) {
				d := evaluate(t, e, ct, p.String(), r)
				require.Equal(t, OutcomePrimaryClause, d.Article.Outcome)
				got := d.Quotation.Kind.MinimumQuotations()
				require.GreaterOrEqual(t, got, prev, "type=%s price=%s reason=%d", ct, p, r)
				prev = got
			}
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	in := Input{ContractType: ContractTypeOtherService, PlannedPrice: price("60"), SpecialReason: Reason7}

	first, err := e.Evaluate(in)
	require.NoError(t, err)
	second, err := e.Evaluate(in)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated evaluation differs (-first +second):\n%s", diff)
	}
}

func TestEvaluate_ResultsDoNotShareState(t *testing.T) {
	e := newTestEngine(t)
	in := Input{ContractType: ContractTypeGoodsPurchase, PlannedPrice: price("15"), SpecialReason: ReasonNone}

	first, err := e.Evaluate(in)
	require.NoError(t, err)
	require.Equal(t, OfficePrimary, first.Office.Kind)
	require.Len(t, first.Procedure, 5)
	first.Procedure[0].Title = "mutated"
	first.Notes[0].Text = "mutated"

	second, err := e.Evaluate(in)
	require.NoError(t, err)
	require.Len(t, second.Procedure, 5)
	assert.Equal(t, "執行(施行)伺書の作成", second.Procedure[0].Title)
	assert.NotEqual(t, "mutated", second.Notes[0].Text)

	// Referral results are built from the tables too.
	referral := evaluate(t, e, ContractTypeGoodsPurchase, "30", ReasonNone)
	require.Len(t, referral.Procedure, 1)
	referral.Procedure[0].Title = "mutated"
	again := evaluate(t, e, ContractTypeGoodsPurchase, "30", ReasonNone)
	assert.Equal(t, "契約検査課への依頼", again.Procedure[0].Title)
}

func TestEvaluate_Concurrent(t *testing.T) {
	e := newTestEngine(t)
	in := Input{ContractType: ContractTypeConstruction, PlannedPrice: price("120"), SpecialReason: Reason6}
	want, err := e.Evaluate(in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Evaluate(in)
			assert.NoError(t, err)
			assert.True(t, cmp.Equal(want, got))
		}()
	}
	wg.Wait()
}

func TestEvaluate_InvalidInput(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		in   Input
		msg  string
	}{
		{"unknown contract type", Input{ContractType: 7, PlannedPrice: price("1")}, "contract_type"},
		{"zero contract type", Input{ContractType: 0, PlannedPrice: price("1")}, "contract_type"},
		{"negative price", Input{ContractType: ContractTypeConstruction, PlannedPrice: price("-0.01")}, "negative"},
		{"unknown reason", Input{ContractType: ContractTypeConstruction, PlannedPrice: price("1"), SpecialReason: 4}, "special_reason"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := e.Evaluate(tt.in)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			assert.True(t, strings.Contains(err.Error(), tt.msg), err.Error())
			assert.Equal(t, Determination{}, d)
		})
	}
}

func TestNewEngine_CopiesTables(t *testing.T) {
	tables := DefaultTables()
	e, err := NewEngine(tables)
	require.NoError(t, err)

	tables.Procedure[0].Title = "changed after construction"
	tables.Referral.Title = "changed after construction"
	entry := tables.ContractTypes[ContractTypePropertyDisposal]
	entry.PriceLimit = NewAmount(1)
	tables.ContractTypes[ContractTypePropertyDisposal] = entry

	// Property disposal has no office threshold, so 40 stays in the primary office.
	d := evaluate(t, e, ContractTypePropertyDisposal, "40", ReasonNone)
	assert.Equal(t, OutcomePrimaryClause, d.Article.Outcome)
	require.Equal(t, OfficePrimary, d.Office.Kind)
	require.Len(t, d.Procedure, 5)
	assert.Equal(t, "執行(施行)伺書の作成", d.Procedure[0].Title)

	referral := evaluate(t, e, ContractTypeConstruction, "150", ReasonNone)
	require.Len(t, referral.Procedure, 1)
	assert.Equal(t, "契約検査課への依頼", referral.Procedure[0].Title)
}

func TestNewEngine_RejectsIncompleteTables(t *testing.T) {
	tables := DefaultTables()
	delete(tables.Reasons, Reason9)

	_, err := NewEngine(tables)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

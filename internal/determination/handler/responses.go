package handler

import (
	"time"

	"contractguide/internal/determination"
	"contractguide/internal/render"
)

// EvaluateResponse is the HTTP response for POST /determinations.
type EvaluateResponse struct {
	Summary      SummaryResponse      `json:"summary"`
	Office       OfficeResponse       `json:"office"`
	ContractForm ContractFormResponse `json:"contract_form"`
	Article      ArticleResponse      `json:"article"`
	Quotation    TextResponse         `json:"quotation"`
	Notes        []NoteResponse       `json:"notes"`
	Flow         string               `json:"flow"`
	Procedure    []StepResponse       `json:"procedure"`
	EvaluatedAt  time.Time            `json:"evaluated_at"`
}

type SummaryResponse struct {
	ContractType     string `json:"contract_type"`
	ContractTypeCode string `json:"contract_type_code"`
	ContractTypeName string `json:"contract_type_name"`
	PlannedPriceMan  string `json:"planned_price_man"`
	PlannedPriceYen  string `json:"planned_price_yen"`
	SpecialReason    string `json:"special_reason"`
	ReasonName       string `json:"reason_name"`
}

type OfficeResponse struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Instruction string `json:"instruction"`
}

type ContractFormResponse struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type ArticleResponse struct {
	Outcome    string `json:"outcome"`
	Clause     int    `json:"clause,omitempty"`
	CeilingMan string `json:"ceiling_man"`
	Text       string `json:"text"`
}

// TextResponse carries a text that may contain emphasis markers, plus its segments.
type TextResponse struct {
	Kind     string            `json:"kind"`
	Text     string            `json:"text"`
	Segments []SegmentResponse `json:"segments"`
}

type NoteResponse struct {
	Kind     string            `json:"kind"`
	Text     string            `json:"text"`
	Segments []SegmentResponse `json:"segments"`
}

type SegmentResponse struct {
	Text     string `json:"text"`
	Emphasis bool   `json:"emphasis,omitempty"`
}

type StepResponse struct {
	Number   int               `json:"number"`
	Title    string            `json:"title"`
	Detail   string            `json:"detail"`
	Segments []SegmentResponse `json:"segments"`
	Remark   string            `json:"remark,omitempty"`
}

// FromResult converts a domain Result to an HTTP response.
func FromResult(result *determination.Result) *EvaluateResponse {
	d := result.Determination
	resp := &EvaluateResponse{
		Summary: SummaryResponse{
			ContractType:     d.Summary.ContractType.String(),
			ContractTypeCode: d.Summary.ContractType.Code(),
			ContractTypeName: d.Summary.ContractTypeName,
			PlannedPriceMan:  d.Summary.PlannedPrice.String(),
			PlannedPriceYen:  render.Yen(d.Summary.PlannedPriceYen()),
			SpecialReason:    d.Summary.SpecialReason.Code(),
			ReasonName:       d.Summary.ReasonName,
		},
		Office: OfficeResponse{
			Kind:        string(d.Office.Kind),
			Name:        d.Office.Name,
			Instruction: d.Office.Instruction,
		},
		ContractForm: ContractFormResponse{
			Kind: string(d.ContractForm.Kind),
			Text: d.ContractForm.Text,
		},
		Article: ArticleResponse{
			Outcome:    string(d.Article.Outcome),
			Clause:     d.Article.Clause,
			CeilingMan: d.Article.Ceiling.String(),
			Text:       d.Article.Text,
		},
		Quotation: TextResponse{
			Kind:     string(d.Quotation.Kind),
			Text:     d.Quotation.Text,
			Segments: segments(d.Quotation.Text),
		},
		Notes:       make([]NoteResponse, 0, len(d.Notes)),
		Flow:        d.Flow,
		Procedure:   make([]StepResponse, 0, len(d.Procedure)),
		EvaluatedAt: result.EvaluatedAt,
	}
	for _, n := range d.Notes {
		resp.Notes = append(resp.Notes, NoteResponse{
			Kind:     string(n.Kind),
			Text:     n.Text,
			Segments: segments(n.Text),
		})
	}
	for i, step := range d.Procedure {
		resp.Procedure = append(resp.Procedure, StepResponse{
			Number:   i + 1,
			Title:    step.Title,
			Detail:   step.Detail,
			Segments: segments(step.Detail),
			Remark:   step.Remark,
		})
	}
	return resp
}

func segments(text string) []SegmentResponse {
	parts := render.Segments(text)
	out := make([]SegmentResponse, 0, len(parts))
	for _, p := range parts {
		out = append(out, SegmentResponse{Text: p.Text, Emphasis: p.Emphasis})
	}
	return out
}

// ReferenceResponse is the HTTP response for GET /reference.
type ReferenceResponse struct {
	ContractTypes []ContractTypeResponse `json:"contract_types"`
	Reasons       []ReasonResponse       `json:"reasons"`
}

type ContractTypeResponse struct {
	Code               string `json:"code"`
	Slug               string `json:"slug"`
	Name               string `json:"name"`
	PriceLimitMan      string `json:"price_limit_man"`
	OfficeThresholdMan string `json:"office_threshold_man,omitempty"`
}

type ReasonResponse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	OneParty bool   `json:"one_party"`
	Notes    string `json:"notes"`
}

// FromReference converts the reference options to an HTTP response.
func FromReference(ref determination.Reference) *ReferenceResponse {
	resp := &ReferenceResponse{}
	for _, ct := range ref.ContractTypes {
		item := ContractTypeResponse{
			Code:          ct.Type.Code(),
			Slug:          ct.Type.String(),
			Name:          ct.Name,
			PriceLimitMan: ct.PriceLimit.String(),
		}
		if ct.OfficeThreshold != nil {
			item.OfficeThresholdMan = ct.OfficeThreshold.String()
		}
		resp.ContractTypes = append(resp.ContractTypes, item)
	}
	for _, r := range ref.Reasons {
		resp.Reasons = append(resp.Reasons, ReasonResponse{
			Code:     r.Reason.Code(),
			Name:     r.Name,
			OneParty: r.OneParty,
			Notes:    r.Notes,
		})
	}
	return resp
}

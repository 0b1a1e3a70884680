package handler

import (
	"bytes"
	"encoding/json"

	"contractguide/internal/determination"
	dErrors "contractguide/pkg/domain-errors"
)

// Scalar is a form value that clients may send as a JSON number (2) or
// string ("2", "goods_purchase", "1,234.5").
type Scalar string

func (c *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Scalar(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = Scalar(n.String())
	return nil
}

// EvaluateRequest is the HTTP request body for POST /determinations.
type EvaluateRequest struct {
	ContractType  Scalar `json:"contract_type"`
	PlannedPrice  Scalar `json:"planned_price"`
	SpecialReason Scalar `json:"special_reason,omitempty"`

	// Parsed values (populated by Validate)
	parsed determination.Input
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	ct, err := determination.ParseContractType(string(r.ContractType))
	if err != nil {
		return err
	}
	if r.PlannedPrice == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "planned_price is required")
	}
	price, err := determination.ParsePrice(string(r.PlannedPrice))
	if err != nil {
		return err
	}
	reason, err := determination.ParseSpecialReason(string(r.SpecialReason))
	if err != nil {
		return err
	}

	in, err := determination.NewInput(ct, price, reason)
	if err != nil {
		return err
	}
	r.parsed = in
	return nil
}

// Input returns the validated domain input.
func (r *EvaluateRequest) Input() determination.Input {
	return r.parsed
}

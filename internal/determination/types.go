package determination

import (
	"strconv"
	"strings"

	dErrors "contractguide/pkg/domain-errors"
)

// ContractType is the statutory contract category (施行令第167条の2第1項第1号 別表).
// Invariant: the value must be one of the six categories below.
//
// Usage: construct via ParseContractType at trust boundaries; direct casting
// bypasses validation.
type ContractType int

const (
	ContractTypeConstruction     ContractType = 1 // 工事又は製造の請負
	ContractTypeGoodsPurchase    ContractType = 2 // 財産の買入れ
	ContractTypePropertyLeaseIn  ContractType = 3 // 物件の借入れ
	ContractTypePropertyDisposal ContractType = 4 // 財産の売払い
	ContractTypePropertyLeaseOut ContractType = 5 // 物件の貸付け
	ContractTypeOtherService     ContractType = 6 // 前各号に掲げる以外のもの
)

// contractTypeSlugs is the single source of truth for valid contract types.
var contractTypeSlugs = map[ContractType]string{
	ContractTypeConstruction:     "construction",
	ContractTypeGoodsPurchase:    "goods_purchase",
	ContractTypePropertyLeaseIn:  "property_lease_in",
	ContractTypePropertyDisposal: "property_disposal",
	ContractTypePropertyLeaseOut: "property_lease_out",
	ContractTypeOtherService:     "other_service",
}

// AllContractTypes returns every category in code order.
func AllContractTypes() []ContractType {
	return []ContractType{
		ContractTypeConstruction,
		ContractTypeGoodsPurchase,
		ContractTypePropertyLeaseIn,
		ContractTypePropertyDisposal,
		ContractTypePropertyLeaseOut,
		ContractTypeOtherService,
	}
}

// ParseContractType accepts either the numeric code ("2") or the slug
// ("goods_purchase").
//
// Errors: returns CodeInvalidInput when the value is empty or unknown.
func ParseContractType(s string) (ContractType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "contract_type is required")
	}
	if n, err := strconv.Atoi(s); err == nil {
		ct := ContractType(n)
		if !ct.IsValid() {
			return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown contract_type: "+s)
		}
		return ct, nil
	}
	for ct, slug := range contractTypeSlugs {
		if strings.EqualFold(slug, s) {
			return ct, nil
		}
	}
	return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown contract_type: "+s)
}

// IsValid checks if the contract type is one of the supported categories.
func (c ContractType) IsValid() bool {
	_, ok := contractTypeSlugs[c]
	return ok
}

// String returns the slug, or "unknown" for invalid values.
func (c ContractType) String() string {
	if slug, ok := contractTypeSlugs[c]; ok {
		return slug
	}
	return "unknown"
}

// Code returns the numeric code as used on the paper form.
func (c ContractType) Code() string {
	return strconv.Itoa(int(c))
}

// SpecialReason is the optional statutory ground (施行令第167条の2第1項各号)
// selected alongside the price. ReasonNone means "price requirement only".
type SpecialReason int

const (
	ReasonNone SpecialReason = 0
	Reason2    SpecialReason = 2 // 性質又は目的が競争入札に適しない
	Reason3    SpecialReason = 3 // 福祉関係施設等からの買入れ・役務
	Reason5    SpecialReason = 5 // 緊急の必要
	Reason6    SpecialReason = 6 // 競争入札に付することが不利
	Reason7    SpecialReason = 7 // 時価に比べて著しく有利な価格
	Reason8    SpecialReason = 8 // 入札不調
	Reason9    SpecialReason = 9 // 落札者が契約を締結しない
)

var validReasons = map[SpecialReason]bool{
	Reason2: true,
	Reason3: true,
	Reason5: true,
	Reason6: true,
	Reason7: true,
	Reason8: true,
	Reason9: true,
}

// AllSpecialReasons returns every selectable reason (excluding ReasonNone) in code order.
func AllSpecialReasons() []SpecialReason {
	return []SpecialReason{Reason2, Reason3, Reason5, Reason6, Reason7, Reason8, Reason9}
}

// ParseSpecialReason accepts "", "0" or "none" for ReasonNone, otherwise a
// reason code.
//
// Errors: returns CodeInvalidInput for unknown codes.
func ParseSpecialReason(s string) (SpecialReason, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" || strings.EqualFold(s, "none") {
		return ReasonNone, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !SpecialReason(n).IsValid() {
		return ReasonNone, dErrors.New(dErrors.CodeInvalidInput, "unknown special_reason: "+s)
	}
	return SpecialReason(n), nil
}

// IsValid reports whether r is ReasonNone or a known reason code.
func (r SpecialReason) IsValid() bool {
	return r == ReasonNone || validReasons[r]
}

// IsNone reports whether no special ground was selected.
func (r SpecialReason) IsNone() bool {
	return r == ReasonNone
}

// Code returns the reason number as a string ("0" for none).
func (r SpecialReason) Code() string {
	return strconv.Itoa(int(r))
}

func (r SpecialReason) String() string {
	if r == ReasonNone {
		return "none"
	}
	return "reason_" + r.Code()
}

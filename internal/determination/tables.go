package determination

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	dErrors "contractguide/pkg/domain-errors"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Amount is a 万円 figure in the tables. It decodes from YAML scalars exactly,
// without a float round-trip.
type Amount struct {
	decimal.Decimal
}

// NewAmount builds an Amount from an integer number of 万円.
func NewAmount(man int64) Amount {
	return Amount{decimal.NewFromInt(man)}
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q", node.Line, node.Value)
	}
	a.Decimal = d
	return nil
}

func (a Amount) MarshalYAML() (any, error) {
	tag := "!!float"
	if a.IsInteger() {
		tag = "!!int"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: a.String()}, nil
}

// Offices names the two processing offices.
type Offices struct {
	Primary   string `yaml:"primary"`
	Oversight string `yaml:"oversight"`
}

// Bands are the fixed price boundaries shared by every category.
type Bands struct {
	SingleQuotationMax     Amount `yaml:"single_quotation_max"`
	AcknowledgmentOver     Amount `yaml:"acknowledgment_over"`
	FormalContractOver     Amount `yaml:"formal_contract_over"`
	PriceEstimateWaiverMax Amount `yaml:"price_estimate_waiver_max"`
}

// ContractTypeEntry is the per-category row: display name, price ceiling for
// the primary clause, and the optional oversight-office threshold.
type ContractTypeEntry struct {
	Name            string  `yaml:"name"`
	PriceLimit      Amount  `yaml:"price_limit"`
	OfficeThreshold *Amount `yaml:"office_threshold,omitempty"`
	OversightLabel  string  `yaml:"oversight_label,omitempty"`
}

// ReasonEntry is the metadata of one special reason.
type ReasonEntry struct {
	Label    string `yaml:"label"`
	OneParty bool   `yaml:"one_party"`
	Notes    string `yaml:"notes"`
	Document string `yaml:"document"`

	// DisclosureNote is emitted when the reason co-occurs with the primary clause.
	DisclosureNote string `yaml:"disclosure_note,omitempty"`
	// EmergencyAdvisory is emitted when the reason's own clause applies with a
	// single quotation.
	EmergencyAdvisory string `yaml:"emergency_advisory,omitempty"`
}

// ProcedureStep is one step of the procedural checklist.
type ProcedureStep struct {
	Title  string `yaml:"title" json:"title"`
	Detail string `yaml:"detail" json:"detail"`
	Remark string `yaml:"remark,omitempty" json:"remark,omitempty"`
}

// Tables is the static configuration of the engine. Validate once at start-up;
// the engine keeps its own copy afterwards.
type Tables struct {
	Offices       Offices                            `yaml:"offices"`
	Bands         Bands                              `yaml:"bands"`
	ContractTypes map[ContractType]ContractTypeEntry `yaml:"contract_types"`
	Reasons       map[SpecialReason]ReasonEntry      `yaml:"reasons"`
	Procedure     []ProcedureStep                    `yaml:"procedure"`
	Referral      ProcedureStep                      `yaml:"referral"`
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() *Tables {
	t, err := parseTables(defaultTablesYAML, nil)
	if err != nil {
		panic(fmt.Sprintf("embedded tables.yaml is invalid: %v", err))
	}
	return t
}

// LoadTables loads an override file on top of the built-in tables. Empty
// path returns the defaults. Top-level sections and struct fields merge;
// map entries (a category, a reason) and the procedure list are replaced
// whole. The result is validated.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", err)
	}
	t, err := parseTables(data, DefaultTables())
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseTables(data []byte, base *Tables) (*Tables, error) {
	t := base
	if t == nil {
		t = &Tables{}
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse tables: %w", err)
	}
	return t, nil
}

// Validate checks completeness: every category and every reason has an entry,
// and nothing else does.
func (t *Tables) Validate() error {
	var errs []error
	if t.Offices.Primary == "" || t.Offices.Oversight == "" {
		errs = append(errs, errors.New("offices.primary and offices.oversight are required"))
	}

	b := t.Bands
	for name, v := range map[string]Amount{
		"single_quotation_max":      b.SingleQuotationMax,
		"acknowledgment_over":       b.AcknowledgmentOver,
		"formal_contract_over":      b.FormalContractOver,
		"price_estimate_waiver_max": b.PriceEstimateWaiverMax,
	} {
		if v.IsNegative() {
			errs = append(errs, fmt.Errorf("bands.%s must not be negative", name))
		}
	}
	if !b.AcknowledgmentOver.LessThan(b.FormalContractOver.Decimal) {
		errs = append(errs, errors.New("bands.acknowledgment_over must be below bands.formal_contract_over"))
	}

	for _, ct := range AllContractTypes() {
		e, ok := t.ContractTypes[ct]
		if !ok {
			errs = append(errs, fmt.Errorf("contract_types: missing entry for %d (%s)", ct, ct))
			continue
		}
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("contract_types.%d: name is required", ct))
		}
		if !e.PriceLimit.IsPositive() {
			errs = append(errs, fmt.Errorf("contract_types.%d: price_limit must be positive", ct))
		}
		if e.OfficeThreshold != nil && e.OfficeThreshold.IsNegative() {
			errs = append(errs, fmt.Errorf("contract_types.%d: office_threshold must not be negative", ct))
		}
	}
	for ct := range t.ContractTypes {
		if !ct.IsValid() {
			errs = append(errs, fmt.Errorf("contract_types: unknown category %d", ct))
		}
	}

	for _, r := range AllSpecialReasons() {
		e, ok := t.Reasons[r]
		if !ok {
			errs = append(errs, fmt.Errorf("reasons: missing entry for %d", r))
			continue
		}
		if e.Label == "" || e.Document == "" {
			errs = append(errs, fmt.Errorf("reasons.%d: label and document are required", r))
		}
	}
	for r := range t.Reasons {
		if r.IsNone() || !r.IsValid() {
			errs = append(errs, fmt.Errorf("reasons: unknown reason %d", r))
		}
	}

	if len(t.Procedure) == 0 {
		errs = append(errs, errors.New("procedure must list at least one step"))
	}
	for i, step := range t.Procedure {
		if step.Title == "" {
			errs = append(errs, fmt.Errorf("procedure[%d]: title is required", i))
		}
	}
	if t.Referral.Title == "" {
		errs = append(errs, errors.New("referral.title is required"))
	}

	if err := errors.Join(errs...); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "invalid determination tables")
	}
	return nil
}

func (t *Tables) clone() *Tables {
	c := *t
	c.ContractTypes = maps.Clone(t.ContractTypes)
	for ct, e := range c.ContractTypes {
		if e.OfficeThreshold != nil {
			v := *e.OfficeThreshold
			e.OfficeThreshold = &v
			c.ContractTypes[ct] = e
		}
	}
	c.Reasons = maps.Clone(t.Reasons)
	c.Procedure = slices.Clone(t.Procedure)
	return &c
}

// Marshal renders the tables as YAML.
func (t *Tables) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}

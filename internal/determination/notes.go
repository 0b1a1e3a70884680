package determination

// NoteKind classifies an advisory note so presenters can group or style it.
type NoteKind string

const (
	NoteContractForm  NoteKind = "contract_form"
	NoteCompetition   NoteKind = "competition"
	NotePriceEstimate NoteKind = "price_estimate"
	NoteJustification NoteKind = "justification"
	NoteDisclosure    NoteKind = "disclosure"
	NoteEmergency     NoteKind = "emergency"
	NoteReasonDetail  NoteKind = "reason_detail"
	NoteDocumentation NoteKind = "documentation"
	NoteLegalBasis    NoteKind = "legal_basis"
)

// Note is one advisory line. Text may contain **emphasis** markers; rendering
// them is the presenter's job (see internal/render).
type Note struct {
	Kind NoteKind
	Text string
}

// noteBuilder accumulates notes in emission order across the independent sub-rules.
type noteBuilder struct {
	notes []Note
}

func (b *noteBuilder) add(kind NoteKind, text string) {
	if text == "" {
		return
	}
	b.notes = append(b.notes, Note{Kind: kind, Text: text})
}

func (b *noteBuilder) build() []Note {
	out := make([]Note, len(b.notes))
	copy(out, b.notes)
	return out
}

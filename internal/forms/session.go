package forms

import (
	"sort"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

// Session is the ephemeral progress state of filling one template's form for
// one user. The field list is copied (and sorted) at creation time, so edits
// to the template after the session starts cannot alter the field sequence.
//
// A session walks its fields in ascending (StepNumber, Order), one field at a
// time. It ends either Complete (every field answered) or discarded by an
// explicit cancel; there are no other terminal states. Sessions live only in
// process memory and do not survive a restart.
type Session struct {
	// UserID owns the session and its draft document.
	UserID string
	// TemplateID is the source template.
	TemplateID string
	// DocumentID is the draft created atomically with this session.
	DocumentID string
	// Fields is the immutable, globally ordered field sequence.
	Fields []domain.FormField
	// Step is the current step number (taken from the fields, not assumed 1..n).
	Step int
	// FieldIndex positions the current field within the current step's subsequence.
	FieldIndex int
	// Answers accumulates validated values keyed by field name.
	Answers map[string]string
}

// NewSession builds a session over a copy of the template's fields, sorted by
// (StepNumber, Order), positioned at the first field with an empty answer map.
func NewSession(userID, templateID, documentID string, fields []domain.FormField) *Session {
	fs := make([]domain.FormField, len(fields))
	copy(fs, fields)
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].StepNumber != fs[j].StepNumber {
			return fs[i].StepNumber < fs[j].StepNumber
		}
		return fs[i].Order < fs[j].Order
	})

	s := &Session{
		UserID:     userID,
		TemplateID: templateID,
		DocumentID: documentID,
		Fields:     fs,
		FieldIndex: 0,
		Answers:    make(map[string]string),
	}
	if len(fs) > 0 {
		s.Step = fs[0].StepNumber
	}
	return s
}

// stepFields returns the subsequence of fields belonging to the given step,
// preserving their global order.
func (s *Session) stepFields(step int) []domain.FormField {
	var out []domain.FormField
	for _, f := range s.Fields {
		if f.StepNumber == step {
			out = append(out, f)
		}
	}
	return out
}

// CurrentField returns the field awaiting an answer, or nil when the session
// is complete (or has no fields at all).
func (s *Session) CurrentField() *domain.FormField {
	fields := s.stepFields(s.Step)
	if s.FieldIndex < 0 || s.FieldIndex >= len(fields) {
		return nil
	}
	f := fields[s.FieldIndex]
	return &f
}

// Record stores a validated answer for the current field and advances the
// cursor: next field within the step, else the next step present in the field
// list, else completion. It reports whether another field awaits an answer.
//
// Record must only be called with a value that passed Validate; it performs
// no validation itself.
func (s *Session) Record(value string) (more bool) {
	cur := s.CurrentField()
	if cur == nil {
		return false
	}
	s.Answers[cur.FieldName] = value

	s.FieldIndex++
	if s.FieldIndex < len(s.stepFields(s.Step)) {
		return true
	}

	// Step exhausted: move to the next step number present in the sequence.
	next := 0
	for _, f := range s.Fields {
		if f.StepNumber > s.Step && (next == 0 || f.StepNumber < next) {
			next = f.StepNumber
		}
	}
	if next == 0 {
		// No further steps: mark complete by parking the cursor past the end.
		return false
	}
	s.Step = next
	s.FieldIndex = 0
	return true
}

// Complete reports whether every field has been answered.
func (s *Session) Complete() bool {
	return s.CurrentField() == nil
}

// TotalSteps returns the highest step number in the field sequence.
func (s *Session) TotalSteps() int {
	max := 0
	for _, f := range s.Fields {
		if f.StepNumber > max {
			max = f.StepNumber
		}
	}
	return max
}

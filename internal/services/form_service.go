// Package services – FormService
//
// This file implements the FormService, the orchestrator of the
// conversational form-filling flow. It owns the coupling between the session
// state machine (internal/forms), the template catalog, and the document
// lifecycle: starting a session creates a draft document atomically,
// accepted answers advance the session, completion finalizes the document,
// and cancellation unwinds both.
//
// Each transport (Telegram bot, HTTP) processes one update per user at a
// time, so sessions see a single writer per key and need no extra locking
// beyond the store's.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/forms"
	"github.com/moydoc/go-docgen-backend/internal/repo"
)

// FormService walks users through a template's form one field at a time.
type FormService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store holds in-flight sessions keyed by transport user identity.
	Store forms.Store
	// Templates resolves templates and their field schemas.
	Templates *TemplateService
	// Documents manages the draft/finalize/discard lifecycle.
	Documents *DocumentService
}

// NewFormService constructs a FormService over the given collaborators.
func NewFormService(db *gorm.DB, store forms.Store, tpls *TemplateService, docs *DocumentService) *FormService {
	return &FormService{DB: db, Store: store, Templates: tpls, Documents: docs}
}

// Prompt describes the field the user should answer next.
type Prompt struct {
	// Field is the definition to present (label, hint, required flag).
	Field domain.FormField
	// Step and TotalSteps drive the "[Шаг 2/3]" progress line.
	Step       int
	TotalSteps int
	// Options is the parsed option list for select fields, nil otherwise.
	Options []string
}

// StepResult reports the outcome of one submitted answer.
type StepResult struct {
	// Rejected carries the validation reason when the input was refused;
	// the session state is unchanged and Prompt repeats the same field.
	Rejected string
	// Accepted is the recorded value when the input passed validation.
	Accepted string
	// Done is true once every field is answered; the document is finalized.
	Done bool
	// DocumentID identifies the session's document (draft or, when Done,
	// the generated one).
	DocumentID string
	// Prompt is the next (or repeated) field; nil when Done.
	Prompt *Prompt
}

// promptFor builds the Prompt for the session's current field.
func (s *FormService) promptFor(sess *forms.Session) *Prompt {
	f := sess.CurrentField()
	if f == nil {
		return nil
	}
	p := &Prompt{Field: *f, Step: sess.Step, TotalSteps: sess.TotalSteps()}
	if f.Type == domain.FieldSelect {
		p.Options = f.OptionList()
	}
	return p
}

// Start begins filling templateID for the given user. A draft document is
// created together with the session. If a session is already in flight for
// userKey, the newer action wins: the prior session's draft is discarded and
// the replacement is logged, never silently swallowed.
//
// userKey is the transport identity the session is stored under; userID is
// the account that owns the draft.
func (s *FormService) Start(ctx context.Context, userKey, userID, templateID string) (*Prompt, error) {
	tr := otel.Tracer("services/FormService")
	ctx, span := tr.Start(ctx, "Start",
		trace.WithAttributes(
			attribute.String("template.id", templateID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if prior, ok := s.Store.Get(userKey); ok {
		log.Warn().
			Str("user_key", userKey).
			Str("prior_document_id", prior.DocumentID).
			Str("template_id", templateID).
			Msg("replacing in-flight form session")
		if err := s.Documents.DiscardDraft(ctx, prior.DocumentID); err != nil {
			return nil, err
		}
		s.Store.Delete(userKey)
	}

	tpl, err := s.Templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	doc, err := s.Documents.CreateDraft(ctx, userID, tpl)
	if err != nil {
		return nil, err
	}

	sess := forms.NewSession(userID, tpl.ID, doc.ID, tpl.Fields)
	s.Store.Put(userKey, sess)

	// Popularity is a sort hint only; a failed bump must not break the flow.
	if err := repo.BumpTemplatePopularity(ctx, s.DB, tpl.ID); err != nil {
		log.Warn().Err(err).Str("template_id", tpl.ID).Msg("popularity bump failed")
	}

	return s.promptFor(sess), nil
}

// Session returns the in-flight session for userKey, or ErrNoSession.
func (s *FormService) Session(userKey string) (*forms.Session, error) {
	sess, ok := s.Store.Get(userKey)
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

// Active reports whether userKey has a form session in progress.
func (s *FormService) Active(userKey string) bool {
	_, ok := s.Store.Get(userKey)
	return ok
}

// Submit validates rawInput against the current field. Rejected input leaves
// the session untouched and re-prompts with the reason; accepted input is
// recorded and the cursor advances. When the last field is answered the
// document is finalized and the session discarded.
func (s *FormService) Submit(ctx context.Context, userKey, rawInput string) (*StepResult, error) {
	sess, ok := s.Store.Get(userKey)
	if !ok {
		return nil, ErrNoSession
	}

	tr := otel.Tracer("services/FormService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("document.id", sess.DocumentID),
			attribute.Int("step", sess.Step),
		),
	)
	defer span.End()

	field := sess.CurrentField()
	if field == nil {
		return nil, ErrNoCurrentField
	}

	value, err := forms.Validate(*field, rawInput)
	if err != nil {
		var rej *forms.RejectionError
		if errors.As(err, &rej) {
			return &StepResult{
				Rejected:   rej.Reason,
				DocumentID: sess.DocumentID,
				Prompt:     s.promptFor(sess),
			}, nil
		}
		return nil, err
	}

	return s.accept(ctx, userKey, sess, value)
}

// SelectOption records the option at index for the current select field,
// bypassing free-text validation. An index outside [0, optionCount) or a
// non-select current field is rejected without state change.
func (s *FormService) SelectOption(ctx context.Context, userKey string, index int) (*StepResult, error) {
	sess, ok := s.Store.Get(userKey)
	if !ok {
		return nil, ErrNoSession
	}
	field := sess.CurrentField()
	if field == nil {
		return nil, ErrNoCurrentField
	}
	if field.Type != domain.FieldSelect {
		return nil, ErrNotSelectField
	}
	options := field.OptionList()
	if index < 0 || index >= len(options) {
		return nil, ErrOptionOutOfRange
	}
	return s.accept(ctx, userKey, sess, options[index])
}

// accept records a validated value and advances or completes the session.
func (s *FormService) accept(ctx context.Context, userKey string, sess *forms.Session, value string) (*StepResult, error) {
	more := sess.Record(value)
	res := &StepResult{Accepted: value, DocumentID: sess.DocumentID}

	if more {
		s.Store.Put(userKey, sess)
		res.Prompt = s.promptFor(sess)
		return res, nil
	}

	if err := s.Documents.Finalize(ctx, sess.DocumentID, sess.Answers); err != nil {
		return nil, err
	}
	s.Store.Delete(userKey)
	res.Done = true
	return res, nil
}

// Cancel aborts the in-flight session for userKey, deleting its draft.
// It reports whether a session existed.
func (s *FormService) Cancel(ctx context.Context, userKey string) (bool, error) {
	sess, ok := s.Store.Get(userKey)
	if !ok {
		return false, nil
	}
	if err := s.Documents.DiscardDraft(ctx, sess.DocumentID); err != nil {
		return true, err
	}
	s.Store.Delete(userKey)
	return true, nil
}

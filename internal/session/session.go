// Package session drives a buyer through evaluate / correct / re-evaluate as
// an explicit state machine. The resolver stays stateless; a Session is owned
// by a single caller and is not safe for concurrent use.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/eligibility"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"go.uber.org/zap"
)

var (
	// ErrInvalidTransition is returned when a command is not allowed in the
	// current state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrTooManyAttempts is returned once the correction budget is spent.
	ErrTooManyAttempts = errors.New("too many correction attempts")
	// ErrNoSuchCorrection is returned when ApplyCorrection names a correction
	// the current verdict does not offer.
	ErrNoSuchCorrection = errors.New("no such correction")
)

// State is a step of the wizard.
type State string

const (
	StateAwaitingInput     State = "AwaitingInput"
	StateEvaluated         State = "Evaluated"
	StateCorrectionOffered State = "CorrectionOffered"
	StateResolved          State = "Resolved"
)

// Command names what the caller asked for; it is used in errors and logs.
type Command string

const (
	CommandEvaluate        Command = "Evaluate"
	CommandApplyCorrection Command = "ApplyCorrection"
	CommandSwitchFormula   Command = "SwitchFormula"
	CommandReset           Command = "Reset"
)

// Snapshot is a read-only view of a session after a command.
type Snapshot struct {
	ID       string              `json:"id"`
	State    State               `json:"state"`
	Request  eligibility.Request `json:"request"`
	Quote    loans.Quote         `json:"quote"`
	Verdict  eligibility.Verdict `json:"verdict"`
	Attempts int                 `json:"attempts"`
}

// Session holds one buyer's progress.
type Session struct {
	id          string
	logger      *zap.Logger
	resolver    *eligibility.Resolver
	maxAttempts int

	state    State
	request  eligibility.Request
	quote    loans.Quote
	verdict  eligibility.Verdict
	attempts int
}

// New starts a session in AwaitingInput.
func New(logger *zap.Logger, resolver *eligibility.Resolver) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = eligibility.NewResolver(logger, nil, nil)
	}
	id := uuid.NewString()
	return &Session{
		id:          id,
		logger:      logger.With(zap.String("session", id)),
		resolver:    resolver,
		maxAttempts: constants.MaxCorrectionAttempts,
		state:       StateAwaitingInput,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:       s.id,
		State:    s.state,
		Request:  s.request,
		Quote:    s.quote,
		Verdict:  s.verdict,
		Attempts: s.attempts,
	}
}

// Evaluate runs a fresh request. It is accepted in every state and resets
// the correction budget.
func (s *Session) Evaluate(req eligibility.Request) (Snapshot, error) {
	return s.run(CommandEvaluate, req, 0)
}

// ApplyCorrection re-evaluates with the i-th correction the current verdict
// offers. It is only accepted in CorrectionOffered.
func (s *Session) ApplyCorrection(i int) (Snapshot, error) {
	if s.state != StateCorrectionOffered {
		return s.Snapshot(), s.invalid(CommandApplyCorrection)
	}
	if i < 0 || i >= len(s.verdict.Corrections) {
		return s.Snapshot(), fmt.Errorf("%w: index %d of %d", ErrNoSuchCorrection, i, len(s.verdict.Corrections))
	}
	if err := s.checkBudget(); err != nil {
		return s.Snapshot(), err
	}

	correction := s.verdict.Corrections[i]
	req := s.request
	switch correction.Kind {
	case eligibility.AdjustedDownPayment:
		dp := correction.NewDownPaymentPct
		req.DownPaymentOverride = &dp
	case eligibility.AlternateFormula:
		req.FormulaID = correction.FormulaID
		req.DownPaymentOverride = nil
	}
	return s.run(CommandApplyCorrection, req, s.attempts+1)
}

// ApplySuggested applies the first offered correction.
func (s *Session) ApplySuggested() (Snapshot, error) {
	return s.ApplyCorrection(0)
}

// SwitchFormula re-evaluates the current inputs with another formula. It is
// accepted once a request has been evaluated.
func (s *Session) SwitchFormula(formulaID string) (Snapshot, error) {
	if s.state == StateAwaitingInput {
		return s.Snapshot(), s.invalid(CommandSwitchFormula)
	}
	if err := s.checkBudget(); err != nil {
		return s.Snapshot(), err
	}

	req := s.request
	req.FormulaID = formulaID
	req.DownPaymentOverride = nil
	return s.run(CommandSwitchFormula, req, s.attempts+1)
}

// Reset discards everything and returns to AwaitingInput.
func (s *Session) Reset() Snapshot {
	s.logger.Debug("session reset",
		zap.String("op", "session.Reset"),
		zap.String("from", string(s.state)),
	)
	s.state = StateAwaitingInput
	s.request = eligibility.Request{}
	s.quote = loans.Quote{}
	s.verdict = eligibility.Verdict{}
	s.attempts = 0
	return s.Snapshot()
}

func (s *Session) checkBudget() error {
	if s.attempts >= s.maxAttempts {
		return fmt.Errorf("%w: limit is %d", ErrTooManyAttempts, s.maxAttempts)
	}
	return nil
}

// run evaluates req and moves to the state its verdict implies, recording
// attempts as the spent budget. A failed evaluation leaves the session
// untouched, budget included.
func (s *Session) run(cmd Command, req eligibility.Request, attempts int) (Snapshot, error) {
	quote, verdict, err := s.resolver.Evaluate(req)
	if err != nil {
		s.logger.Debug("session command failed",
			zap.String("op", "session."+string(cmd)),
			zap.Error(err),
		)
		return s.Snapshot(), err
	}

	from := s.state
	s.attempts = attempts
	s.request = req
	s.quote = quote
	s.verdict = verdict
	switch {
	case verdict.Eligible():
		s.state = StateResolved
	case len(verdict.Corrections) > 0:
		s.state = StateCorrectionOffered
	default:
		s.state = StateEvaluated
	}

	s.logger.Debug(fmt.Sprintf("session %s -> %s", from, s.state),
		zap.String("op", "session."+string(cmd)),
		zap.String("formula", req.FormulaID),
		zap.String("status", string(verdict.Status)),
		zap.Int("attempts", s.attempts),
	)
	return s.Snapshot(), nil
}

func (s *Session) invalid(cmd Command) error {
	return fmt.Errorf("%w: %s not allowed in %s", ErrInvalidTransition, cmd, s.state)
}

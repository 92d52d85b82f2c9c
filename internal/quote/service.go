package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Mode selects where submissions are sent.
type Mode string

const (
	// ModeFixed posts every lead to the configured endpoint.
	ModeFixed Mode = "fixed"
	// ModeOperator posts to the webhook URL typed into the form.
	ModeOperator Mode = "operator"
)

// ParseMode converts a configuration value into a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeFixed, "":
		return ModeFixed, nil
	case ModeOperator:
		return ModeOperator, nil
	}
	return "", fmt.Errorf("quote: unknown webhook mode %q", value)
}

// Status summarises how a submit ended.
type Status string

const (
	StatusSent     Status = "sent"
	StatusReceived Status = "received"
	StatusInvalid  Status = "invalid"
	StatusFailed   Status = "failed"
	StatusBusy     Status = "busy"
)

// User facing notices.
const (
	MessageFixFields = "Please fix the highlighted fields."
	MessageSent      = "Quote request sent! We'll get back to you with a custom quote within 24 hours."
	MessageReceived  = "Quote request received! Our team will be in touch within 24 hours."
	MessageFailed    = "Sorry, we couldn't send your request. Please try again or call us on 1300 TRUCK BED."
	MessageBusy      = "Your quote request is already being sent. Please wait a moment."
)

// Result describes a finished submit.
type Result struct {
	Status  Status
	ID      string
	Payload *Payload
	Receipt Receipt
}

// Recorder receives submit and dispatch observations.
type Recorder interface {
	QuoteSubmitted(status string)
	WebhookDispatched(statusCode int, elapsed time.Duration)
}

// LeadNotifier is told about every lead that left the building.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, id string, payload Payload) error
}

// ServiceParams collects Service dependencies.
type ServiceParams struct {
	Dispatcher Dispatcher
	Guard      Guard
	Mode       Mode
	Endpoint   string
	Timeout    time.Duration
	Logger     *slog.Logger
	Recorder   Recorder
	Notifier   LeadNotifier
	// FingerprintKey keys the email hash written to logs.
	FingerprintKey []byte
	Now            func() time.Time
}

// Service runs the submit flow.
type Service struct {
	dispatcher Dispatcher
	guard      Guard
	mode       Mode
	endpoint   string
	timeout    time.Duration
	logger     *slog.Logger
	recorder   Recorder
	notifier   LeadNotifier
	fpKey      []byte
	now        func() time.Time
}

// NewService constructs a Service with defaults for anything left unset.
func NewService(params ServiceParams) *Service {
	svc := &Service{
		dispatcher: params.Dispatcher,
		guard:      params.Guard,
		mode:       params.Mode,
		endpoint:   params.Endpoint,
		timeout:    params.Timeout,
		logger:     params.Logger,
		recorder:   params.Recorder,
		notifier:   params.Notifier,
		fpKey:      params.FingerprintKey,
		now:        params.Now,
	}
	if svc.guard == nil {
		svc.guard = NewMemoryGuard()
	}
	if svc.mode == "" {
		svc.mode = ModeFixed
	}
	if svc.endpoint == "" {
		svc.endpoint = DefaultWebhookURL
	}
	if svc.timeout <= 0 {
		svc.timeout = DefaultDispatchTimeout
	}
	if svc.dispatcher == nil {
		// Operator mode posts wherever a visitor points it, so internal
		// addresses are off limits.
		if svc.mode == ModeOperator {
			svc.dispatcher = NewPublicWebhookDispatcher(svc.timeout)
		} else {
			svc.dispatcher = NewWebhookDispatcher(nil)
		}
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// Mode reports the deployment variant.
func (s *Service) Mode() Mode {
	return s.mode
}

// CollectsWebhook reports whether the form shows the webhook URL field.
func (s *Service) CollectsWebhook() bool {
	return s.mode == ModeOperator
}

// Submit validates state and, when valid, dispatches it. key identifies the
// submitter for the in-progress guard. The returned state is what the form
// shows next; the error is one of *ValidationError, *DispatchError or
// ErrSubmissionInProgress.
func (s *Service) Submit(ctx context.Context, key string, state FormState) (FormState, Result, error) {
	token, acquired, err := s.guard.TryAcquire(ctx, key)
	if err != nil {
		return state, Result{}, fmt.Errorf("quote: acquire submit guard: %w", err)
	}
	if !acquired {
		s.record(StatusBusy)
		return state.WithNotice(Notice{Kind: NoticeWarning, Message: MessageBusy}), Result{Status: StatusBusy}, ErrSubmissionInProgress
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn("release submit guard", slog.Any("error", err))
		}
	}()

	req := state.Values
	if s.mode != ModeOperator {
		req.WebhookURL = ""
	}

	if errs := Validate(req); len(errs) > 0 {
		s.record(StatusInvalid)
		next := state.withErrors(errs, Notice{Kind: NoticeWarning, Message: MessageFixFields})
		return next, Result{Status: StatusInvalid}, &ValidationError{Fields: errs}
	}

	req = req.Normalize()
	payload := NewPayload(req, s.now())
	result := Result{ID: uuid.NewString(), Payload: &payload}
	logger := s.logger.With(slog.String("submission_id", result.ID), slog.String("lead", Fingerprint(s.fpKey, payload.Email)))

	endpoint := s.endpoint
	if s.mode == ModeOperator {
		endpoint = req.WebhookURL
		if endpoint == "" {
			logger.Info("quote received without webhook")
			result.Status = StatusReceived
			s.record(StatusReceived)
			return state.reset(true, Notice{Kind: NoticeSuccess, Message: MessageReceived}), result, nil
		}
	}

	// The visitor leaving must not abort a request that is already on the wire.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	start := time.Now()
	receipt := s.dispatcher.Dispatch(dctx, endpoint, payload)
	elapsed := time.Since(start)
	result.Receipt = receipt
	if s.recorder != nil && receipt.Outcome == DispatchSucceeded {
		s.recorder.WebhookDispatched(receipt.StatusCode, elapsed)
	}

	if receipt.Outcome != DispatchSucceeded {
		cause := receipt.Err
		if cause == nil {
			cause = errors.New("dispatch did not complete")
		}
		logger.Error("quote dispatch failed", slog.Any("error", cause), slog.Duration("elapsed", elapsed))
		result.Status = StatusFailed
		s.record(StatusFailed)
		return state.WithNotice(Notice{Kind: NoticeError, Message: MessageFailed}), result, &DispatchError{Err: cause}
	}

	if receipt.StatusCode >= 400 {
		// Still a success for the visitor; the webhook owner has to look.
		logger.Warn("webhook answered with error status", slog.Int("status", receipt.StatusCode))
	} else {
		logger.Info("quote dispatched", slog.Int("status", receipt.StatusCode), slog.Duration("elapsed", elapsed))
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyLead(context.WithoutCancel(ctx), result.ID, payload); err != nil {
			logger.Warn("queue lead notification", slog.Any("error", err))
		}
	}

	result.Status = StatusSent
	s.record(StatusSent)
	return state.reset(s.mode == ModeOperator, Notice{Kind: NoticeSuccess, Message: MessageSent}), result, nil
}

func (s *Service) record(status Status) {
	if s.recorder != nil {
		s.recorder.QuoteSubmitted(string(status))
	}
}

package recovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/rpcpulse/internal/core/domain"
	"github.com/vietddude/rpcpulse/internal/health"
	"github.com/vietddude/rpcpulse/internal/metrics"
)

// Ports are the caller-injected hooks the orchestrator drives. All of
// them are optional.
type Ports struct {
	// OnRetry re-executes the operation that originally failed. When
	// nil, the retry action is skipped entirely and the orchestrator
	// falls through to the next automatic action.
	OnRetry func(ctx context.Context) error

	// OnSwitchEndpoint is notified when a failover target was selected.
	OnSwitchEndpoint func(to *domain.Endpoint)

	// OnRecovered is notified once with the final result when an
	// automatic action succeeded.
	OnRecovered func(result Result)
}

// AttemptSink receives every recorded recovery attempt, e.g. for
// persistence. Called synchronously after each attempt.
type AttemptSink func(ctx context.Context, attempt domain.RecoveryAttempt)

// Request describes one error to recover from.
type Request struct {
	Err         error
	ContextHint string
	// Current is the endpoint the error came from, if known; the
	// failover selector excludes it from the candidate pool.
	Current    *domain.Endpoint
	Candidates []*domain.Endpoint
}

// Result is the final outcome of one recovery session.
type Result struct {
	Recovered bool                     `json:"recovered"`
	Category  domain.ErrorCategory     `json:"category"`
	Message   domain.UserMessage       `json:"message"`
	Attempts  []domain.RecoveryAttempt `json:"attempts"`
}

// Orchestrator coordinates a recovery session: classify the error,
// build the message, walk the automatic actions in catalog order and
// stop at the first one that succeeds. It never returns an error; an
// unrecoverable situation is Recovered=false with the message left for
// the caller to surface.
type Orchestrator struct {
	retryCfg RetryConfig
	gate     *ConsentGate
	ports    Ports
	sink     AttemptSink
	log      *slog.Logger
}

// NewOrchestrator creates an orchestrator with the given retry policy,
// consent gate and caller ports.
func NewOrchestrator(retryCfg RetryConfig, gate *ConsentGate, ports Ports) *Orchestrator {
	if gate == nil {
		gate = NewConsentGate(nil, 0)
	}
	return &Orchestrator{
		retryCfg: retryCfg,
		gate:     gate,
		ports:    ports,
		log:      slog.With("component", "recovery"),
	}
}

// SetAttemptSink registers the attempt persistence hook.
func (o *Orchestrator) SetAttemptSink(sink AttemptSink) {
	o.sink = sink
}

// Recover runs one recovery session for the given error.
func (o *Orchestrator) Recover(ctx context.Context, req Request) Result {
	category := Classify(req.Err, req.ContextHint)
	message := MessageFor(category)

	result := Result{
		Category: category,
		Message:  message,
		Attempts: []domain.RecoveryAttempt{},
	}

	for _, action := range message.Actions {
		if !action.Automatic {
			continue
		}
		// Retry without caller-supplied semantics is a no-op; skip it
		// so a later action gets its chance.
		if action.Type == domain.ActionRetry && o.ports.OnRetry == nil {
			continue
		}

		if !o.gate.RequestConsent(ctx, action, message.Body) {
			o.log.Debug("Consent denied, skipping action", "action", action.Type)
			continue
		}

		succeeded, detail := o.execute(ctx, action, req)
		result.Attempts = append(result.Attempts, o.record(ctx, category, action, succeeded, detail))

		if succeeded {
			result.Recovered = true
			if o.ports.OnRecovered != nil {
				o.ports.OnRecovered(result)
			}
			return result
		}
	}

	return result
}

func (o *Orchestrator) execute(ctx context.Context, action domain.RecoveryAction, req Request) (bool, string) {
	switch action.Type {
	case domain.ActionRetry:
		_, err := Retry(ctx, o.retryCfg, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, o.ports.OnRetry(ctx)
		})
		if err != nil {
			return false, err.Error()
		}
		return true, ""

	case domain.ActionSwitchEndpoint:
		alternative := health.SelectAlternative(req.Current, req.Candidates)
		if alternative == nil {
			return false, "no healthy alternative endpoint"
		}
		if o.ports.OnSwitchEndpoint != nil {
			o.ports.OnSwitchEndpoint(alternative)
		}
		return true, alternative.URL

	default:
		// Guidance actions succeed as delivered; the caller surfaces
		// the message itself.
		return true, ""
	}
}

func (o *Orchestrator) record(ctx context.Context, category domain.ErrorCategory, action domain.RecoveryAction, succeeded bool, detail string) domain.RecoveryAttempt {
	attempt := domain.RecoveryAttempt{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Category:  category,
		Action:    action.Type,
		Succeeded: succeeded,
		Detail:    detail,
	}

	outcome := "failure"
	if succeeded {
		outcome = "success"
	}
	metrics.RecoveryAttemptsTotal.WithLabelValues(string(category), string(action.Type), outcome).Inc()

	if o.sink != nil {
		o.sink(ctx, attempt)
	}
	return attempt
}

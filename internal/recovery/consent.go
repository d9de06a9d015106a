package recovery

import (
	"context"
	"time"

	"github.com/vietddude/rpcpulse/internal/core/domain"
)

// Approver answers an asynchronous consent request. In a full product
// this surfaces a prompt; decided reports the user's answer on the
// returned channel. The gate falls back to approval when no answer
// arrives in time.
type Approver func(action domain.RecoveryAction, reason string) <-chan bool

// ConsentGate mediates actions flagged as requiring explicit consent.
type ConsentGate struct {
	approver Approver
	timeout  time.Duration
}

// NewConsentGate creates a gate with the given approver. A nil approver
// approves everything (the timeout fallback applies immediately).
func NewConsentGate(approver Approver, timeout time.Duration) *ConsentGate {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ConsentGate{approver: approver, timeout: timeout}
}

// RequestConsent resolves the consent decision for an action. Actions
// not requiring consent pass immediately. Otherwise the approver is
// asked; silence past the timeout defaults to approval.
func (g *ConsentGate) RequestConsent(ctx context.Context, action domain.RecoveryAction, reason string) bool {
	if !action.RequiresConsent {
		return true
	}
	if g.approver == nil {
		return true
	}

	select {
	case approved := <-g.approver(action, reason):
		return approved
	case <-time.After(g.timeout):
		return true
	case <-ctx.Done():
		return false
	}
}

package domain

import "time"

// ErrorCategory classifies a raw RPC-layer error. The set is closed;
// the classifier maps everything it cannot place onto CategoryNetwork.
type ErrorCategory string

const (
	CategoryNetwork     ErrorCategory = "network"
	CategoryWallet      ErrorCategory = "wallet"
	CategoryTransaction ErrorCategory = "transaction"
	CategoryBrowser     ErrorCategory = "browser"
)

// ActionType identifies a concrete remediation step.
type ActionType string

const (
	ActionRetry             ActionType = "retry"
	ActionSwitchEndpoint    ActionType = "switch_endpoint"
	ActionInstallWallet     ActionType = "install_wallet"
	ActionUpdateEnvironment ActionType = "update_environment"
	ActionManualGuidance    ActionType = "manual_guidance"
)

// RecoveryAction is one remediation step offered for an error category.
type RecoveryAction struct {
	Type            ActionType `json:"type"`
	Description     string     `json:"description"`
	Automatic       bool       `json:"automatic"`
	RequiresConsent bool       `json:"requires_consent"`
	ActionURL       string     `json:"action_url,omitempty"`
}

// Severity grades a user message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// UserMessage is the user-facing explanation of an error together with
// the ordered remediation steps for its category.
type UserMessage struct {
	Title    string           `json:"title"`
	Body     string           `json:"body"`
	Severity Severity         `json:"severity"`
	Actions  []RecoveryAction `json:"actions"`
}

// RecoveryAttempt records one executed recovery action. The orchestrator
// appends attempts for the lifetime of a single recovery session.
type RecoveryAttempt struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Category  ErrorCategory `json:"category"`
	Action    ActionType    `json:"action"`
	Succeeded bool          `json:"succeeded"`
	Detail    string        `json:"detail,omitempty"`
}

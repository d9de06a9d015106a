package recovery

import "github.com/vietddude/rpcpulse/internal/core/domain"

// MessageFor maps an error category to its user-facing message and the
// ordered list of recovery actions. The mapping is static; callers get
// a fresh copy each time and may mutate it freely.
func MessageFor(category domain.ErrorCategory) domain.UserMessage {
	switch category {
	case domain.CategoryWallet:
		return domain.UserMessage{
			Title:    "Wallet connection problem",
			Body:     "The wallet did not respond or rejected the connection. Reconnecting usually resolves this; if no wallet is installed, one needs to be added to the browser.",
			Severity: domain.SeverityError,
			Actions: []domain.RecoveryAction{
				{
					Type:        domain.ActionRetry,
					Description: "Reconnect the wallet",
					Automatic:   true,
				},
				{
					Type:        domain.ActionInstallWallet,
					Description: "Install a browser wallet",
					ActionURL:   "https://metamask.io/download/",
				},
			},
		}
	case domain.CategoryTransaction:
		return domain.UserMessage{
			Title:    "Transaction failed",
			Body:     "The transaction could not be completed. It may have run out of gas, used a stale nonce, or been rejected by the network.",
			Severity: domain.SeverityError,
			Actions: []domain.RecoveryAction{
				{
					Type:            domain.ActionRetry,
					Description:     "Resubmit the transaction",
					RequiresConsent: true,
				},
				{
					Type:        domain.ActionManualGuidance,
					Description: "Review the transaction parameters and try again",
				},
			},
		}
	case domain.CategoryBrowser:
		return domain.UserMessage{
			Title:    "Browser not supported",
			Body:     "This browser lacks features the application depends on. Updating the browser or switching to a current one is required.",
			Severity: domain.SeverityError,
			Actions: []domain.RecoveryAction{
				{
					Type:        domain.ActionUpdateEnvironment,
					Description: "Update or switch the browser",
				},
			},
		}
	default: // CategoryNetwork
		return domain.UserMessage{
			Title:    "Network connection problem",
			Body:     "The RPC endpoint is unreachable or responding slowly. The request can be retried, or a healthier endpoint selected automatically.",
			Severity: domain.SeverityError,
			Actions: []domain.RecoveryAction{
				{
					Type:        domain.ActionRetry,
					Description: "Retry the request",
					Automatic:   true,
				},
				{
					Type:        domain.ActionSwitchEndpoint,
					Description: "Switch to a healthy endpoint",
					Automatic:   true,
				},
			},
		}
	}
}

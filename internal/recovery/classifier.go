// Package recovery classifies RPC-layer failures and orchestrates
// bounded recovery: retry with backoff, endpoint switch, or
// user-guided remediation with optional consent.
package recovery

import (
	"strings"

	"github.com/vietddude/rpcpulse/internal/core/domain"
)

// Keyword tables for category matching, checked in declaration order.
// Kept as package vars so the exact table is visible to tests.
var (
	networkKeywords     = []string{"network", "rpc", "connection", "timeout"}
	walletKeywords      = []string{"wallet", "metamask", "connector", "account"}
	transactionKeywords = []string{"transaction", "tx", "gas", "nonce"}
	browserKeywords     = []string{"browser", "compatibility", "unsupported"}
)

// Classify maps a raw error to one of the four categories. A context
// hint naming a category wins outright; otherwise the error message is
// matched case-insensitively against the keyword tables, network first.
// Anything unmatched defaults to the network category, which carries
// the most generally applicable recovery actions.
func Classify(err error, contextHint string) domain.ErrorCategory {
	switch domain.ErrorCategory(strings.ToLower(contextHint)) {
	case domain.CategoryNetwork, domain.CategoryWallet, domain.CategoryTransaction, domain.CategoryBrowser:
		return domain.ErrorCategory(strings.ToLower(contextHint))
	}

	if err == nil {
		return domain.CategoryNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, networkKeywords):
		return domain.CategoryNetwork
	case containsAny(msg, walletKeywords):
		return domain.CategoryWallet
	case containsAny(msg, transactionKeywords):
		return domain.CategoryTransaction
	case containsAny(msg, browserKeywords):
		return domain.CategoryBrowser
	default:
		return domain.CategoryNetwork
	}
}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

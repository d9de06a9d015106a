package health

import (
	"math/big"
	"time"

	"github.com/vietddude/rpcpulse/internal/core/domain"
)

// Congestion thresholds. All comparisons are strict; a value exactly on
// a threshold resolves to the lower tier of that dimension, but the
// higher of the two implied levels always wins.
const (
	gasPriceHighGwei   = 100
	gasPriceMediumGwei = 50

	responseHigh   = 5000 * time.Millisecond
	responseMedium = 2000 * time.Millisecond
)

var (
	weiPerGwei       = big.NewInt(1_000_000_000)
	gasHighThreshold = new(big.Int).Mul(big.NewInt(gasPriceHighGwei), weiPerGwei)
	gasMedThreshold  = new(big.Int).Mul(big.NewInt(gasPriceMediumGwei), weiPerGwei)
)

// EstimateCongestion derives a coarse congestion level from the current
// gas price and the average probe response time. Either dimension alone
// can escalate the level.
func EstimateCongestion(gasPriceWei *big.Int, avgResponse time.Duration) domain.CongestionLevel {
	if gasPriceWei == nil {
		gasPriceWei = new(big.Int)
	}

	if gasPriceWei.Cmp(gasHighThreshold) > 0 || avgResponse > responseHigh {
		return domain.CongestionHigh
	}
	if gasPriceWei.Cmp(gasMedThreshold) > 0 || avgResponse > responseMedium {
		return domain.CongestionMedium
	}
	return domain.CongestionLow
}

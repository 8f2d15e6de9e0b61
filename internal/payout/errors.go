package payout

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrNoPayoutDestination = errors.New("no payout destination linked")

const (
	ReasonInsufficientBalance   = "insufficient_balance"
	ReasonBelowMinimumThreshold = "below_minimum_threshold"
)

// DeficitError tells the creator exactly how much money is missing rather
// than a generic rejection.
type DeficitError struct {
	Reason  string
	Deficit decimal.Decimal
}

func (e *DeficitError) Error() string {
	return fmt.Sprintf("%s: $%s more needed", e.Reason, e.Deficit.StringFixed(2))
}

func insufficientBalance(deficit decimal.Decimal) *DeficitError {
	return &DeficitError{Reason: ReasonInsufficientBalance, Deficit: deficit}
}

func belowMinimum(deficit decimal.Decimal) *DeficitError {
	return &DeficitError{Reason: ReasonBelowMinimumThreshold, Deficit: deficit}
}

// Package pricing computes the amount charged for a booking and how it is split.
//
// The processor fee (percentage plus fixed, taken from the total charged) is passed
// through to the payer: the total is the smallest whole-cent amount that leaves the
// subtotal after the fee. The platform withholds its commission on the subtotal plus
// the processor fee, capped at the total, so the venue nets subtotal minus commission.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

var millisPerHour = decimal.NewFromInt(int64(time.Hour / time.Millisecond))

// Policy holds the deployment-specific fee parameters.
type Policy struct {
	ProcessingFeeRate       decimal.Decimal
	ProcessingFeeFixedCents int64
	CommissionRate          decimal.Decimal
}

// NewPolicy validates the parameters. feeRate must be in [0, 1) and commissionRate in [0, 1].
func NewPolicy(feeRate float64, feeFixedCents int64, commissionRate float64) (Policy, error) {
	p := Policy{
		ProcessingFeeRate:       decimal.NewFromFloat(feeRate),
		ProcessingFeeFixedCents: feeFixedCents,
		CommissionRate:          decimal.NewFromFloat(commissionRate),
	}

	if p.ProcessingFeeRate.IsNegative() || p.ProcessingFeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Policy{}, fmt.Errorf("%w: processing fee rate %s", ErrInvalidPolicy, p.ProcessingFeeRate)
	}
	if feeFixedCents < 0 {
		return Policy{}, fmt.Errorf("%w: fixed fee %d", ErrInvalidPolicy, feeFixedCents)
	}
	if p.CommissionRate.IsNegative() || p.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return Policy{}, fmt.Errorf("%w: commission rate %s", ErrInvalidPolicy, p.CommissionRate)
	}

	return p, nil
}

// Engine is stateless apart from its policy.
type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Subtotal is rate × fractional hours, rounded half-up to whole cents.
func (e *Engine) Subtotal(ratePerHourCents int64, d time.Duration) (int64, error) {
	if ratePerHourCents < 0 || d < 0 {
		return 0, ErrNegativeAmount
	}

	amount := decimal.NewFromInt(ratePerHourCents).
		Mul(decimal.NewFromInt(d.Milliseconds())).
		DivRound(millisPerHour, 0)

	return amount.IntPart(), nil
}

// Quote prices a booking of d at ratePerHourCents.
func (e *Engine) Quote(ratePerHourCents int64, d time.Duration) (domain.PricingResult, error) {
	subtotal, err := e.Subtotal(ratePerHourCents, d)
	if err != nil {
		return domain.PricingResult{}, err
	}
	return e.FromSubtotal(subtotal), nil
}

// FromSubtotal applies fee inversion and the commission split. A zero subtotal is free.
func (e *Engine) FromSubtotal(subtotal int64) domain.PricingResult {
	if subtotal <= 0 {
		return domain.PricingResult{}
	}

	total := e.grossUp(subtotal)
	fee := total - subtotal

	commission := decimal.NewFromInt(subtotal).Mul(e.policy.CommissionRate).Floor().IntPart()

	withheld := commission + fee
	if withheld > total {
		withheld = total
	}

	return domain.PricingResult{
		SubtotalCents:         subtotal,
		ProcessingFeeCents:    fee,
		TotalChargeCents:      total,
		CommissionCents:       commission,
		PlatformWithheldCents: withheld,
		VenuePayoutCents:      total - withheld,
	}
}

// grossUp returns ceil((subtotal + fixed) / (1 - rate)) using exact decimal division.
func (e *Engine) grossUp(subtotal int64) int64 {
	numerator := decimal.NewFromInt(subtotal + e.policy.ProcessingFeeFixedCents)
	denominator := decimal.NewFromInt(1).Sub(e.policy.ProcessingFeeRate)

	quotient, remainder := numerator.QuoRem(denominator, 0)
	if !remainder.IsZero() {
		quotient = quotient.Add(decimal.NewFromInt(1))
	}
	return quotient.IntPart()
}

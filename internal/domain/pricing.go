package domain

// PricingResult is the amount to request from the payer and its split, all in cents.
// TotalChargeCents = SubtotalCents + ProcessingFeeCents.
type PricingResult struct {
	SubtotalCents         int64
	ProcessingFeeCents    int64
	TotalChargeCents      int64
	CommissionCents       int64
	PlatformWithheldCents int64
	VenuePayoutCents      int64
}

// IsFree returns true when nothing has to be charged
func (p PricingResult) IsFree() bool {
	return p.TotalChargeCents == 0
}

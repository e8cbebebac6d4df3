package app

// FeeConfig bounds the percentage fee charged on a transfer.
type FeeConfig struct {
	Percent float64
	Min     float64
	Max     float64
}

// ComputeFee returns the fee for a positive source amount:
// clamp(amount * percent/100, min, max). Amount positivity is the caller's
// responsibility; the orchestrator validates before calling.
func ComputeFee(amount float64, cfg FeeConfig) float64 {
	fee := amount * cfg.Percent / 100
	if fee < cfg.Min {
		fee = cfg.Min
	}
	if fee > cfg.Max {
		fee = cfg.Max
	}
	return fee
}

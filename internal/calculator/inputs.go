package calculator

import "math"

// DefaultInputs returns a copy of inputs seeded for mode, the way a form resets
// when the user switches split mode: included participants get 100/n percent,
// one share, or total/n as a fixed amount. Excluded participants and the
// fields of other modes are copied through unchanged.
func DefaultInputs(mode SplitMode, total float64, inputs []SplitInput) []SplitInput {
	out := make([]SplitInput, len(inputs))
	copy(out, inputs)

	included := 0
	for _, in := range inputs {
		if in.Included {
			included++
		}
	}
	if included == 0 {
		return out
	}

	for i := range out {
		if !out[i].Included {
			continue
		}
		switch mode {
		case SplitPercentage:
			out[i].Percentage = 100 / float64(included)
		case SplitShares:
			out[i].Shares = 1
		case SplitAmount:
			out[i].Amount = total / float64(included)
		}
	}
	return out
}

// ClampPercentage bounds a raw percentage input to [0, 100].
func ClampPercentage(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	return math.Min(p, 100)
}

// ClampAmount bounds a raw amount input to [0, total].
func ClampAmount(amount, total float64) float64 {
	if math.IsNaN(amount) || amount < 0 {
		return 0
	}
	return math.Min(amount, total)
}

// ClampShares bounds a raw share count to at least one whole share.
func ClampShares(shares float64) float64 {
	if math.IsNaN(shares) || shares < 1 {
		return 1
	}
	return math.Floor(shares)
}

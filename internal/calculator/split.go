package calculator

import "fmt"

// SplitMode selects how an expense total is apportioned across participants.
type SplitMode string

const (
	SplitEqual      SplitMode = "equal"
	SplitPercentage SplitMode = "percentage"
	SplitShares     SplitMode = "shares"
	SplitAmount     SplitMode = "amount"
)

// ParseSplitMode converts a raw mode string into a SplitMode.
// An empty string selects SplitEqual.
func ParseSplitMode(s string) (SplitMode, error) {
	switch SplitMode(s) {
	case "":
		return SplitEqual, nil
	case SplitEqual, SplitPercentage, SplitShares, SplitAmount:
		return SplitMode(s), nil
	}
	return "", fmt.Errorf("unknown split mode %q", s)
}

// SplitInput is the caller-held state for one participant of a new expense.
// Only the field matching the active mode is read.
type SplitInput struct {
	MemberID   string
	Included   bool
	Percentage float64
	Shares     float64
	Amount     float64
}

// Split is the computed share of one participant.
type Split struct {
	MemberID   string
	Included   bool
	Amount     float64
	Percentage float64
	Shares     float64
}

// ComputeSplit apportions total across the included inputs using mode.
//
// The result has one entry per input, in input order. Excluded participants are
// always zeroed. With no included participant, or a non-positive total, every
// entry is zeroed. Percentage, shares and amount modes fall back to an equal
// split when their inputs sum to zero. Amounts are not rounded.
//
// inputs is never modified.
func ComputeSplit(total float64, inputs []SplitInput, mode SplitMode) []Split {
	splits := make([]Split, len(inputs))
	included := 0
	for i, in := range inputs {
		splits[i] = Split{MemberID: in.MemberID, Included: in.Included}
		if in.Included {
			included++
		}
	}

	if included == 0 || total <= 0 {
		return splits
	}

	switch mode {
	case SplitPercentage:
		percentageSplit(total, inputs, splits, included)
	case SplitShares:
		sharesSplit(total, inputs, splits, included)
	case SplitAmount:
		amountSplit(inputs, splits, total, included)
	default:
		equalSplit(total, splits, included)
	}
	return splits
}

func equalSplit(total float64, splits []Split, included int) {
	perPerson := total / float64(included)
	percentage := 100 / float64(included)
	for i := range splits {
		if !splits[i].Included {
			continue
		}
		splits[i].Amount = perPerson
		splits[i].Percentage = percentage
		splits[i].Shares = 1
	}
}

func percentageSplit(total float64, inputs []SplitInput, splits []Split, included int) {
	var sum float64
	for _, in := range inputs {
		if in.Included {
			sum += in.Percentage
		}
	}
	if sum <= 0 {
		equalSplit(total, splits, included)
		return
	}

	for i, in := range inputs {
		if !in.Included {
			continue
		}
		splits[i].Amount = in.Percentage / 100 * total
		splits[i].Percentage = in.Percentage
		splits[i].Shares = 1
	}
}

// shareCount treats an unset share count as one share.
func shareCount(in SplitInput) float64 {
	if in.Shares == 0 {
		return 1
	}
	return in.Shares
}

func sharesSplit(total float64, inputs []SplitInput, splits []Split, included int) {
	var totalShares float64
	for _, in := range inputs {
		if in.Included {
			totalShares += shareCount(in)
		}
	}
	if totalShares <= 0 {
		equalSplit(total, splits, included)
		return
	}

	for i, in := range inputs {
		if !in.Included {
			continue
		}
		shares := shareCount(in)
		splits[i].Amount = shares / totalShares * total
		splits[i].Percentage = shares / totalShares * 100
		splits[i].Shares = shares
	}
}

func amountSplit(inputs []SplitInput, splits []Split, total float64, included int) {
	var sum float64
	for _, in := range inputs {
		if in.Included {
			sum += in.Amount
		}
	}
	if sum <= 0 {
		equalSplit(total, splits, included)
		return
	}

	for i, in := range inputs {
		if !in.Included {
			continue
		}
		splits[i].Amount = in.Amount
		splits[i].Percentage = in.Amount / sum * 100
		splits[i].Shares = 1
	}
}

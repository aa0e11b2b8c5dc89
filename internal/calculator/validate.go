package calculator

import (
	"fmt"
	"math"
)

// SplitTolerance is the largest accepted gap between an expense total and the
// sum of its included split amounts.
const SplitTolerance = 0.01

const (
	MsgNoParticipants = "Please select at least one user to be involved in this expense."
	msgSplitMismatch  = "Split amounts (%.2f) must add up to the expense total (%.2f)."
)

// ValidateSplit checks a computed split before submission and returns the
// user-facing problems found. An empty result means the split can be saved.
func ValidateSplit(total float64, splits []Split) []string {
	var sum float64
	included := 0
	for _, s := range splits {
		if !s.Included {
			continue
		}
		included++
		sum += s.Amount
	}

	if included == 0 {
		return []string{MsgNoParticipants}
	}

	var msgs []string
	if math.Abs(total-sum) >= SplitTolerance {
		msgs = append(msgs, fmt.Sprintf(msgSplitMismatch, sum, total))
	}
	return msgs
}

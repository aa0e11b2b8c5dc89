package calculator

import (
	"math"
	"testing"
)

func included(ids ...string) []SplitInput {
	inputs := make([]SplitInput, len(ids))
	for i, id := range ids {
		inputs[i] = SplitInput{MemberID: id, Included: true}
	}
	return inputs
}

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        float64
		inputs       []SplitInput
		mode         SplitMode
		validateFunc func(t *testing.T, splits []Split)
	}{
		{
			name:   "equal split across four",
			total:  1200,
			inputs: included("M1", "M2", "M3", "M4"),
			mode:   SplitEqual,
			validateFunc: func(t *testing.T, splits []Split) {
				for _, s := range splits {
					if s.Amount != 300 {
						t.Errorf("%s amount = %v, want 300", s.MemberID, s.Amount)
					}
					if s.Percentage != 25 {
						t.Errorf("%s percentage = %v, want 25", s.MemberID, s.Percentage)
					}
					if s.Shares != 1 {
						t.Errorf("%s shares = %v, want 1", s.MemberID, s.Shares)
					}
				}
			},
		},
		{
			name:  "percentage split",
			total: 500,
			inputs: []SplitInput{
				{MemberID: "Alice", Included: true, Percentage: 60},
				{MemberID: "Bob", Included: true, Percentage: 40},
			},
			mode: SplitPercentage,
			validateFunc: func(t *testing.T, splits []Split) {
				want := []float64{300, 200}
				for i, s := range splits {
					if math.Abs(s.Amount-want[i]) > 0.01 {
						t.Errorf("%s amount = %v, want %v", s.MemberID, s.Amount, want[i])
					}
					if s.Shares != 1 {
						t.Errorf("%s shares = %v, want 1", s.MemberID, s.Shares)
					}
				}
			},
		},
		{
			name:  "shares split with one excluded",
			total: 400,
			inputs: []SplitInput{
				{MemberID: "Alice", Included: true, Shares: 2},
				{MemberID: "Bob", Included: true, Shares: 1},
				{MemberID: "Charlie", Included: true, Shares: 1},
				{MemberID: "Diana", Included: false, Shares: 0},
			},
			mode: SplitShares,
			validateFunc: func(t *testing.T, splits []Split) {
				want := []float64{200, 100, 100, 0}
				for i, s := range splits {
					if math.Abs(s.Amount-want[i]) > 0.01 {
						t.Errorf("%s amount = %v, want %v", s.MemberID, s.Amount, want[i])
					}
				}
				if splits[0].Percentage != 50 {
					t.Errorf("Alice percentage = %v, want 50", splits[0].Percentage)
				}
			},
		},
		{
			name:  "unset shares count as one",
			total: 90,
			inputs: []SplitInput{
				{MemberID: "Alice", Included: true, Shares: 0},
				{MemberID: "Bob", Included: true, Shares: 2},
			},
			mode: SplitShares,
			validateFunc: func(t *testing.T, splits []Split) {
				if math.Abs(splits[0].Amount-30) > 0.01 {
					t.Errorf("Alice amount = %v, want 30", splits[0].Amount)
				}
				if math.Abs(splits[1].Amount-60) > 0.01 {
					t.Errorf("Bob amount = %v, want 60", splits[1].Amount)
				}
			},
		},
		{
			name:  "amount split keeps amounts and derives percentages",
			total: 100,
			inputs: []SplitInput{
				{MemberID: "Alice", Included: true, Amount: 75},
				{MemberID: "Bob", Included: true, Amount: 25},
			},
			mode: SplitAmount,
			validateFunc: func(t *testing.T, splits []Split) {
				if splits[0].Amount != 75 || splits[1].Amount != 25 {
					t.Errorf("amounts = %v, %v, want 75, 25", splits[0].Amount, splits[1].Amount)
				}
				if splits[0].Percentage != 75 || splits[1].Percentage != 25 {
					t.Errorf("percentages = %v, %v, want 75, 25", splits[0].Percentage, splits[1].Percentage)
				}
			},
		},
		{
			name:   "percentage with nothing set falls back to equal",
			total:  90,
			inputs: included("Alice", "Bob", "Charlie"),
			mode:   SplitPercentage,
			validateFunc: func(t *testing.T, splits []Split) {
				for _, s := range splits {
					if s.Amount != 30 {
						t.Errorf("%s amount = %v, want 30", s.MemberID, s.Amount)
					}
				}
			},
		},
		{
			name:   "amount with nothing set falls back to equal",
			total:  50,
			inputs: included("Alice", "Bob"),
			mode:   SplitAmount,
			validateFunc: func(t *testing.T, splits []Split) {
				for _, s := range splits {
					if s.Amount != 25 {
						t.Errorf("%s amount = %v, want 25", s.MemberID, s.Amount)
					}
				}
			},
		},
		{
			name:  "no included participants zeroes everything",
			total: 100,
			inputs: []SplitInput{
				{MemberID: "Alice", Included: false, Percentage: 50, Shares: 3, Amount: 40},
				{MemberID: "Bob", Included: false},
			},
			mode: SplitShares,
			validateFunc: func(t *testing.T, splits []Split) {
				for _, s := range splits {
					if s.Amount != 0 || s.Percentage != 0 || s.Shares != 0 {
						t.Errorf("%s = %+v, want all zero", s.MemberID, s)
					}
				}
			},
		},
		{
			name:   "zero total zeroes everything",
			total:  0,
			inputs: included("Alice", "Bob"),
			mode:   SplitEqual,
			validateFunc: func(t *testing.T, splits []Split) {
				for _, s := range splits {
					if s.Amount != 0 || s.Percentage != 0 || s.Shares != 0 {
						t.Errorf("%s = %+v, want all zero", s.MemberID, s)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := ComputeSplit(tt.total, tt.inputs, tt.mode)
			if len(splits) != len(tt.inputs) {
				t.Fatalf("got %d splits, want %d", len(splits), len(tt.inputs))
			}
			tt.validateFunc(t, splits)
		})
	}
}

func TestComputeSplit_ExcludedAlwaysZero(t *testing.T) {
	inputs := []SplitInput{
		{MemberID: "Alice", Included: true, Percentage: 100, Shares: 4, Amount: 80},
		{MemberID: "Bob", Included: false, Percentage: 30, Shares: 2, Amount: 20},
	}
	for _, mode := range []SplitMode{SplitEqual, SplitPercentage, SplitShares, SplitAmount} {
		t.Run(string(mode), func(t *testing.T) {
			bob := ComputeSplit(80, inputs, mode)[1]
			if bob.Amount != 0 || bob.Percentage != 0 || bob.Shares != 0 {
				t.Errorf("excluded split = %+v, want all zero", bob)
			}
		})
	}
}

func TestComputeSplit_TotalsReconcile(t *testing.T) {
	inputs := []SplitInput{
		{MemberID: "A", Included: true, Percentage: 33.3, Shares: 3},
		{MemberID: "B", Included: true, Percentage: 33.3, Shares: 5},
		{MemberID: "C", Included: true, Percentage: 33.4, Shares: 7},
		{MemberID: "D", Included: false},
	}
	for _, total := range []float64{0.03, 10, 99.99, 1234.56} {
		for _, mode := range []SplitMode{SplitEqual, SplitPercentage, SplitShares} {
			splits := ComputeSplit(total, inputs, mode)
			if msgs := ValidateSplit(total, splits); len(msgs) != 0 {
				t.Errorf("total %v mode %s: %v", total, mode, msgs)
			}
		}
	}
}

func TestComputeSplit_DoesNotMutateInputs(t *testing.T) {
	inputs := []SplitInput{
		{MemberID: "Alice", Included: true, Percentage: 70, Amount: 5},
		{MemberID: "Bob", Included: true, Percentage: 30, Amount: 5},
	}
	before := make([]SplitInput, len(inputs))
	copy(before, inputs)

	ComputeSplit(100, inputs, SplitShares)

	for i := range inputs {
		if inputs[i] != before[i] {
			t.Errorf("input %d changed: %+v -> %+v", i, before[i], inputs[i])
		}
	}
}

func TestParseSplitMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SplitMode
		wantErr bool
	}{
		{"", SplitEqual, false},
		{"equal", SplitEqual, false},
		{"percentage", SplitPercentage, false},
		{"shares", SplitShares, false},
		{"amount", SplitAmount, false},
		{"itemized", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSplitMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSplitMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSplitMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateSplit(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		splits   []Split
		wantMsgs int
	}{
		{
			name:     "no participants",
			total:    10,
			splits:   []Split{{MemberID: "A", Included: false}},
			wantMsgs: 1,
		},
		{
			name:  "within tolerance",
			total: 10,
			splits: []Split{
				{MemberID: "A", Included: true, Amount: 3.333},
				{MemberID: "B", Included: true, Amount: 3.333},
				{MemberID: "C", Included: true, Amount: 3.333},
			},
			wantMsgs: 0,
		},
		{
			name:  "mismatch",
			total: 10,
			splits: []Split{
				{MemberID: "A", Included: true, Amount: 4},
				{MemberID: "B", Included: true, Amount: 4},
			},
			wantMsgs: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := ValidateSplit(tt.total, tt.splits)
			if len(msgs) != tt.wantMsgs {
				t.Errorf("ValidateSplit() = %v, want %d messages", msgs, tt.wantMsgs)
			}
		})
	}
}

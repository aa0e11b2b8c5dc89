package calculator

import (
	"math"
	"testing"
)

func TestPairwiseBalance(t *testing.T) {
	expenses := []ExpenseForBalance{
		equalExpense("e1", "A", 100, "A", "B"),
		equalExpense("e2", "B", 30, "A", "B"),
		equalExpense("e3", "C", 60, "A", "B", "C"),
	}

	tests := []struct {
		a, b string
		want float64
	}{
		{"B", "A", 35},
		{"A", "B", -35},
		{"A", "C", 20},
		{"C", "A", -20},
		{"A", "A", 0},
		{"A", "Z", 0},
	}
	for _, tt := range tests {
		got := PairwiseBalance(expenses, tt.a, tt.b)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("PairwiseBalance(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPairwiseBalance_Antisymmetric(t *testing.T) {
	expenses := []ExpenseForBalance{
		equalExpense("e1", "A", 13.37, "A", "B", "C"),
		equalExpense("e2", "B", 99.1, "A", "C"),
		equalExpense("e3", "C", 0.5, "A", "B"),
	}
	ids := []string{"A", "B", "C"}
	for _, a := range ids {
		for _, b := range ids {
			if PairwiseBalance(expenses, a, b) != -PairwiseBalance(expenses, b, a) {
				t.Errorf("PairwiseBalance(%s, %s) is not the negation of PairwiseBalance(%s, %s)", a, b, b, a)
			}
		}
	}
}

func TestComputePairwiseBalances(t *testing.T) {
	expenses := []ExpenseForBalance{
		equalExpense("e1", "A", 100, "A", "B"),
		equalExpense("e2", "B", 100, "A", "B"),
		equalExpense("e3", "C", 60, "A", "C"),
	}
	got := ComputePairwiseBalances(expenses)
	if len(got) != 1 {
		t.Fatalf("got %+v, want single edge", got)
	}
	if got[0].From != "A" || got[0].To != "C" || math.Abs(got[0].Amount-30) > 0.01 {
		t.Errorf("edge = %+v, want A->C 30", got[0])
	}
}

func TestComputeMemberPositions(t *testing.T) {
	members := []Member{
		{ID: "A", Name: "Alice"},
		{ID: "B", Name: "Bob"},
		{ID: "C", Name: "Charlie"},
		{ID: "D", Name: "Dana"},
	}
	expenses := []ExpenseForBalance{
		equalExpense("e1", "A", 90, "A", "B", "C"),
	}

	positions := ComputeMemberPositions(members, expenses)
	if len(positions) != 4 {
		t.Fatalf("got %d positions, want 4", len(positions))
	}

	want := map[string]float64{"A": 60, "B": -30, "C": -30, "D": 0}
	var sum float64
	for _, p := range positions {
		if math.Abs(p.Balance-want[p.MemberID]) > 0.01 {
			t.Errorf("%s balance = %v, want %v", p.Name, p.Balance, want[p.MemberID])
		}
		sum += p.Balance
	}
	if math.Abs(sum) > 0.01 {
		t.Errorf("positions sum to %v, want 0", sum)
	}
	if positions[0].Name != "Alice" || len(positions[0].OwedBy) != 2 {
		t.Errorf("first position = %+v, want Alice owed by two", positions[0])
	}
}

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name      string
		positions []MemberPosition
		wantEdges int
		wantTotal float64
	}{
		{
			name:      "no balances",
			positions: []MemberPosition{{MemberID: "A"}, {MemberID: "B"}},
			wantEdges: 0,
		},
		{
			name: "one creditor many debtors",
			positions: []MemberPosition{
				{MemberID: "A", Balance: 60},
				{MemberID: "B", Balance: -30},
				{MemberID: "C", Balance: -30},
			},
			wantEdges: 2,
			wantTotal: 60,
		},
		{
			name: "chain collapses",
			positions: []MemberPosition{
				{MemberID: "A", Balance: 50},
				{MemberID: "B", Balance: 0},
				{MemberID: "C", Balance: -50},
			},
			wantEdges: 1,
			wantTotal: 50,
		},
		{
			name: "sub-cent residue ignored",
			positions: []MemberPosition{
				{MemberID: "A", Balance: 0.004},
				{MemberID: "B", Balance: -0.004},
			},
			wantEdges: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := SimplifyDebts(tt.positions)
			if len(edges) != tt.wantEdges {
				t.Fatalf("got %d edges %+v, want %d", len(edges), edges, tt.wantEdges)
			}
			var total float64
			for _, e := range edges {
				total += e.Amount
			}
			if math.Abs(total-tt.wantTotal) > 0.01 {
				t.Errorf("total = %v, want %v", total, tt.wantTotal)
			}
		})
	}
}

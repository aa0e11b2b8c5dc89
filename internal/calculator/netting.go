package calculator

import (
	"math"
	"sort"
)

// netEpsilon absorbs floating point residue left after netting two sums.
const netEpsilon = 1e-9

// PairwiseEdge is what From net-owes To across a set of expenses.
type PairwiseEdge struct {
	From   string
	To     string
	Amount float64
}

// MemberPosition is one member's netted standing inside a group.
type MemberPosition struct {
	MemberID string
	Name     string
	Avatar   string
	Balance  float64 // Positive = owed money, Negative = owes money
	OwesTo   []CounterpartyAmount
	OwedBy   []CounterpartyAmount
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

// debtMatrix returns debts[debtor][creditor]. Every non-payer owed-by entry is
// a debt to the payer; the payer's own entry is their share and is skipped.
func debtMatrix(expenses []ExpenseForBalance) map[string]map[string]float64 {
	debts := make(map[string]map[string]float64)
	for _, e := range expenses {
		if e.PayerID == "" {
			continue
		}
		for _, s := range e.OwedBy {
			if s.MemberID == e.PayerID {
				continue
			}
			if _, ok := debts[s.MemberID]; !ok {
				debts[s.MemberID] = make(map[string]float64)
			}
			debts[s.MemberID][e.PayerID] += s.Amount
		}
	}
	return debts
}

// PairwiseBalance returns what a net-owes b. A negative result means b owes a.
// PairwiseBalance(x, a, b) == -PairwiseBalance(x, b, a) for every input.
func PairwiseBalance(expenses []ExpenseForBalance, a, b string) float64 {
	if a == b {
		return 0
	}
	var aOwesB, bOwesA float64
	for _, e := range expenses {
		for _, s := range e.OwedBy {
			switch {
			case e.PayerID == b && s.MemberID == a:
				aOwesB += s.Amount
			case e.PayerID == a && s.MemberID == b:
				bOwesA += s.Amount
			}
		}
	}
	return aOwesB - bOwesA
}

// ComputePairwiseBalances nets every pair of members that have dealings and
// returns one positive edge per pair, sorted by From then To.
func ComputePairwiseBalances(expenses []ExpenseForBalance) []PairwiseEdge {
	debts := debtMatrix(expenses)

	seen := make(map[[2]string]bool)
	var out []PairwiseEdge
	for debtor, row := range debts {
		for creditor := range row {
			key := [2]string{debtor, creditor}
			if debtor > creditor {
				key = [2]string{creditor, debtor}
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			net := debts[key[0]][key[1]] - debts[key[1]][key[0]]
			switch {
			case net > netEpsilon:
				out = append(out, PairwiseEdge{From: key[0], To: key[1], Amount: net})
			case net < -netEpsilon:
				out = append(out, PairwiseEdge{From: key[1], To: key[0], Amount: -net})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// ComputeMemberPositions nets the group's expenses pairwise and reports, for
// every roster member and every id that appears in an expense, whom they owe
// and who owes them. Positions are sorted by name, then id.
func ComputeMemberPositions(members []Member, expenses []ExpenseForBalance) []MemberPosition {
	roster := NewRoster(members)

	owesTo := make(map[string]map[string]float64)
	owedBy := make(map[string]map[string]float64)
	ids := make(map[string]bool, len(members))
	for _, m := range members {
		ids[m.ID] = true
	}

	for _, pb := range ComputePairwiseBalances(expenses) {
		if owesTo[pb.From] == nil {
			owesTo[pb.From] = make(map[string]float64)
		}
		if owedBy[pb.To] == nil {
			owedBy[pb.To] = make(map[string]float64)
		}
		owesTo[pb.From][pb.To] = pb.Amount
		owedBy[pb.To][pb.From] = pb.Amount
		ids[pb.From] = true
		ids[pb.To] = true
	}

	positions := make([]MemberPosition, 0, len(ids))
	for id := range ids {
		m := roster.Resolve(id)
		p := MemberPosition{
			MemberID: id,
			Name:     m.Name,
			Avatar:   m.Avatar,
			OwesTo:   roster.counterparties(owesTo[id]),
			OwedBy:   roster.counterparties(owedBy[id]),
		}
		for _, c := range p.OwedBy {
			p.Balance += c.Amount
		}
		for _, c := range p.OwesTo {
			p.Balance -= c.Amount
		}
		positions = append(positions, p)
	}

	sort.Slice(positions, func(i, j int) bool {
		return lessByName(positions[i].Name, positions[i].MemberID, positions[j].Name, positions[j].MemberID)
	})
	return positions
}

// SimplifyDebts suggests a short list of payments that settles every position.
//
// Greedy: the largest debtor pays the largest creditor until one of them is
// settled, then the next one is taken. Ties are broken by member id so the
// result is deterministic.
func SimplifyDebts(positions []MemberPosition) []DebtEdge {
	type party struct {
		id     string
		amount float64
	}
	var debtors, creditors []party
	for _, p := range positions {
		switch {
		case p.Balance > SplitTolerance:
			creditors = append(creditors, party{p.MemberID, p.Balance})
		case p.Balance < -SplitTolerance:
			debtors = append(debtors, party{p.MemberID, -p.Balance})
		}
	}
	byAmount := func(ps []party) func(i, j int) bool {
		return func(i, j int) bool {
			if ps[i].amount != ps[j].amount {
				return ps[i].amount > ps[j].amount
			}
			return ps[i].id < ps[j].id
		}
	}
	sort.Slice(debtors, byAmount(debtors))
	sort.Slice(creditors, byAmount(creditors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := math.Min(debtors[i].amount, creditors[j].amount)
		if amount > SplitTolerance {
			edges = append(edges, DebtEdge{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		if debtors[i].amount < SplitTolerance {
			i++
		}
		if creditors[j].amount < SplitTolerance {
			j++
		}
	}
	return edges
}

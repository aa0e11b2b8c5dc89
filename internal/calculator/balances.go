package calculator

import (
	"sort"
	"strings"
)

// Share is one entry of an expense's owed-by list.
type Share struct {
	MemberID string
	Amount   float64
}

// ExpenseForBalance is an expense with the minimal information needed for
// balance calculations.
type ExpenseForBalance struct {
	ID      string
	Amount  float64
	PayerID string
	OwedBy  []Share
}

// Member is a roster entry used only to resolve ids to display data.
type Member struct {
	ID     string
	Name   string
	Avatar string
}

// GroupForBalance identifies a group and carries its roster.
type GroupForBalance struct {
	ID      string
	Name    string
	Members []Member
}

// ExpenseAnalysis is one expense seen from a single subject.
type ExpenseAnalysis struct {
	IsPayer             bool
	AmountOwedBySubject float64
	AmountOwedToSubject float64
	IsInvolved          bool
	PayerID             string
	OwedByOthers        []Share
}

// CounterpartyAmount is an amount attributed to one counterparty of the subject.
type CounterpartyAmount struct {
	MemberID string
	Name     string
	Avatar   string
	Amount   float64
}

// GroupBalanceSummary is the subject's position inside one group.
type GroupBalanceSummary struct {
	GroupID            string
	GroupName          string
	Involved           bool
	ExpensesInvolved   int
	TotalOwedBySubject float64
	TotalOwedToSubject float64
	NetBalance         float64 // Positive = subject is owed money
	SubjectOwes        []CounterpartyAmount
	OwedToSubject      []CounterpartyAmount
}

// ComputeExpenseShare analyzes expense from the point of view of subjectID.
//
// A payer's own owed-by entry is their share of the total, so it never counts
// as something they owe. Everyone else's entries count as owed to the payer.
func ComputeExpenseShare(expense ExpenseForBalance, subjectID string) ExpenseAnalysis {
	isPayer := expense.PayerID == subjectID

	var ownShare, othersOwe float64
	others := make([]Share, 0, len(expense.OwedBy))
	foundOwn := false
	for _, s := range expense.OwedBy {
		if s.MemberID == subjectID {
			if !foundOwn {
				ownShare = s.Amount
				foundOwn = true
			}
			continue
		}
		others = append(others, s)
		othersOwe += s.Amount
	}

	a := ExpenseAnalysis{
		IsPayer:      isPayer,
		PayerID:      expense.PayerID,
		OwedByOthers: others,
	}
	if isPayer {
		a.AmountOwedToSubject = othersOwe
	} else {
		a.AmountOwedBySubject = ownShare
	}
	a.IsInvolved = a.AmountOwedBySubject > 0 || a.AmountOwedToSubject > 0 || isPayer
	return a
}

// AggregateGroupBalances folds ComputeExpenseShare over every expense of a group.
//
// What the subject owes is recorded against the payer of each expense; what
// others owe is recorded per owing member when the subject paid. Counterparty
// ids are resolved through the group roster and fall back to the raw id.
func AggregateGroupBalances(group GroupForBalance, expenses []ExpenseForBalance, subjectID string) GroupBalanceSummary {
	owesTo := make(map[string]float64)
	owedFrom := make(map[string]float64)

	summary := GroupBalanceSummary{
		GroupID:   group.ID,
		GroupName: group.Name,
	}

	for _, expense := range expenses {
		a := ComputeExpenseShare(expense, subjectID)
		if a.IsInvolved {
			summary.ExpensesInvolved++
		}

		if a.AmountOwedBySubject > 0 {
			owesTo[a.PayerID] += a.AmountOwedBySubject
		}
		if a.AmountOwedToSubject > 0 {
			for _, s := range a.OwedByOthers {
				owedFrom[s.MemberID] += s.Amount
			}
		}

		summary.TotalOwedBySubject += a.AmountOwedBySubject
		summary.TotalOwedToSubject += a.AmountOwedToSubject
	}

	roster := NewRoster(group.Members)
	summary.Involved = summary.ExpensesInvolved > 0
	summary.NetBalance = summary.TotalOwedToSubject - summary.TotalOwedBySubject
	summary.SubjectOwes = roster.counterparties(owesTo)
	summary.OwedToSubject = roster.counterparties(owedFrom)
	return summary
}

// Roster resolves member ids to display data.
type Roster map[string]Member

// NewRoster indexes members by id. Later duplicates win.
func NewRoster(members []Member) Roster {
	r := make(Roster, len(members))
	for _, m := range members {
		r[m.ID] = m
	}
	return r
}

// Resolve returns the roster entry for id, or a member named after the id.
func (r Roster) Resolve(id string) Member {
	if m, ok := r[id]; ok && m.Name != "" {
		return m
	}
	m := r[id]
	m.ID = id
	m.Name = id
	return m
}

func (r Roster) counterparties(amounts map[string]float64) []CounterpartyAmount {
	out := make([]CounterpartyAmount, 0, len(amounts))
	for id, amount := range amounts {
		m := r.Resolve(id)
		out = append(out, CounterpartyAmount{
			MemberID: id,
			Name:     m.Name,
			Avatar:   m.Avatar,
			Amount:   amount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return lessByName(out[i].Name, out[i].MemberID, out[j].Name, out[j].MemberID)
	})
	return out
}

// lessByName orders by case-insensitive name, then by id.
func lessByName(nameA, idA, nameB, idB string) bool {
	la, lb := strings.ToLower(nameA), strings.ToLower(nameB)
	if la != lb {
		return la < lb
	}
	return idA < idB
}

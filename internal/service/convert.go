package service

import (
	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIMember(m models.Member) api.Member {
	return api.Member{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		Avatar:   m.Avatar,
		JoinedAt: m.JoinedAt,
		Pending:  m.Pending(),
	}
}

func toAPIMembers(members []models.Member) []api.Member {
	out := make([]api.Member, len(members))
	for i, m := range members {
		out[i] = toAPIMember(m)
	}
	return out
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Avatar:      g.Avatar,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		Members:     toAPIMembers(g.Members),
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	owedBy := make([]api.OwedShare, len(e.OwedBy))
	for i, s := range e.OwedBy {
		owedBy[i] = api.OwedShare{MemberID: s.MemberID, Amount: s.Amount}
	}
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		PayerID:     e.PayerID,
		AddedBy:     e.AddedBy,
		ReceiptURL:  e.ReceiptURL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		OwedBy:      owedBy,
		Drift:       calculator.OwedByDrift(balanceExpense(e)),
	}
}

func toAPICounterparties(in []calculator.CounterpartyAmount) []api.CounterpartyAmount {
	out := make([]api.CounterpartyAmount, len(in))
	for i, c := range in {
		out[i] = api.CounterpartyAmount{
			MemberID: c.MemberID,
			Name:     c.Name,
			Avatar:   c.Avatar,
			Amount:   c.Amount,
		}
	}
	return out
}

func toAPIGroupSummary(s calculator.GroupBalanceSummary, totalExpenses float64) *api.GroupSummary {
	return &api.GroupSummary{
		GroupID:           s.GroupID,
		GroupName:         s.GroupName,
		Involved:          s.Involved,
		ExpensesInvolved:  s.ExpensesInvolved,
		TotalExpenses:     totalExpenses,
		TotalOwedByViewer: s.TotalOwedBySubject,
		TotalOwedToViewer: s.TotalOwedToSubject,
		NetBalance:        s.NetBalance,
		ViewerOwes:        toAPICounterparties(s.SubjectOwes),
		OwedToViewer:      toAPICounterparties(s.OwedToSubject),
	}
}

func toAPICounterpartyBalances(in []calculator.CounterpartyBalance) []api.CounterpartyBalance {
	out := make([]api.CounterpartyBalance, len(in))
	for i, c := range in {
		groups := make([]api.GroupAmount, len(c.Groups))
		for j, g := range c.Groups {
			groups[j] = api.GroupAmount{GroupID: g.GroupID, GroupName: g.GroupName, Amount: g.Amount}
		}
		out[i] = api.CounterpartyBalance{
			MemberID:   c.MemberID,
			Name:       c.Name,
			Avatar:     c.Avatar,
			GroupNames: c.GroupNames,
			Amount:     c.Amount,
			Groups:     groups,
		}
	}
	return out
}

func toAPIInvolvements(in []calculator.CounterpartyInvolvement) []api.CounterpartyInvolvement {
	out := make([]api.CounterpartyInvolvement, len(in))
	for i, c := range in {
		out[i] = api.CounterpartyInvolvement{
			MemberID:          c.MemberID,
			Name:              c.Name,
			GroupNames:        c.GroupNames,
			TotalOwedToViewer: c.TotalOwedToSubject,
			TotalOwedByViewer: c.TotalOwedBySubject,
		}
	}
	return out
}

func toAPIPositions(in []calculator.MemberPosition) []api.MemberPosition {
	out := make([]api.MemberPosition, len(in))
	for i, p := range in {
		out[i] = api.MemberPosition{
			MemberID: p.MemberID,
			Name:     p.Name,
			Avatar:   p.Avatar,
			Balance:  p.Balance,
			OwesTo:   toAPICounterparties(p.OwesTo),
			OwedBy:   toAPICounterparties(p.OwedBy),
		}
	}
	return out
}

func toAPISettlements(in []calculator.DebtEdge) []api.Settlement {
	out := make([]api.Settlement, len(in))
	for i, e := range in {
		out[i] = api.Settlement{From: e.From, To: e.To, Amount: e.Amount}
	}
	return out
}

// balanceExpense converts a stored expense to the calculator's input form.
func balanceExpense(e *models.Expense) calculator.ExpenseForBalance {
	shares := make([]calculator.Share, len(e.OwedBy))
	for i, s := range e.OwedBy {
		shares[i] = calculator.Share{MemberID: s.MemberID, Amount: s.Amount}
	}
	return calculator.ExpenseForBalance{
		ID:      e.ID,
		Amount:  e.Amount,
		PayerID: e.PayerID,
		OwedBy:  shares,
	}
}

func balanceExpenses(expenses []*models.Expense) []calculator.ExpenseForBalance {
	out := make([]calculator.ExpenseForBalance, len(expenses))
	for i, e := range expenses {
		out[i] = balanceExpense(e)
	}
	return out
}

func balanceMembers(members []models.Member) []calculator.Member {
	out := make([]calculator.Member, len(members))
	for i, m := range members {
		out[i] = calculator.Member{ID: m.ID, Name: m.Name, Avatar: m.Avatar}
	}
	return out
}

func balanceGroup(g *models.Group) calculator.GroupForBalance {
	return calculator.GroupForBalance{
		ID:      g.ID,
		Name:    g.Name,
		Members: balanceMembers(g.Members),
	}
}

func splitInputs(in []api.SplitParticipant) []calculator.SplitInput {
	out := make([]calculator.SplitInput, len(in))
	for i, p := range in {
		out[i] = calculator.SplitInput{
			MemberID:   p.MemberID,
			Included:   p.Included,
			Percentage: p.Percentage,
			Shares:     p.Shares,
			Amount:     p.Amount,
		}
	}
	return out
}

func toAPIParticipants(in []calculator.SplitInput) []api.SplitParticipant {
	out := make([]api.SplitParticipant, len(in))
	for i, p := range in {
		out[i] = api.SplitParticipant{
			MemberID:   p.MemberID,
			Included:   p.Included,
			Percentage: p.Percentage,
			Shares:     p.Shares,
			Amount:     p.Amount,
		}
	}
	return out
}

func toAPISplits(in []calculator.Split) []api.Split {
	out := make([]api.Split, len(in))
	for i, s := range in {
		out[i] = api.Split{
			MemberID:   s.MemberID,
			Included:   s.Included,
			Amount:     s.Amount,
			Percentage: s.Percentage,
			Shares:     s.Shares,
		}
	}
	return out
}

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/models"
)

func TestCalculateSplit(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice@example.com", "Alice")

	tests := []struct {
		name         string
		req          *api.CalculateSplitRequest
		wantAmounts  []float64
		wantMessages int
	}{
		{
			name: "equal",
			req: &api.CalculateSplitRequest{Total: 90, Mode: "equal", Participants: []api.SplitParticipant{
				{MemberID: "a", Included: true}, {MemberID: "b", Included: true}, {MemberID: "c", Included: false},
			}},
			wantAmounts: []float64{45, 45, 0},
		},
		{
			name: "percentage",
			req: &api.CalculateSplitRequest{Total: 200, Mode: "percentage", Participants: []api.SplitParticipant{
				{MemberID: "a", Included: true, Percentage: 75}, {MemberID: "b", Included: true, Percentage: 25},
			}},
			wantAmounts: []float64{150, 50},
		},
		{
			name: "shares",
			req: &api.CalculateSplitRequest{Total: 60, Mode: "shares", Participants: []api.SplitParticipant{
				{MemberID: "a", Included: true, Shares: 2}, {MemberID: "b", Included: true, Shares: 1},
			}},
			wantAmounts: []float64{40, 20},
		},
		{
			name: "amount mismatch is reported",
			req: &api.CalculateSplitRequest{Total: 100, Mode: "amount", Participants: []api.SplitParticipant{
				{MemberID: "a", Included: true, Amount: 30}, {MemberID: "b", Included: true, Amount: 30},
			}},
			wantAmounts:  []float64{30, 30},
			wantMessages: 1,
		},
		{
			name: "reset inputs",
			req: &api.CalculateSplitRequest{Total: 100, Mode: "percentage", ResetInputs: true, Participants: []api.SplitParticipant{
				{MemberID: "a", Included: true, Percentage: 10}, {MemberID: "b", Included: true},
			}},
			wantAmounts: []float64{50, 50},
		},
		{
			name: "nobody included",
			req: &api.CalculateSplitRequest{Total: 100, Participants: []api.SplitParticipant{
				{MemberID: "a"},
			}},
			wantAmounts:  []float64{0},
			wantMessages: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := alice.expense.CalculateSplit(context.Background(), connect.NewRequest(tt.req))
			if err != nil {
				t.Fatalf("CalculateSplit failed: %v", err)
			}
			if len(resp.Msg.Splits) != len(tt.wantAmounts) {
				t.Fatalf("expected %d splits, got %d", len(tt.wantAmounts), len(resp.Msg.Splits))
			}
			for i, want := range tt.wantAmounts {
				if !approxEqual(resp.Msg.Splits[i].Amount, want) {
					t.Errorf("split %d = %v, want %v", i, resp.Msg.Splits[i].Amount, want)
				}
			}
			if len(resp.Msg.Messages) != tt.wantMessages {
				t.Errorf("messages = %v, want %d", resp.Msg.Messages, tt.wantMessages)
			}
		})
	}

	_, err := alice.expense.CalculateSplit(context.Background(), connect.NewRequest(&api.CalculateSplitRequest{Total: 10, Mode: "bogus"}))
	expectCode(t, err, connect.CodeInvalidArgument)
}

func TestCreateExpense(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	group := createGroup(t, alice, "Trip", bob)

	resp, err := bob.expense.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		GroupID: group.ID,
		ExpenseInput: api.ExpenseInput{
			Description: " Dinner ",
			Amount:      35,
			Currency:    "eur",
			PayerID:     alice.userID,
		},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	e := resp.Msg.Expense
	if e.ID == "" || e.Description != "Dinner" || e.Currency != "EUR" {
		t.Errorf("unexpected expense: %+v", e)
	}
	if e.AddedBy != bob.userID {
		t.Errorf("added by = %q, want %q", e.AddedBy, bob.userID)
	}
	// No participants: the whole roster splits equally.
	if len(e.OwedBy) != 2 || !approxEqual(e.OwedBy[0].Amount, 17.5) || !approxEqual(e.OwedBy[1].Amount, 17.5) {
		t.Errorf("unexpected owed-by: %+v", e.OwedBy)
	}
	if e.Drift != 0 {
		t.Errorf("drift = %v, want 0", e.Drift)
	}

	got, err := alice.expense.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: e.ID}))
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Msg.Expense.Amount != 35 || len(got.Msg.Expense.OwedBy) != 2 {
		t.Errorf("unexpected stored expense: %+v", got.Msg.Expense)
	}
}

func TestCreateExpenseDefaultCurrency(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice@example.com", "Alice")
	group := createGroup(t, alice, "Solo")

	e := equalExpense(t, alice, group.ID, alice.userID, 12, alice.userID)
	if e.Currency != "USD" {
		t.Errorf("currency = %q, want USD", e.Currency)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	mallory := env.register(t, "mallory@example.com", "Mallory")
	group := createGroup(t, alice, "Trip", bob)

	valid := api.ExpenseInput{Description: "Taxi", Amount: 20, PayerID: alice.userID}

	tests := []struct {
		name   string
		client *clients
		mutate func(in *api.ExpenseInput)
		want   connect.Code
	}{
		{"missing description", alice, func(in *api.ExpenseInput) { in.Description = "" }, connect.CodeInvalidArgument},
		{"zero amount", alice, func(in *api.ExpenseInput) { in.Amount = 0 }, connect.CodeInvalidArgument},
		{"negative amount", alice, func(in *api.ExpenseInput) { in.Amount = -5 }, connect.CodeInvalidArgument},
		{"unknown currency", alice, func(in *api.ExpenseInput) { in.Currency = "XYZ1" }, connect.CodeInvalidArgument},
		{"payer not in group", alice, func(in *api.ExpenseInput) { in.PayerID = mallory.userID }, connect.CodeInvalidArgument},
		{"unknown mode", alice, func(in *api.ExpenseInput) { in.Mode = "thirds" }, connect.CodeInvalidArgument},
		{"participant not in group", alice, func(in *api.ExpenseInput) {
			in.Participants = []api.SplitParticipant{{MemberID: mallory.userID, Included: true}}
		}, connect.CodeInvalidArgument},
		{"nobody included", alice, func(in *api.ExpenseInput) {
			in.Participants = []api.SplitParticipant{{MemberID: alice.userID}, {MemberID: bob.userID}}
		}, connect.CodeInvalidArgument},
		{"amounts do not add up", alice, func(in *api.ExpenseInput) {
			in.Mode = "amount"
			in.Participants = []api.SplitParticipant{
				{MemberID: alice.userID, Included: true, Amount: 5},
				{MemberID: bob.userID, Included: true, Amount: 5},
			}
		}, connect.CodeInvalidArgument},
		{"owed-by does not add up", alice, func(in *api.ExpenseInput) {
			in.OwedBy = []api.OwedShare{{MemberID: alice.userID, Amount: 10}, {MemberID: bob.userID, Amount: 5}}
		}, connect.CodeInvalidArgument},
		{"duplicate owed-by member", alice, func(in *api.ExpenseInput) {
			in.OwedBy = []api.OwedShare{{MemberID: bob.userID, Amount: 10}, {MemberID: bob.userID, Amount: 10}}
		}, connect.CodeInvalidArgument},
		{"not a member", mallory, func(in *api.ExpenseInput) {}, connect.CodePermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := tt.client.expense.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
				GroupID:      group.ID,
				ExpenseInput: in,
			}))
			expectCode(t, err, tt.want)
		})
	}
}

func TestCreateExpenseMismatchMessage(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice@example.com", "Alice")
	group := createGroup(t, alice, "Solo")

	_, err := alice.expense.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID: group.ID,
		ExpenseInput: api.ExpenseInput{
			Description: "Lunch",
			Amount:      10,
			PayerID:     alice.userID,
			OwedBy:      []api.OwedShare{{MemberID: alice.userID, Amount: 9}},
		},
	}))
	expectCode(t, err, connect.CodeInvalidArgument)
	if !strings.Contains(err.Error(), "must add up to the expense total") {
		t.Errorf("error should carry the validation message, got %v", err)
	}
}

func TestCreateExpenseExplicitOwedBy(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	group := createGroup(t, alice, "Trip", bob)

	resp, err := alice.expense.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID: group.ID,
		ExpenseInput: api.ExpenseInput{
			Description: "Groceries",
			Amount:      10,
			PayerID:     alice.userID,
			// Off by less than a cent.
			OwedBy: []api.OwedShare{{MemberID: alice.userID, Amount: 3.33}, {MemberID: bob.userID, Amount: 6.665}},
		},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if !approxEqual(resp.Msg.Expense.Drift, 0.01) {
		t.Errorf("drift = %v, want 0.01", resp.Msg.Expense.Drift)
	}
}

func TestUpdateExpense(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	group := createGroup(t, alice, "Trip", bob)
	e := equalExpense(t, alice, group.ID, alice.userID, 50, alice.userID, bob.userID)

	resp, err := bob.expense.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID: e.ID,
		ExpenseInput: api.ExpenseInput{
			Description: "Hotel",
			Amount:      80,
			PayerID:     bob.userID,
			Mode:        "percentage",
			Participants: []api.SplitParticipant{
				{MemberID: alice.userID, Included: true, Percentage: 25},
				{MemberID: bob.userID, Included: true, Percentage: 75},
			},
		},
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}

	got := resp.Msg.Expense
	if got.ID != e.ID || got.AddedBy != alice.userID || got.CreatedAt != e.CreatedAt {
		t.Errorf("identity fields should be kept: %+v", got)
	}
	if got.Description != "Hotel" || got.PayerID != bob.userID || got.Amount != 80 {
		t.Errorf("unexpected update: %+v", got)
	}
	if len(got.OwedBy) != 2 || !approxEqual(got.OwedBy[0].Amount, 20) || !approxEqual(got.OwedBy[1].Amount, 60) {
		t.Errorf("unexpected owed-by: %+v", got.OwedBy)
	}

	_, err = alice.expense.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID:    "missing",
		ExpenseInput: api.ExpenseInput{Description: "x", Amount: 1, PayerID: alice.userID},
	}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestDeleteExpense(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	mallory := env.register(t, "mallory@example.com", "Mallory")
	group := createGroup(t, alice, "Solo")
	e := equalExpense(t, alice, group.ID, alice.userID, 10, alice.userID)

	_, err := mallory.expense.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: e.ID}))
	expectCode(t, err, connect.CodePermissionDenied)

	if _, err := alice.expense.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: e.ID})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	_, err = alice.expense.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: e.ID}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestListExpensesByMonth(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	group := createGroup(t, alice, "Flat")

	stamps := []time.Time{
		time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 20, 12, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	for i, ts := range stamps {
		err := env.store.CreateExpense(ctx, &models.Expense{
			GroupID:     group.ID,
			Description: "Rent",
			Amount:      float64(10 * (i + 1)),
			Currency:    "USD",
			PayerID:     alice.userID,
			AddedBy:     alice.userID,
			CreatedAt:   ts.Unix(),
			OwedBy:      []models.OwedShare{{MemberID: alice.userID, Amount: float64(10 * (i + 1))}},
		})
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	resp, err := alice.expense.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}

	months := resp.Msg.Months
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %+v", months)
	}
	if months[0].Month != "2025-03" || months[1].Month != "2025-01" {
		t.Errorf("months = %s, %s; want 2025-03, 2025-01", months[0].Month, months[1].Month)
	}
	if months[1].Total != 30 || len(months[1].Expenses) != 2 {
		t.Errorf("january = %+v, want total 30 with 2 expenses", months[1])
	}
	if months[1].Expenses[0].Amount != 20 {
		t.Errorf("newest expense should come first within a month")
	}
	if resp.Msg.Total != 60 {
		t.Errorf("total = %v, want 60", resp.Msg.Total)
	}
}

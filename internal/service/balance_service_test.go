package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
)

func TestGetGroupSummary(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	dave := env.register(t, "dave@example.com", "Dave")
	group := createGroup(t, alice, "Dinner", bob, carol, dave)

	// Alice pays 35.00 split four ways.
	equalExpense(t, alice, group.ID, alice.userID, 35, alice.userID, bob.userID, carol.userID, dave.userID)

	tests := []struct {
		name       string
		viewer     *clients
		wantOwedTo float64
		wantOwedBy float64
		wantNet    float64
	}{
		{"payer", alice, 26.25, 0, 26.25},
		{"participant", bob, 0, 8.75, -8.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.viewer.balance.GetGroupSummary(ctx, connect.NewRequest(&api.GetGroupSummaryRequest{GroupID: group.ID}))
			if err != nil {
				t.Fatalf("GetGroupSummary failed: %v", err)
			}
			s := resp.Msg.Summary
			if !approxEqual(s.TotalOwedToViewer, tt.wantOwedTo) || !approxEqual(s.TotalOwedByViewer, tt.wantOwedBy) || !approxEqual(s.NetBalance, tt.wantNet) {
				t.Errorf("summary = %+v", s)
			}
			if !s.Involved || s.ExpensesInvolved != 1 || s.TotalExpenses != 35 {
				t.Errorf("unexpected involvement: %+v", s)
			}
		})
	}

	resp, err := bob.balance.GetGroupSummary(ctx, connect.NewRequest(&api.GetGroupSummaryRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroupSummary failed: %v", err)
	}
	if owes := resp.Msg.Summary.ViewerOwes; len(owes) != 1 || owes[0].MemberID != alice.userID || owes[0].Name != "Alice" {
		t.Errorf("bob should owe alice, got %+v", owes)
	}
}

func TestGetGroupSummaryNotMember(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice@example.com", "Alice")
	mallory := env.register(t, "mallory@example.com", "Mallory")
	group := createGroup(t, alice, "Trip")

	_, err := mallory.balance.GetGroupSummary(context.Background(), connect.NewRequest(&api.GetGroupSummaryRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodePermissionDenied)

	_, err = alice.balance.GetGroupSummary(context.Background(), connect.NewRequest(&api.GetGroupSummaryRequest{GroupID: "missing"}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestGetDashboard(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")

	trip := createGroup(t, alice, "Trip", bob, carol)
	flat := createGroup(t, bob, "Flat", alice)
	createGroup(t, carol, "Club")

	// Trip: alice is owed 120 by bob and carol.
	equalExpense(t, alice, trip.ID, alice.userID, 180, alice.userID, bob.userID, carol.userID)
	// Flat: alice owes bob 45.
	equalExpense(t, bob, flat.ID, bob.userID, 90, alice.userID, bob.userID)

	resp, err := alice.balance.GetDashboard(ctx, connect.NewRequest(&api.GetDashboardRequest{}))
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	d := resp.Msg

	if len(d.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(d.Groups))
	}
	if !approxEqual(d.TotalOwedToViewer, 120) || !approxEqual(d.TotalOwedByViewer, 45) || !approxEqual(d.NetTotal, 75) {
		t.Errorf("totals = %v / %v / %v, want 120 / 45 / 75", d.TotalOwedToViewer, d.TotalOwedByViewer, d.NetTotal)
	}

	var groupNet float64
	for _, g := range d.Groups {
		groupNet += g.NetBalance
	}
	if !approxEqual(groupNet, d.NetTotal) {
		t.Errorf("net total %v should equal the sum of group nets %v", d.NetTotal, groupNet)
	}

	// Bob owes 60 in Trip and is owed 45 in Flat: net 15 towards alice.
	var bobNet *api.CounterpartyBalance
	for i := range d.OwedToViewer {
		if d.OwedToViewer[i].MemberID == bob.userID {
			bobNet = &d.OwedToViewer[i]
		}
	}
	if bobNet == nil || !approxEqual(bobNet.Amount, 15) || len(bobNet.Groups) != 2 {
		t.Errorf("expected bob to net-owe alice 15 across 2 groups, got %+v", bobNet)
	}
	if len(d.ViewerOwes) != 0 {
		t.Errorf("alice should owe nobody on net, got %+v", d.ViewerOwes)
	}
}

func TestGetDashboardEmpty(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice@example.com", "Alice")

	resp, err := alice.balance.GetDashboard(context.Background(), connect.NewRequest(&api.GetDashboardRequest{}))
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if resp.Msg.NetTotal != 0 || len(resp.Msg.Groups) != 0 {
		t.Errorf("expected an empty dashboard, got %+v", resp.Msg)
	}
}

func TestGetPairwiseBalance(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	group := createGroup(t, alice, "Trip", bob)

	equalExpense(t, alice, group.ID, alice.userID, 100, alice.userID, bob.userID)
	equalExpense(t, bob, group.ID, bob.userID, 30, alice.userID, bob.userID)

	tests := []struct {
		name   string
		viewer *clients
		req    *api.GetPairwiseBalanceRequest
		want   float64
	}{
		{"viewer owes", bob, &api.GetPairwiseBalanceRequest{GroupID: group.ID, OtherMemberID: alice.userID}, 35},
		{"viewer is owed", alice, &api.GetPairwiseBalanceRequest{GroupID: group.ID, OtherMemberID: bob.userID}, -35},
		{"explicit member", alice, &api.GetPairwiseBalanceRequest{GroupID: group.ID, MemberID: bob.userID, OtherMemberID: alice.userID}, 35},
		{"self", alice, &api.GetPairwiseBalanceRequest{GroupID: group.ID, OtherMemberID: alice.userID}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.viewer.balance.GetPairwiseBalance(ctx, connect.NewRequest(tt.req))
			if err != nil {
				t.Fatalf("GetPairwiseBalance failed: %v", err)
			}
			if !approxEqual(resp.Msg.Amount, tt.want) {
				t.Errorf("amount = %v, want %v", resp.Msg.Amount, tt.want)
			}
		})
	}

	_, err := alice.balance.GetPairwiseBalance(ctx, connect.NewRequest(&api.GetPairwiseBalanceRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodeInvalidArgument)
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var errOtherMemberRequired = errors.New("other_member_id required")

// BalanceService implements the Connect BalanceService. All balances are
// computed from the viewer's point of view.
type BalanceService struct {
	store storage.Store
}

// NewBalanceService creates a BalanceService backed by store.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// GetGroupSummary returns what the viewer owes and is owed within one group.
func (s *BalanceService) GetGroupSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupSummary request received", "group_id", req.Msg.GroupID)

	ledger, err := memberLedger(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	summary := calculator.AggregateGroupBalances(balanceGroup(ledger.Group), balanceExpenses(ledger.Expenses), userID)

	slog.Info("GetGroupSummary successful",
		"group_id", ledger.Group.ID,
		"expenses_count", len(ledger.Expenses),
		"net_balance", summary.NetBalance,
	)
	return connect.NewResponse(&api.GetGroupSummaryResponse{
		Summary: toAPIGroupSummary(summary, ledgerTotal(ledger)),
	}), nil
}

// GetDashboard returns the viewer's totals across every group they belong to,
// with per-counterparty breakdowns.
func (s *BalanceService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForMember(ctx, userID)
	if err != nil {
		slog.Error("GetDashboard failed to list groups", "user_id", userID, "error", err)
		return nil, storeError("list groups", err)
	}
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}

	ledgers, err := s.store.LoadLedgers(ctx, ids)
	if err != nil {
		slog.Error("GetDashboard failed to load ledgers", "user_id", userID, "error", err)
		return nil, storeError("load ledgers", err)
	}

	summaries := make([]calculator.GroupBalanceSummary, len(ledgers))
	out := make([]*api.GroupSummary, len(ledgers))
	for i, l := range ledgers {
		summaries[i] = calculator.AggregateGroupBalances(balanceGroup(l.Group), balanceExpenses(l.Expenses), userID)
		out[i] = toAPIGroupSummary(summaries[i], ledgerTotal(l))
	}
	totals := calculator.AggregateAcrossGroups(summaries)

	slog.Info("GetDashboard successful", "user_id", userID, "groups_count", len(ledgers), "net_total", totals.NetTotal)
	return connect.NewResponse(&api.GetDashboardResponse{
		TotalOwedToViewer: totals.TotalOwedToSubject,
		TotalOwedByViewer: totals.TotalOwedBySubject,
		NetTotal:          totals.NetTotal,
		Groups:            out,
		ViewerOwes:        toAPICounterpartyBalances(totals.SubjectOwes),
		OwedToViewer:      toAPICounterpartyBalances(totals.OwedToSubject),
		Involvements:      toAPIInvolvements(totals.Involvements),
	}), nil
}

// GetPairwiseBalance returns what one member net-owes another in a group.
func (s *BalanceService) GetPairwiseBalance(ctx context.Context, req *connect.Request[api.GetPairwiseBalanceRequest]) (*connect.Response[api.GetPairwiseBalanceResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.OtherMemberID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errOtherMemberRequired)
	}

	ledger, err := memberLedger(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	memberID := req.Msg.MemberID
	if memberID == "" {
		memberID = userID
	}
	amount := calculator.PairwiseBalance(balanceExpenses(ledger.Expenses), memberID, req.Msg.OtherMemberID)
	return connect.NewResponse(&api.GetPairwiseBalanceResponse{Amount: amount}), nil
}

func ledgerTotal(l *models.GroupLedger) float64 {
	var total float64
	for _, e := range l.Expenses {
		total += e.Amount
	}
	return calculator.RoundCents(total)
}

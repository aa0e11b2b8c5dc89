package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/text/currency"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const monthLayout = "2006-01"

var (
	errExpenseIDRequired   = errors.New("expense_id required")
	errDescriptionRequired = errors.New("description required")
	errAmountNotPositive   = errors.New("amount must be a positive number")
	errPayerNotMember      = errors.New("payer is not a member of this group")
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store           storage.Store
	defaultCurrency string
}

// NewExpenseService creates an ExpenseService. Expenses created without a
// currency are recorded in defaultCurrency.
func NewExpenseService(store storage.Store, defaultCurrency string) *ExpenseService {
	return &ExpenseService{store: store, defaultCurrency: defaultCurrency}
}

// CalculateSplit previews how a total is apportioned, without saving anything.
// The response carries the participant inputs actually used and any
// validation messages the split would fail with.
func (s *ExpenseService) CalculateSplit(ctx context.Context, req *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error) {
	mode, err := calculator.ParseSplitMode(req.Msg.Mode)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if invalidAmount(req.Msg.Total) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errAmountNotPositive)
	}

	inputs := clampInputs(splitInputs(req.Msg.Participants), mode, req.Msg.Total)
	if req.Msg.ResetInputs {
		inputs = calculator.DefaultInputs(mode, req.Msg.Total, inputs)
	}
	splits := calculator.ComputeSplit(req.Msg.Total, inputs, mode)

	return connect.NewResponse(&api.CalculateSplitResponse{
		Splits:   toAPISplits(splits),
		Inputs:   toAPIParticipants(inputs),
		Messages: calculator.ValidateSplit(req.Msg.Total, splits),
	}), nil
}

// CreateExpense records a new expense in a group the caller belongs to.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"participants", len(req.Msg.Participants),
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID: group.ID,
		AddedBy: userID,
	}
	if err := s.applyInput(group, expense, req.Msg.ExpenseInput); err != nil {
		return nil, err
	}

	// Save to storage (generates ID and timestamps)
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, storeError("create expense", err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense returns one expense of a group the caller belongs to.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}

	expense, _, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense replaces an expense's fields and owed-by list.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, group, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(group, expense, req.Msg.ExpenseInput); err != nil {
		return nil, err
	}
	expense.UpdatedAt = time.Now().Unix()

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, storeError("update expense", err)
	}
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, _, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, storeError("delete expense", err)
	}
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns a group's expenses bucketed by calendar month (UTC),
// newest month first and newest expense first within a month.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", group.ID, "error", err)
		return nil, storeError("list expenses", err)
	}

	slog.Info("ListExpenses successful", "group_id", group.ID, "expenses_count", len(expenses))
	months, total := monthBuckets(expenses)
	return connect.NewResponse(&api.ListExpensesResponse{Months: months, Total: total}), nil
}

// memberExpense loads an expense and the group it belongs to, checking that
// userID is a member of that group.
func (s *ExpenseService) memberExpense(ctx context.Context, expenseID, userID string) (*models.Expense, *models.Group, error) {
	if strings.TrimSpace(expenseID) == "" {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, errExpenseIDRequired)
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, storeError("get expense", err)
	}
	group, err := memberGroup(ctx, s.store, expense.GroupID, userID)
	if err != nil {
		return nil, nil, err
	}
	return expense, group, nil
}

// applyInput validates in against group and copies it onto expense.
func (s *ExpenseService) applyInput(group *models.Group, expense *models.Expense, in api.ExpenseInput) error {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return connect.NewError(connect.CodeInvalidArgument, errDescriptionRequired)
	}
	if invalidAmount(in.Amount) || in.Amount == 0 {
		return connect.NewError(connect.CodeInvalidArgument, errAmountNotPositive)
	}

	code := strings.ToUpper(strings.TrimSpace(in.Currency))
	if code == "" {
		code = s.defaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return invalidArgument("currency %q: %v", code, err)
	}

	if !group.HasMember(in.PayerID) {
		return connect.NewError(connect.CodeInvalidArgument, errPayerNotMember)
	}

	owedBy, err := owedShares(group, in)
	if err != nil {
		return err
	}

	expense.Description = description
	expense.Amount = in.Amount
	expense.Currency = unit.String()
	expense.PayerID = in.PayerID
	expense.ReceiptURL = strings.TrimSpace(in.ReceiptURL)
	expense.OwedBy = owedBy
	return nil
}

// owedShares builds the owed-by list either from explicit shares or by
// running the split engine over the participants. An empty participant list
// splits equally across the whole roster.
func owedShares(group *models.Group, in api.ExpenseInput) ([]models.OwedShare, error) {
	var splits []calculator.Split
	if len(in.OwedBy) > 0 {
		splits = make([]calculator.Split, len(in.OwedBy))
		for i, share := range in.OwedBy {
			if invalidAmount(share.Amount) {
				return nil, invalidArgument("owed amount for %q must not be negative", share.MemberID)
			}
			splits[i] = calculator.Split{MemberID: share.MemberID, Included: true, Amount: share.Amount}
		}
	} else {
		mode, err := calculator.ParseSplitMode(in.Mode)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		inputs := splitInputs(in.Participants)
		if len(inputs) == 0 {
			for _, m := range group.Members {
				inputs = append(inputs, calculator.SplitInput{MemberID: m.ID, Included: true})
			}
		}
		splits = calculator.ComputeSplit(in.Amount, clampInputs(inputs, mode, in.Amount), mode)
	}

	seen := make(map[string]bool, len(splits))
	for _, sp := range splits {
		if !group.HasMember(sp.MemberID) {
			return nil, invalidArgument("%q is not a member of this group", sp.MemberID)
		}
		if seen[sp.MemberID] {
			return nil, invalidArgument("%q appears more than once", sp.MemberID)
		}
		seen[sp.MemberID] = true
	}

	if msgs := calculator.ValidateSplit(in.Amount, splits); len(msgs) > 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New(strings.Join(msgs, " ")))
	}

	var owedBy []models.OwedShare
	for _, sp := range splits {
		if sp.Included {
			owedBy = append(owedBy, models.OwedShare{MemberID: sp.MemberID, Amount: sp.Amount})
		}
	}
	return owedBy, nil
}

// clampInputs bounds the field of mode the way the input fields do.
func clampInputs(inputs []calculator.SplitInput, mode calculator.SplitMode, total float64) []calculator.SplitInput {
	for i := range inputs {
		switch mode {
		case calculator.SplitPercentage:
			inputs[i].Percentage = calculator.ClampPercentage(inputs[i].Percentage)
		case calculator.SplitShares:
			inputs[i].Shares = calculator.ClampShares(inputs[i].Shares)
		case calculator.SplitAmount:
			inputs[i].Amount = calculator.ClampAmount(inputs[i].Amount, total)
		}
	}
	return inputs
}

func invalidAmount(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
}

func monthBuckets(expenses []*models.Expense) ([]api.ExpenseMonth, float64) {
	months := []api.ExpenseMonth{}
	index := make(map[string]int)
	var total float64
	for _, e := range expenses {
		key := time.Unix(e.CreatedAt, 0).UTC().Format(monthLayout)
		i, ok := index[key]
		if !ok {
			i = len(months)
			index[key] = i
			months = append(months, api.ExpenseMonth{Month: key})
		}
		months[i].Expenses = append(months[i].Expenses, toAPIExpense(e))
		months[i].Total += e.Amount
		total += e.Amount
	}
	for i := range months {
		months[i].Total = calculator.RoundCents(months[i].Total)
	}
	return months, calculator.RoundCents(total)
}

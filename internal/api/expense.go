package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = "splitledger.v1.ExpenseService"

const (
	ExpenseServiceCalculateSplitProcedure = "/splitledger.v1.ExpenseService/CalculateSplit"
	ExpenseServiceCreateExpenseProcedure  = "/splitledger.v1.ExpenseService/CreateExpense"
	ExpenseServiceGetExpenseProcedure     = "/splitledger.v1.ExpenseService/GetExpense"
	ExpenseServiceUpdateExpenseProcedure  = "/splitledger.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure  = "/splitledger.v1.ExpenseService/DeleteExpense"
	ExpenseServiceListExpensesProcedure   = "/splitledger.v1.ExpenseService/ListExpenses"
)

// SplitParticipant is the caller's input for one member of a split.
// Only the field matching the split mode is read.
type SplitParticipant struct {
	MemberID   string  `json:"memberId"`
	Included   bool    `json:"included"`
	Percentage float64 `json:"percentage,omitempty"`
	Shares     float64 `json:"shares,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
}

// Split is one member's computed portion.
type Split struct {
	MemberID   string  `json:"memberId"`
	Included   bool    `json:"included"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Shares     float64 `json:"shares"`
}

type OwedShare struct {
	MemberID string  `json:"memberId"`
	Amount   float64 `json:"amount"`
}

type Expense struct {
	ID          string      `json:"id"`
	GroupID     string      `json:"groupId"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
	PayerID     string      `json:"payerId"`
	AddedBy     string      `json:"addedBy"`
	ReceiptURL  string      `json:"receiptUrl,omitempty"`
	CreatedAt   int64       `json:"createdAt"`
	UpdatedAt   int64       `json:"updatedAt"`
	OwedBy      []OwedShare `json:"owedBy"`
	// Drift is the total minus the owed-by sum, rounded to cents. Non-zero
	// drift means the owed-by list does not add up to the total.
	Drift float64 `json:"drift,omitempty"`
}

type CalculateSplitRequest struct {
	Total        float64            `json:"total"`
	Mode         string             `json:"mode"`
	Participants []SplitParticipant `json:"participants"`
	// ResetInputs applies the mode's default inputs before computing, as
	// happens when the user switches split mode.
	ResetInputs bool `json:"resetInputs,omitempty"`
}

type CalculateSplitResponse struct {
	Splits []Split `json:"splits"`
	// Inputs echoes the participant inputs after clamping and defaults.
	Inputs []SplitParticipant `json:"inputs"`
	// Messages lists why the split cannot be saved; empty when it can.
	Messages []string `json:"messages"`
}

// ExpenseInput is shared by create and update. Either OwedBy is given
// verbatim, or Mode and Participants are used to compute it.
type ExpenseInput struct {
	Description  string             `json:"description"`
	Amount       float64            `json:"amount"`
	Currency     string             `json:"currency,omitempty"`
	PayerID      string             `json:"payerId"`
	ReceiptURL   string             `json:"receiptUrl,omitempty"`
	Mode         string             `json:"mode,omitempty"`
	Participants []SplitParticipant `json:"participants,omitempty"`
	OwedBy       []OwedShare        `json:"owedBy,omitempty"`
}

type CreateExpenseRequest struct {
	GroupID string `json:"groupId"`
	ExpenseInput
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
	ExpenseInput
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

// ExpenseMonth groups the expenses created in one calendar month (UTC).
type ExpenseMonth struct {
	// Month is formatted YYYY-MM.
	Month    string     `json:"month"`
	Total    float64    `json:"total"`
	Expenses []*Expense `json:"expenses"`
}

type ListExpensesResponse struct {
	Months []ExpenseMonth `json:"months"`
	// Total is the sum of every expense in the group.
	Total float64 `json:"total"`
}

// ExpenseServiceHandler is implemented by the server side of ExpenseService.
type ExpenseServiceHandler interface {
	CalculateSplit(context.Context, *connect.Request[CalculateSplitRequest]) (*connect.Response[CalculateSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(ExpenseServiceName), serviceHandler{
		ExpenseServiceCalculateSplitProcedure: connect.NewUnaryHandler(ExpenseServiceCalculateSplitProcedure, svc.CalculateSplit, opts...),
		ExpenseServiceCreateExpenseProcedure:  connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...),
		ExpenseServiceGetExpenseProcedure:     connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...),
		ExpenseServiceUpdateExpenseProcedure:  connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...),
		ExpenseServiceDeleteExpenseProcedure:  connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		ExpenseServiceListExpensesProcedure:   connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...),
	}
}

// ExpenseServiceClient is a client for the ExpenseService service.
type ExpenseServiceClient interface {
	ExpenseServiceHandler
}

// NewExpenseServiceClient constructs a client for the ExpenseService service.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = trimBaseURL(baseURL)
	opts = clientOptions(opts)
	return &expenseServiceClient{
		calculateSplit: connect.NewClient[CalculateSplitRequest, CalculateSplitResponse](httpClient, baseURL+ExpenseServiceCalculateSplitProcedure, opts...),
		createExpense:  connect.NewClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		getExpense:     connect.NewClient[GetExpenseRequest, GetExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		updateExpense:  connect.NewClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opts...),
		deleteExpense:  connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		listExpenses:   connect.NewClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
	}
}

type expenseServiceClient struct {
	calculateSplit *connect.Client[CalculateSplitRequest, CalculateSplitResponse]
	createExpense  *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	getExpense     *connect.Client[GetExpenseRequest, GetExpenseResponse]
	updateExpense  *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	deleteExpense  *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	listExpenses   *connect.Client[ListExpensesRequest, ListExpensesResponse]
}

func (c *expenseServiceClient) CalculateSplit(ctx context.Context, req *connect.Request[CalculateSplitRequest]) (*connect.Response[CalculateSplitResponse], error) {
	return c.calculateSplit.CallUnary(ctx, req)
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

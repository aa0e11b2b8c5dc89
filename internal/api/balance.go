package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// BalanceServiceName is the fully-qualified name of the BalanceService service.
const BalanceServiceName = "splitledger.v1.BalanceService"

const (
	BalanceServiceGetGroupSummaryProcedure    = "/splitledger.v1.BalanceService/GetGroupSummary"
	BalanceServiceGetDashboardProcedure       = "/splitledger.v1.BalanceService/GetDashboard"
	BalanceServiceGetPairwiseBalanceProcedure = "/splitledger.v1.BalanceService/GetPairwiseBalance"
)

// GroupSummary is the viewer's position inside one group.
// NetBalance is positive when the viewer is owed money.
type GroupSummary struct {
	GroupID           string               `json:"groupId"`
	GroupName         string               `json:"groupName"`
	Involved          bool                 `json:"involved"`
	ExpensesInvolved  int                  `json:"expensesInvolved"`
	TotalExpenses     float64              `json:"totalExpenses"`
	TotalOwedByViewer float64              `json:"totalOwedByViewer"`
	TotalOwedToViewer float64              `json:"totalOwedToViewer"`
	NetBalance        float64              `json:"netBalance"`
	ViewerOwes        []CounterpartyAmount `json:"viewerOwes"`
	OwedToViewer      []CounterpartyAmount `json:"owedToViewer"`
}

// GroupAmount is a counterparty's net amount inside one group, positive when
// the counterparty owes the viewer.
type GroupAmount struct {
	GroupID   string  `json:"groupId"`
	GroupName string  `json:"groupName"`
	Amount    float64 `json:"amount"`
}

// CounterpartyBalance is a member with a non-zero net across the viewer's groups.
type CounterpartyBalance struct {
	MemberID   string        `json:"memberId"`
	Name       string        `json:"name"`
	Avatar     string        `json:"avatar,omitempty"`
	GroupNames []string      `json:"groupNames"`
	Amount     float64       `json:"amount"`
	Groups     []GroupAmount `json:"groups"`
}

// CounterpartyInvolvement is every member the viewer has dealings with,
// including those whose dealings net to zero.
type CounterpartyInvolvement struct {
	MemberID          string   `json:"memberId"`
	Name              string   `json:"name"`
	GroupNames        []string `json:"groupNames"`
	TotalOwedToViewer float64  `json:"totalOwedToViewer"`
	TotalOwedByViewer float64  `json:"totalOwedByViewer"`
}

type GetGroupSummaryRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupSummaryResponse struct {
	Summary *GroupSummary `json:"summary"`
}

type GetDashboardRequest struct{}

type GetDashboardResponse struct {
	TotalOwedToViewer float64                   `json:"totalOwedToViewer"`
	TotalOwedByViewer float64                   `json:"totalOwedByViewer"`
	NetTotal          float64                   `json:"netTotal"`
	Groups            []*GroupSummary           `json:"groups"`
	ViewerOwes        []CounterpartyBalance     `json:"viewerOwes"`
	OwedToViewer      []CounterpartyBalance     `json:"owedToViewer"`
	Involvements      []CounterpartyInvolvement `json:"involvements"`
}

type GetPairwiseBalanceRequest struct {
	GroupID string `json:"groupId"`
	// MemberID defaults to the viewer.
	MemberID      string `json:"memberId,omitempty"`
	OtherMemberID string `json:"otherMemberId"`
}

type GetPairwiseBalanceResponse struct {
	// Amount is what MemberID net-owes OtherMemberID; negative when
	// OtherMemberID owes MemberID.
	Amount float64 `json:"amount"`
}

// BalanceServiceHandler is implemented by the server side of BalanceService.
type BalanceServiceHandler interface {
	GetGroupSummary(context.Context, *connect.Request[GetGroupSummaryRequest]) (*connect.Response[GetGroupSummaryResponse], error)
	GetDashboard(context.Context, *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error)
	GetPairwiseBalance(context.Context, *connect.Request[GetPairwiseBalanceRequest]) (*connect.Response[GetPairwiseBalanceResponse], error)
}

// NewBalanceServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewBalanceServiceHandler(svc BalanceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(BalanceServiceName), serviceHandler{
		BalanceServiceGetGroupSummaryProcedure:    connect.NewUnaryHandler(BalanceServiceGetGroupSummaryProcedure, svc.GetGroupSummary, opts...),
		BalanceServiceGetDashboardProcedure:       connect.NewUnaryHandler(BalanceServiceGetDashboardProcedure, svc.GetDashboard, opts...),
		BalanceServiceGetPairwiseBalanceProcedure: connect.NewUnaryHandler(BalanceServiceGetPairwiseBalanceProcedure, svc.GetPairwiseBalance, opts...),
	}
}

// BalanceServiceClient is a client for the BalanceService service.
type BalanceServiceClient interface {
	BalanceServiceHandler
}

// NewBalanceServiceClient constructs a client for the BalanceService service.
func NewBalanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BalanceServiceClient {
	baseURL = trimBaseURL(baseURL)
	opts = clientOptions(opts)
	return &balanceServiceClient{
		getGroupSummary:    connect.NewClient[GetGroupSummaryRequest, GetGroupSummaryResponse](httpClient, baseURL+BalanceServiceGetGroupSummaryProcedure, opts...),
		getDashboard:       connect.NewClient[GetDashboardRequest, GetDashboardResponse](httpClient, baseURL+BalanceServiceGetDashboardProcedure, opts...),
		getPairwiseBalance: connect.NewClient[GetPairwiseBalanceRequest, GetPairwiseBalanceResponse](httpClient, baseURL+BalanceServiceGetPairwiseBalanceProcedure, opts...),
	}
}

type balanceServiceClient struct {
	getGroupSummary    *connect.Client[GetGroupSummaryRequest, GetGroupSummaryResponse]
	getDashboard       *connect.Client[GetDashboardRequest, GetDashboardResponse]
	getPairwiseBalance *connect.Client[GetPairwiseBalanceRequest, GetPairwiseBalanceResponse]
}

func (c *balanceServiceClient) GetGroupSummary(ctx context.Context, req *connect.Request[GetGroupSummaryRequest]) (*connect.Response[GetGroupSummaryResponse], error) {
	return c.getGroupSummary.CallUnary(ctx, req)
}

func (c *balanceServiceClient) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

func (c *balanceServiceClient) GetPairwiseBalance(ctx context.Context, req *connect.Request[GetPairwiseBalanceRequest]) (*connect.Response[GetPairwiseBalanceResponse], error) {
	return c.getPairwiseBalance.CallUnary(ctx, req)
}

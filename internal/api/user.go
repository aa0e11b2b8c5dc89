package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// UserServiceName is the fully-qualified name of the UserService service.
const UserServiceName = "splitledger.v1.UserService"

const (
	UserServiceListUsersProcedure          = "/splitledger.v1.UserService/ListUsers"
	UserServiceLookupUsersByEmailProcedure = "/splitledger.v1.UserService/LookupUsersByEmail"
)

type ListUsersRequest struct {
	// MaxResults defaults to 1000 and is capped there.
	MaxResults int    `json:"maxResults,omitempty"`
	PageToken  string `json:"pageToken,omitempty"`
}

type ListUsersResponse struct {
	Users []*User `json:"users"`
	// NextPageToken is empty on the last page.
	NextPageToken string `json:"nextPageToken,omitempty"`
}

type LookupUsersByEmailRequest struct {
	Emails []string `json:"emails"`
}

// EmailLookup is the outcome for one requested email, in request order.
type EmailLookup struct {
	Email string `json:"email"`
	Found bool   `json:"found"`
	User  *User  `json:"user,omitempty"`
	Error string `json:"error,omitempty"`
}

type LookupUsersByEmailResponse struct {
	Results  []EmailLookup `json:"results"`
	Found    int           `json:"found"`
	NotFound int           `json:"notFound"`
}

// UserServiceHandler is implemented by the server side of UserService.
type UserServiceHandler interface {
	ListUsers(context.Context, *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error)
	LookupUsersByEmail(context.Context, *connect.Request[LookupUsersByEmailRequest]) (*connect.Response[LookupUsersByEmailResponse], error)
}

// NewUserServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(UserServiceName), serviceHandler{
		UserServiceListUsersProcedure:          connect.NewUnaryHandler(UserServiceListUsersProcedure, svc.ListUsers, opts...),
		UserServiceLookupUsersByEmailProcedure: connect.NewUnaryHandler(UserServiceLookupUsersByEmailProcedure, svc.LookupUsersByEmail, opts...),
	}
}

// UserServiceClient is a client for the UserService service.
type UserServiceClient interface {
	UserServiceHandler
}

// NewUserServiceClient constructs a client for the UserService service.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	baseURL = trimBaseURL(baseURL)
	opts = clientOptions(opts)
	return &userServiceClient{
		listUsers:          connect.NewClient[ListUsersRequest, ListUsersResponse](httpClient, baseURL+UserServiceListUsersProcedure, opts...),
		lookupUsersByEmail: connect.NewClient[LookupUsersByEmailRequest, LookupUsersByEmailResponse](httpClient, baseURL+UserServiceLookupUsersByEmailProcedure, opts...),
	}
}

type userServiceClient struct {
	listUsers          *connect.Client[ListUsersRequest, ListUsersResponse]
	lookupUsersByEmail *connect.Client[LookupUsersByEmailRequest, LookupUsersByEmailResponse]
}

func (c *userServiceClient) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *userServiceClient) LookupUsersByEmail(ctx context.Context, req *connect.Request[LookupUsersByEmailRequest]) (*connect.Response[LookupUsersByEmailResponse], error) {
	return c.lookupUsersByEmail.CallUnary(ctx, req)
}

package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// testEnv is an httptest server running every service against a temp store.
type testEnv struct {
	url   string
	store *sqlite.SQLiteStore
}

// clients are the service clients of one logged-in user.
type clients struct {
	userID  string
	email   string
	auth    api.AuthServiceClient
	group   api.GroupServiceClient
	expense api.ExpenseServiceClient
	balance api.BalanceServiceClient
	user    api.UserServiceClient
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	optional := connect.WithInterceptors(middleware.OptionalAuth(jwtManager))
	required := connect.WithInterceptors(middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, logger), optional))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store), required))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(store, "USD"), required))
	mux.Handle(api.NewBalanceServiceHandler(NewBalanceService(store), required))
	mux.Handle(api.NewUserServiceHandler(NewUserService(store), required))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testEnv{url: server.URL, store: store}
}

// anonymous returns clients that send no token.
func (e *testEnv) anonymous() *clients {
	return e.clientsFor("")
}

func (e *testEnv) clientsFor(token string) *clients {
	var opts []connect.ClientOption
	if token != "" {
		opts = append(opts, connect.WithInterceptors(middleware.BearerToken(token)))
	}
	return &clients{
		auth:    api.NewAuthServiceClient(http.DefaultClient, e.url, opts...),
		group:   api.NewGroupServiceClient(http.DefaultClient, e.url, opts...),
		expense: api.NewExpenseServiceClient(http.DefaultClient, e.url, opts...),
		balance: api.NewBalanceServiceClient(http.DefaultClient, e.url, opts...),
		user:    api.NewUserServiceClient(http.DefaultClient, e.url, opts...),
	}
}

// register creates an account and returns clients authenticated as it.
func (e *testEnv) register(t *testing.T, email, name string) *clients {
	t.Helper()
	resp, err := e.anonymous().auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	c := e.clientsFor(resp.Msg.Token)
	c.userID = resp.Msg.User.ID
	c.email = resp.Msg.User.Email
	return c
}

// createGroup creates a group owned by owner with the given members invited.
func createGroup(t *testing.T, owner *clients, name string, members ...*clients) *api.Group {
	t.Helper()
	emails := make([]string, len(members))
	for i, m := range members {
		emails[i] = m.email
	}
	resp, err := owner.group.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:         name,
		MemberEmails: emails,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

// equalExpense records an expense paid by payer and split equally across
// the given members.
func equalExpense(t *testing.T, c *clients, groupID, payerID string, amount float64, memberIDs ...string) *api.Expense {
	t.Helper()
	participants := make([]api.SplitParticipant, len(memberIDs))
	for i, id := range memberIDs {
		participants[i] = api.SplitParticipant{MemberID: id, Included: true}
	}
	resp, err := c.expense.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID: groupID,
		ExpenseInput: api.ExpenseInput{
			Description:  "Expense",
			Amount:       amount,
			PayerID:      payerID,
			Participants: participants,
		},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil error", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected %v, got %v (%v)", want, got, err)
	}
}

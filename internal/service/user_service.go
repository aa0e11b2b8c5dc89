package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const (
	defaultListUsers = 1000
	maxEmailLookups  = 100
)

var errEmailsRequired = errors.New("emails required")

// UserService implements the Connect UserService: the user directory used
// when picking people to add to a group.
type UserService struct {
	store storage.UserStore
}

// NewUserService creates a UserService backed by store.
func NewUserService(store storage.UserStore) *UserService {
	return &UserService{store: store}
}

// ListUsers pages through registered users in ID order.
func (s *UserService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	if _, err := viewerID(ctx); err != nil {
		return nil, err
	}

	limit := req.Msg.MaxResults
	if limit <= 0 || limit > defaultListUsers {
		limit = defaultListUsers
	}

	users, err := s.store.ListUsers(ctx, req.Msg.PageToken, limit)
	if err != nil {
		slog.Error("ListUsers failed", "error", err)
		return nil, storeError("list users", err)
	}

	resp := &api.ListUsersResponse{Users: make([]*api.User, len(users))}
	for i, u := range users {
		resp.Users[i] = toAPIUser(u)
	}
	if len(users) == limit {
		resp.NextPageToken = users[len(users)-1].ID
	}

	slog.Info("ListUsers successful", "users_count", len(users))
	return connect.NewResponse(resp), nil
}

// LookupUsersByEmail resolves each email to a registered user. Missing or
// malformed addresses are reported per entry rather than failing the call.
func (s *UserService) LookupUsersByEmail(ctx context.Context, req *connect.Request[api.LookupUsersByEmailRequest]) (*connect.Response[api.LookupUsersByEmailResponse], error) {
	if _, err := viewerID(ctx); err != nil {
		return nil, err
	}
	if len(req.Msg.Emails) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEmailsRequired)
	}
	if len(req.Msg.Emails) > maxEmailLookups {
		return nil, invalidArgument("at most %d emails per lookup", maxEmailLookups)
	}
	slog.Info("LookupUsersByEmail request received", "emails", len(req.Msg.Emails))

	resp := &api.LookupUsersByEmailResponse{Results: make([]api.EmailLookup, len(req.Msg.Emails))}
	for i, raw := range req.Msg.Emails {
		result := api.EmailLookup{Email: raw}
		email := models.NormalizeEmail(raw)

		if err := auth.ValidateEmail(email); err != nil {
			result.Error = "invalid email"
		} else {
			user, err := s.store.GetUserByEmail(ctx, email)
			switch {
			case err == nil:
				result.Found = true
				result.User = toAPIUser(user)
			case errors.Is(err, storage.ErrNotFound):
				result.Error = "user not found"
			default:
				return nil, storeError("get user by email", err)
			}
		}

		if result.Found {
			resp.Found++
		} else {
			resp.NotFound++
		}
		resp.Results[i] = result
	}

	slog.Info("LookupUsersByEmail successful", "found", resp.Found, "not_found", resp.NotFound)
	return connect.NewResponse(resp), nil
}

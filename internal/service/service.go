// Package service implements the Connect RPC services on top of storage and
// the calculator package.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	errGroupIDRequired = errors.New("group_id required")
	errNotGroupMember  = errors.New("not a member of this group")
)

// viewerID returns the authenticated user, or an Unauthenticated error.
func viewerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// storeError maps storage sentinels to Connect codes.
func storeError(op string, err error) *connect.Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		return connect.NewError(connect.CodeInternal, fmt.Errorf("%s: %w", op, err))
	}
}

// invalidArgument builds a CodeInvalidArgument error from a message.
func invalidArgument(format string, args ...any) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// memberGroup loads a group and checks that userID is on its roster.
func memberGroup(ctx context.Context, store storage.GroupStore, groupID, userID string) (*models.Group, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError("get group", err)
	}
	if !group.HasMember(userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotGroupMember)
	}
	return group, nil
}

// memberLedger loads a group with its expenses in one snapshot and checks that
// userID is on its roster.
func memberLedger(ctx context.Context, store storage.Store, groupID, userID string) (*models.GroupLedger, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}
	ledgers, err := store.LoadLedgers(ctx, []string{groupID})
	if err != nil {
		return nil, storeError("load ledger", err)
	}
	if len(ledgers) == 0 {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound))
	}
	if !ledgers[0].Group.HasMember(userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotGroupMember)
	}
	return ledgers[0], nil
}

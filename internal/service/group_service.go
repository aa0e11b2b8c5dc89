package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	errGroupNameRequired = errors.New("group name required")
	errNotGroupCreator   = errors.New("only the group creator can delete the group")
	errUnsettledBalance  = errors.New("member has an unsettled balance in this group")
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group with the caller as its first member. Invited
// emails become members directly when they belong to a user, pending members
// otherwise.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"invites", len(req.Msg.MemberEmails),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupNameRequired)
	}

	creator, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError("get user", err)
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		Avatar:      req.Msg.Avatar,
		CreatedBy:   userID,
		Members: []models.Member{{
			ID:     creator.ID,
			Name:   creator.DisplayName,
			Email:  creator.Email,
			Avatar: creator.Avatar,
		}},
	}
	invited, err := s.membersForEmails(ctx, group, req.Msg.MemberEmails)
	if err != nil {
		return nil, err
	}
	group.Members = append(group.Members, invited...)

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, storeError("create group", err)
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(group.Members))
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups returns the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForMember(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "user_id", userID, "error", err)
		return nil, storeError("list groups", err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup changes a group's name, description and avatar.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateGroup request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupNameRequired)
	}

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	group.Name = name
	group.Description = strings.TrimSpace(req.Msg.Description)
	group.Avatar = req.Msg.Avatar

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, storeError("update group", err)
	}
	return connect.NewResponse(&api.UpdateGroupResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup removes a group and its expenses. Only the creator may do this.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotGroupCreator)
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		return nil, storeError("delete group", err)
	}

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMembers adds registered users by ID and invites others by email.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMembers request received",
		"group_id", req.Msg.GroupID,
		"user_ids", len(req.Msg.UserIDs),
		"emails", len(req.Msg.Emails),
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	var members []models.Member
	if len(req.Msg.UserIDs) > 0 {
		users, err := s.store.GetUsersByIDs(ctx, req.Msg.UserIDs)
		if err != nil {
			return nil, storeError("get users", err)
		}
		for _, id := range req.Msg.UserIDs {
			u, ok := users[id]
			if !ok {
				return nil, invalidArgument("unknown user %q", id)
			}
			members = append(members, models.Member{ID: u.ID, Name: u.DisplayName, Email: u.Email, Avatar: u.Avatar})
		}
	}

	invited, err := s.membersForEmails(ctx, group, req.Msg.Emails)
	if err != nil {
		return nil, err
	}
	members = append(members, invited...)

	added, err := s.store.AddGroupMembers(ctx, group.ID, members)
	if err != nil {
		slog.Error("AddMembers failed", "group_id", group.ID, "error", err)
		return nil, storeError("add members", err)
	}

	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError("get group", err)
	}

	slog.Info("Members added", "group_id", group.ID, "added", len(added))
	return connect.NewResponse(&api.AddMembersResponse{
		Group: toAPIGroup(updated),
		Added: toAPIMembers(added),
	}), nil
}

// RemoveMember takes a member off the roster. Members whose position in the
// group is not settled cannot be removed.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)

	ledger, err := memberLedger(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !ledger.Group.HasMember(req.Msg.MemberID) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("member %s: %w", req.Msg.MemberID, storage.ErrNotFound))
	}

	positions := calculator.ComputeMemberPositions(balanceMembers(ledger.Group.Members), balanceExpenses(ledger.Expenses))
	for _, p := range positions {
		if p.MemberID == req.Msg.MemberID && math.Abs(p.Balance) >= calculator.SplitTolerance {
			return nil, connect.NewError(connect.CodeFailedPrecondition, errUnsettledBalance)
		}
	}

	if err := s.store.RemoveGroupMember(ctx, ledger.Group.ID, req.Msg.MemberID); err != nil {
		slog.Error("RemoveMember failed", "group_id", ledger.Group.ID, "error", err)
		return nil, storeError("remove member", err)
	}
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// GetMemberBalances returns every member's net position in a group and a
// minimal set of transfers that settles them.
func (s *GroupService) GetMemberBalances(ctx context.Context, req *connect.Request[api.GetMemberBalancesRequest]) (*connect.Response[api.GetMemberBalancesResponse], error) {
	userID, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetMemberBalances request received", "group_id", req.Msg.GroupID)

	ledger, err := memberLedger(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	positions := calculator.ComputeMemberPositions(balanceMembers(ledger.Group.Members), balanceExpenses(ledger.Expenses))
	settlements := calculator.SimplifyDebts(positions)

	return connect.NewResponse(&api.GetMemberBalancesResponse{
		Positions:   toAPIPositions(positions),
		Settlements: toAPISettlements(settlements),
	}), nil
}

// membersForEmails resolves invitation emails to members. Addresses already on
// the roster or repeated in the list are skipped.
func (s *GroupService) membersForEmails(ctx context.Context, group *models.Group, emails []string) ([]models.Member, error) {
	seen := make(map[string]bool, len(emails))
	var members []models.Member
	for _, raw := range emails {
		email := models.NormalizeEmail(raw)
		if err := auth.ValidateEmail(email); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		if _, onRoster := group.MemberByEmail(email); onRoster || seen[email] {
			continue
		}
		seen[email] = true

		user, err := s.store.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			if group.HasMember(user.ID) {
				continue
			}
			members = append(members, models.Member{ID: user.ID, Name: user.DisplayName, Email: user.Email, Avatar: user.Avatar})
		case errors.Is(err, storage.ErrNotFound):
			members = append(members, models.Member{
				ID:    models.NewPendingMemberID(),
				Name:  pendingName(email),
				Email: email,
			})
		default:
			return nil, storeError("get user by email", err)
		}
	}
	return members, nil
}

// pendingName is the display name of an invited member: the email's local part.
func pendingName(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

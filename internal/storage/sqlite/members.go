package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// AddGroupMembers adds the members not already on the roster.
func (s *SQLiteStore) AddGroupMembers(ctx context.Context, groupID string, members []models.Member) ([]models.Member, error) {
	var added []models.Member
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
		if err == sql.ErrNoRows {
			return notFound("group", groupID)
		}
		if err != nil {
			return fmt.Errorf("failed to check group existence: %w", err)
		}

		added, err = insertMembers(ctx, tx, groupID, members, time.Now().Unix())
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveGroupMember removes a member from the roster.
func (s *SQLiteStore) RemoveGroupMember(ctx context.Context, groupID, memberID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND member_id = ?",
		groupID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return expectAffected(result, "member", memberID)
}

// ClaimPendingMemberships rebinds pending members invited by email to user.
func (s *SQLiteStore) ClaimPendingMemberships(ctx context.Context, email string, user *models.User) (int, error) {
	type pending struct {
		groupID  string
		memberID string
	}

	claimed := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT group_id, member_id FROM group_members
			 WHERE email = ? AND member_id LIKE ?`,
			models.NormalizeEmail(email), models.PendingMemberPrefix+"%",
		)
		if err != nil {
			return fmt.Errorf("failed to find pending members: %w", err)
		}
		var found []pending
		for rows.Next() {
			var p pending
			if err := rows.Scan(&p.groupID, &p.memberID); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan pending member: %w", err)
			}
			found = append(found, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate pending members: %w", err)
		}

		for _, p := range found {
			var already int
			err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM group_members WHERE group_id = ? AND member_id = ?",
				p.groupID, user.ID,
			).Scan(&already)
			if err != nil {
				return fmt.Errorf("failed to check membership: %w", err)
			}

			if already > 0 {
				_, err = tx.ExecContext(ctx,
					"DELETE FROM group_members WHERE group_id = ? AND member_id = ?",
					p.groupID, p.memberID,
				)
			} else {
				_, err = tx.ExecContext(ctx,
					`UPDATE group_members SET member_id = ?, name = ?, avatar = ?
					 WHERE group_id = ? AND member_id = ?`,
					user.ID, user.DisplayName, user.Avatar, p.groupID, p.memberID,
				)
			}
			if err != nil {
				return fmt.Errorf("failed to rebind member: %w", err)
			}

			if _, err := tx.ExecContext(ctx,
				"UPDATE expenses SET payer_id = ? WHERE group_id = ? AND payer_id = ?",
				user.ID, p.groupID, p.memberID,
			); err != nil {
				return fmt.Errorf("failed to rebind payer: %w", err)
			}

			if _, err := tx.ExecContext(ctx,
				`UPDATE expense_shares SET member_id = ?
				 WHERE member_id = ? AND expense_id IN (SELECT id FROM expenses WHERE group_id = ?)`,
				user.ID, p.memberID, p.groupID,
			); err != nil {
				return fmt.Errorf("failed to rebind shares: %w", err)
			}
			claimed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return claimed, nil
}

// insertMembers inserts the members whose IDs are not yet on the roster and
// returns them. Members without a JoinedAt get joinedAt.
func insertMembers(ctx context.Context, tx *sql.Tx, groupID string, members []models.Member, joinedAt int64) ([]models.Member, error) {
	var added []models.Member
	for _, m := range members {
		if m.JoinedAt == 0 {
			m.JoinedAt = joinedAt
		}
		result, err := tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, member_id, name, email, avatar, joined_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (group_id, member_id) DO NOTHING`,
			groupID, m.ID, m.Name, models.NormalizeEmail(m.Email), m.Avatar, m.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert member: %w", err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			added = append(added, m)
		}
	}
	return added, nil
}

func listMembers(ctx context.Context, q queryer, groupID string) ([]models.Member, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT member_id, name, email, avatar, joined_at FROM group_members
		 WHERE group_id = ? ORDER BY joined_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Avatar, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

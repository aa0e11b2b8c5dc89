package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// LoadLedgers reads groups, members and expenses inside one transaction.
// SQLite takes its read snapshot at the first SELECT, so concurrent writers
// cannot interleave between the groups that are read.
func (s *SQLiteStore) LoadLedgers(ctx context.Context, groupIDs []string) ([]*models.GroupLedger, error) {
	var ledgers []*models.GroupLedger
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ledgers = make([]*models.GroupLedger, 0, len(groupIDs))
		for _, id := range groupIDs {
			group, err := getGroup(ctx, tx, id)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			expenses, err := listExpenses(ctx, tx, id)
			if err != nil {
				return err
			}
			ledgers = append(ledgers, &models.GroupLedger{Group: group, Expenses: expenses})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledgers, nil
}

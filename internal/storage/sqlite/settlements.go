package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrv/tripledger/internal/models"
)

// ListSettlementsByTrip retrieves all settlement records for a trip.
func (s *SQLiteStore) ListSettlementsByTrip(ctx context.Context, tripID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, from_user_id, to_user_id, amount, status, notes, created_at
		 FROM settlements WHERE trip_id = ? ORDER BY amount DESC, from_user_id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		var notes sql.NullString
		if err := rows.Scan(&settlement.ID, &settlement.TripID, &settlement.FromUserID, &settlement.ToUserID,
			&settlement.Amount, &settlement.Status, &notes, &settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlement.Notes = notes.String
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// CloseSpendWindow atomically replaces the trip's settlement records with
// the given set and flips the spend status to CLOSED. Delete-then-recreate
// in one transaction keeps the operation idempotent: re-running a close
// after a partial failure converges to the same final state.
func (s *SQLiteStore) CloseSpendWindow(ctx context.Context, tripID string, settlements []*models.Settlement) error {
	now := time.Now().Unix()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE trip_id = ?", tripID); err != nil {
			return fmt.Errorf("failed to clear settlements: %w", err)
		}

		for _, settlement := range settlements {
			if settlement.ID == "" {
				settlement.ID = uuid.New().String()
			}
			if settlement.CreatedAt == 0 {
				settlement.CreatedAt = now
			}
			if settlement.Status == "" {
				settlement.Status = models.SettlementPending
			}
			settlement.TripID = tripID

			_, err := tx.ExecContext(ctx,
				`INSERT INTO settlements (id, trip_id, from_user_id, to_user_id, amount, status, notes, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				settlement.ID, settlement.TripID, settlement.FromUserID, settlement.ToUserID,
				settlement.Amount, settlement.Status, nullableString(settlement.Notes), settlement.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert settlement: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE trips SET spend_status = ?, updated_at = ? WHERE id = ? AND deleted_at = 0",
			models.SpendClosed, now, tripID,
		)
		if err != nil {
			return fmt.Errorf("failed to close spend window: %w", err)
		}
		return requireRow(res, tripID)
	})
}

// ReopenSpendWindow atomically deletes the trip's settlement records and
// flips the spend status back to OPEN. No recomputation happens on reopen.
func (s *SQLiteStore) ReopenSpendWindow(ctx context.Context, tripID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE trip_id = ?", tripID); err != nil {
			return fmt.Errorf("failed to clear settlements: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE trips SET spend_status = ?, updated_at = ? WHERE id = ? AND deleted_at = 0",
			models.SpendOpen, time.Now().Unix(), tripID,
		)
		if err != nil {
			return fmt.Errorf("failed to reopen spend window: %w", err)
		}
		return requireRow(res, tripID)
	})
}

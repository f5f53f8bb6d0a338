package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrv/tripledger/internal/models"
	"github.com/mkrv/tripledger/internal/storage"
)

// CreateChecklist persists a checklist and any initial items.
func (s *SQLiteStore) CreateChecklist(ctx context.Context, checklist *models.Checklist) error {
	if checklist.ID == "" {
		checklist.ID = uuid.New().String()
	}
	if checklist.CreatedAt == 0 {
		checklist.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO checklists (id, trip_id, name, created_at) VALUES (?, ?, ?, ?)",
			checklist.ID, checklist.TripID, checklist.Name, checklist.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert checklist: %w", err)
		}

		for i := range checklist.Items {
			item := &checklist.Items[i]
			item.ChecklistID = checklist.ID
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			if item.CreatedAt == 0 {
				item.CreatedAt = checklist.CreatedAt
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO checklist_items (id, checklist_id, text, assignee_id, done, created_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				item.ID, item.ChecklistID, item.Text, nullableString(item.AssigneeID), item.Done, item.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert checklist item: %w", err)
			}
		}
		return nil
	})
}

// GetChecklist retrieves a checklist with its items.
func (s *SQLiteStore) GetChecklist(ctx context.Context, checklistID string) (*models.Checklist, error) {
	checklist := &models.Checklist{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, trip_id, name, created_at FROM checklists WHERE id = ?",
		checklistID,
	).Scan(&checklist.ID, &checklist.TripID, &checklist.Name, &checklist.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("checklist %s: %w", checklistID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}

	items, err := s.listChecklistItems(ctx, checklist.ID)
	if err != nil {
		return nil, err
	}
	checklist.Items = items
	return checklist, nil
}

// ListChecklistsByTrip retrieves all checklists on a trip with items.
func (s *SQLiteStore) ListChecklistsByTrip(ctx context.Context, tripID string) ([]*models.Checklist, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, trip_id, name, created_at FROM checklists WHERE trip_id = ? ORDER BY created_at",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	defer rows.Close()

	var checklists []*models.Checklist
	for rows.Next() {
		c := &models.Checklist{}
		if err := rows.Scan(&c.ID, &c.TripID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}
		checklists = append(checklists, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checklists: %w", err)
	}

	for _, c := range checklists {
		items, err := s.listChecklistItems(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		c.Items = items
	}
	return checklists, nil
}

func (s *SQLiteStore) listChecklistItems(ctx context.Context, checklistID string) ([]models.ChecklistItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, checklist_id, text, assignee_id, done, created_at
		 FROM checklist_items WHERE checklist_id = ? ORDER BY created_at, id`,
		checklistID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	var items []models.ChecklistItem
	for rows.Next() {
		var item models.ChecklistItem
		var assignee sql.NullString
		if err := rows.Scan(&item.ID, &item.ChecklistID, &item.Text, &assignee, &item.Done, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		item.AssigneeID = assignee.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checklist items: %w", err)
	}
	return items, nil
}

// AddChecklistItem appends one item to an existing checklist.
func (s *SQLiteStore) AddChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checklist_items (id, checklist_id, text, assignee_id, done, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.ChecklistID, item.Text, nullableString(item.AssigneeID), item.Done, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add checklist item: %w", err)
	}
	return nil
}

// SetChecklistItemDone toggles an item's done flag. The update is scoped
// to the checklist so an item ID cannot be paired with a checklist the
// caller was authorized against but the item does not belong to.
func (s *SQLiteStore) SetChecklistItemDone(ctx context.Context, checklistID, itemID string, done bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE checklist_items SET done = ? WHERE id = ? AND checklist_id = ?",
		done, itemID, checklistID,
	)
	if err != nil {
		return fmt.Errorf("failed to set item done: %w", err)
	}
	return requireRow(res, itemID)
}

// DeleteChecklist removes a checklist; items cascade.
func (s *SQLiteStore) DeleteChecklist(ctx context.Context, checklistID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM checklists WHERE id = ?", checklistID)
	if err != nil {
		return fmt.Errorf("failed to delete checklist: %w", err)
	}
	return requireRow(res, checklistID)
}

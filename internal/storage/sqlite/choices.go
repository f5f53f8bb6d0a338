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

// CreateChoice persists a choice and its options in one transaction.
func (s *SQLiteStore) CreateChoice(ctx context.Context, choice *models.Choice) error {
	if choice.ID == "" {
		choice.ID = uuid.New().String()
	}
	if choice.CreatedAt == 0 {
		choice.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO choices (id, trip_id, title, created_at) VALUES (?, ?, ?, ?)",
			choice.ID, choice.TripID, choice.Title, choice.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert choice: %w", err)
		}

		for i := range choice.Options {
			option := &choice.Options[i]
			option.ChoiceID = choice.ID
			if option.ID == "" {
				option.ID = uuid.New().String()
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO choice_options (id, choice_id, label) VALUES (?, ?, ?)",
				option.ID, option.ChoiceID, option.Label,
			)
			if err != nil {
				return fmt.Errorf("failed to insert choice option: %w", err)
			}
		}
		return nil
	})
}

// GetChoice retrieves a choice with options and current selections.
func (s *SQLiteStore) GetChoice(ctx context.Context, choiceID string) (*models.Choice, error) {
	choice := &models.Choice{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, trip_id, title, created_at FROM choices WHERE id = ?",
		choiceID,
	).Scan(&choice.ID, &choice.TripID, &choice.Title, &choice.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("choice %s: %w", choiceID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get choice: %w", err)
	}

	if err := s.loadChoiceOptions(ctx, choice); err != nil {
		return nil, err
	}
	return choice, nil
}

// ListChoicesByTrip retrieves all choices on a trip with options and
// selections.
func (s *SQLiteStore) ListChoicesByTrip(ctx context.Context, tripID string) ([]*models.Choice, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, trip_id, title, created_at FROM choices WHERE trip_id = ? ORDER BY created_at",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list choices: %w", err)
	}
	defer rows.Close()

	var choices []*models.Choice
	for rows.Next() {
		c := &models.Choice{}
		if err := rows.Scan(&c.ID, &c.TripID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate choices: %w", err)
	}

	for _, c := range choices {
		if err := s.loadChoiceOptions(ctx, c); err != nil {
			return nil, err
		}
	}
	return choices, nil
}

func (s *SQLiteStore) loadChoiceOptions(ctx context.Context, choice *models.Choice) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, choice_id, label FROM choice_options WHERE choice_id = ? ORDER BY id",
		choice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to list choice options: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.ChoiceOption)
	choice.Options = nil
	for rows.Next() {
		var option models.ChoiceOption
		if err := rows.Scan(&option.ID, &option.ChoiceID, &option.Label); err != nil {
			return fmt.Errorf("failed to scan choice option: %w", err)
		}
		choice.Options = append(choice.Options, option)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate choice options: %w", err)
	}
	for i := range choice.Options {
		byID[choice.Options[i].ID] = &choice.Options[i]
	}

	selRows, err := s.db.QueryContext(ctx,
		"SELECT option_id, user_id FROM choice_selections WHERE choice_id = ? ORDER BY user_id",
		choice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to list selections: %w", err)
	}
	defer selRows.Close()

	for selRows.Next() {
		var optionID, userID string
		if err := selRows.Scan(&optionID, &userID); err != nil {
			return fmt.Errorf("failed to scan selection: %w", err)
		}
		if option, ok := byID[optionID]; ok {
			option.Selections = append(option.Selections, userID)
		}
	}
	return selRows.Err()
}

// RecordSelection registers a member's pick for a choice, replacing any
// earlier pick for the same choice.
func (s *SQLiteStore) RecordSelection(ctx context.Context, choiceID, optionID, userID string) error {
	// Reject options that don't belong to the choice.
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM choice_options WHERE id = ? AND choice_id = ?",
		optionID, choiceID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("option %s of choice %s: %w", optionID, choiceID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check option: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO choice_selections (choice_id, user_id, option_id) VALUES (?, ?, ?)
		 ON CONFLICT (choice_id, user_id) DO UPDATE SET option_id = excluded.option_id`,
		choiceID, userID, optionID,
	)
	if err != nil {
		return fmt.Errorf("failed to record selection: %w", err)
	}
	return nil
}

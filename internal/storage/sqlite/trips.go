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

// CreateTrip persists a new trip and its creator's OWNER membership in one
// transaction.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if trip.CreatedAt == 0 {
		trip.CreatedAt = now
	}
	trip.UpdatedAt = trip.CreatedAt
	if trip.SpendStatus == "" {
		trip.SpendStatus = models.SpendOpen
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO trips (id, name, destination, base_currency, spend_status, start_date, end_date, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			trip.ID, trip.Name, nullableString(trip.Destination), trip.BaseCurrency, trip.SpendStatus,
			trip.StartDate, trip.EndDate, trip.CreatedBy, trip.CreatedAt, trip.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip: %w", err)
		}

		// Creator joins as OWNER with an accepted RSVP.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO trip_members (trip_id, user_id, role, rsvp, invited_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, NULL, ?, ?)`,
			trip.ID, trip.CreatedBy, models.RoleOwner, models.RSVPAccepted, trip.CreatedAt, trip.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert owner membership: %w", err)
		}
		return nil
	})
}

// GetTrip retrieves a live trip by ID. Soft-deleted trips are filtered
// here, not at call sites.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip := &models.Trip{}
	var destination sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, destination, base_currency, spend_status, start_date, end_date, created_by, created_at, updated_at
		 FROM trips WHERE id = ? AND deleted_at = 0`,
		tripID,
	).Scan(&trip.ID, &trip.Name, &destination, &trip.BaseCurrency, &trip.SpendStatus,
		&trip.StartDate, &trip.EndDate, &trip.CreatedBy, &trip.CreatedAt, &trip.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	trip.Destination = destination.String
	return trip, nil
}

// UpdateTrip updates a trip's mutable fields.
func (s *SQLiteStore) UpdateTrip(ctx context.Context, trip *models.Trip) error {
	trip.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE trips SET name = ?, destination = ?, base_currency = ?, start_date = ?, end_date = ?, updated_at = ?
		 WHERE id = ? AND deleted_at = 0`,
		trip.Name, nullableString(trip.Destination), trip.BaseCurrency, trip.StartDate, trip.EndDate, trip.UpdatedAt,
		trip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	return requireRow(res, trip.ID)
}

// DeleteTrip soft-deletes a trip. Its rows remain for audit but every
// query in this package filters them out.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, tripID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE trips SET deleted_at = ? WHERE id = ? AND deleted_at = 0",
		time.Now().Unix(), tripID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return requireRow(res, tripID)
}

// ListTripsByUser retrieves all live trips the user is a member of.
func (s *SQLiteStore) ListTripsByUser(ctx context.Context, userID string) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.destination, t.base_currency, t.spend_status, t.start_date, t.end_date, t.created_by, t.created_at, t.updated_at
		 FROM trips t
		 JOIN trip_members m ON m.trip_id = t.id
		 WHERE m.user_id = ? AND t.deleted_at = 0
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip := &models.Trip{}
		var destination sql.NullString
		if err := rows.Scan(&trip.ID, &trip.Name, &destination, &trip.BaseCurrency, &trip.SpendStatus,
			&trip.StartDate, &trip.EndDate, &trip.CreatedBy, &trip.CreatedAt, &trip.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trip.Destination = destination.String
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

// AddMember inserts a membership row.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.TripMember) error {
	now := time.Now().Unix()
	if member.CreatedAt == 0 {
		member.CreatedAt = now
	}
	member.UpdatedAt = member.CreatedAt
	if member.Role == "" {
		member.Role = models.RoleMember
	}
	if member.RSVP == "" {
		member.RSVP = models.RSVPPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trip_members (trip_id, user_id, role, rsvp, invited_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		member.TripID, member.UserID, member.Role, member.RSVP,
		nullableString(member.InvitedBy), member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// GetMember retrieves one membership row.
func (s *SQLiteStore) GetMember(ctx context.Context, tripID, userID string) (*models.TripMember, error) {
	member := &models.TripMember{}
	var invitedBy sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT trip_id, user_id, role, rsvp, invited_by, created_at, updated_at
		 FROM trip_members WHERE trip_id = ? AND user_id = ?`,
		tripID, userID,
	).Scan(&member.TripID, &member.UserID, &member.Role, &member.RSVP, &invitedBy, &member.CreatedAt, &member.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %s of trip %s: %w", userID, tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.InvitedBy = invitedBy.String
	return member, nil
}

// ListMembers retrieves all membership rows for a trip.
func (s *SQLiteStore) ListMembers(ctx context.Context, tripID string) ([]*models.TripMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT trip_id, user_id, role, rsvp, invited_by, created_at, updated_at
		 FROM trip_members WHERE trip_id = ? ORDER BY created_at, user_id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.TripMember
	for rows.Next() {
		member := &models.TripMember{}
		var invitedBy sql.NullString
		if err := rows.Scan(&member.TripID, &member.UserID, &member.Role, &member.RSVP,
			&invitedBy, &member.CreatedAt, &member.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.InvitedBy = invitedBy.String
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// SetMemberRSVP updates a member's RSVP state.
func (s *SQLiteStore) SetMemberRSVP(ctx context.Context, tripID, userID string, rsvp models.RSVPStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE trip_members SET rsvp = ?, updated_at = ? WHERE trip_id = ? AND user_id = ?",
		rsvp, time.Now().Unix(), tripID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set RSVP: %w", err)
	}
	return requireRow(res, userID)
}

// SetMemberRole updates a member's role.
func (s *SQLiteStore) SetMemberRole(ctx context.Context, tripID, userID string, role models.MemberRole) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE trip_members SET role = ?, updated_at = ? WHERE trip_id = ? AND user_id = ?",
		role, time.Now().Unix(), tripID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	return requireRow(res, userID)
}

// CreateMilestone inserts a milestone row.
func (s *SQLiteStore) CreateMilestone(ctx context.Context, milestone *models.Milestone) error {
	if milestone.ID == "" {
		milestone.ID = uuid.New().String()
	}
	if milestone.CreatedAt == 0 {
		milestone.CreatedAt = time.Now().Unix()
	}
	if milestone.Kind == "" {
		milestone.Kind = models.MilestoneGeneric
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO milestones (id, trip_id, title, kind, due_date, completed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		milestone.ID, milestone.TripID, milestone.Title, milestone.Kind, milestone.DueDate, milestone.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert milestone: %w", err)
	}
	return nil
}

// ListMilestones retrieves a trip's milestones ordered by due date.
func (s *SQLiteStore) ListMilestones(ctx context.Context, tripID string) ([]*models.Milestone, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, title, kind, due_date, completed_at, created_at
		 FROM milestones WHERE trip_id = ? ORDER BY due_date, created_at`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*models.Milestone
	for rows.Next() {
		m := &models.Milestone{}
		if err := rows.Scan(&m.ID, &m.TripID, &m.Title, &m.Kind, &m.DueDate, &m.CompletedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate milestones: %w", err)
	}
	return milestones, nil
}

// GetMilestone retrieves a milestone by ID.
func (s *SQLiteStore) GetMilestone(ctx context.Context, milestoneID string) (*models.Milestone, error) {
	m := &models.Milestone{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, title, kind, due_date, completed_at, created_at
		 FROM milestones WHERE id = ?`,
		milestoneID,
	).Scan(&m.ID, &m.TripID, &m.Title, &m.Kind, &m.DueDate, &m.CompletedAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("milestone %s: %w", milestoneID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}
	return m, nil
}

// CompleteMilestone marks a milestone completed.
func (s *SQLiteStore) CompleteMilestone(ctx context.Context, milestoneID string, completedAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE milestones SET completed_at = ? WHERE id = ?",
		completedAt, milestoneID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete milestone: %w", err)
	}
	return requireRow(res, milestoneID)
}

// requireRow converts a zero-rows-affected update into ErrNotFound.
func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, storage.ErrNotFound)
	}
	return nil
}

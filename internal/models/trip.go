package models

// SpendStatus gates whether a trip's expenses can be modified and whether
// settlement records exist for it.
type SpendStatus string

const (
	SpendOpen   SpendStatus = "OPEN"
	SpendClosed SpendStatus = "CLOSED"
)

// RSVPStatus is a member's response to a trip invitation.
type RSVPStatus string

const (
	RSVPPending  RSVPStatus = "PENDING"
	RSVPAccepted RSVPStatus = "ACCEPTED"
	RSVPDeclined RSVPStatus = "DECLINED"
	RSVPMaybe    RSVPStatus = "MAYBE"
)

// MemberRole is a member's permission level within a trip.
type MemberRole string

const (
	RoleOwner  MemberRole = "OWNER"
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

// ValidRSVP reports whether s is a known RSVP state.
func ValidRSVP(s RSVPStatus) bool {
	switch s {
	case RSVPPending, RSVPAccepted, RSVPDeclined, RSVPMaybe:
		return true
	}
	return false
}

// CanManageSpend reports whether the role may close or reopen the trip's
// spend window.
func (r MemberRole) CanManageSpend() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Trip represents a planned trip whose members share expenses.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string `json:"id"`

	// Name is the display name of the trip (e.g., "Lisbon 2026").
	Name string `json:"name"`

	// Destination is an optional free-form location.
	Destination string `json:"destination,omitempty"`

	// BaseCurrency is the 3-letter ISO code all expenses normalize into.
	BaseCurrency string `json:"baseCurrency"`

	// SpendStatus is OPEN while expenses may change; CLOSED once the
	// spend window has been closed and settlements materialized.
	SpendStatus SpendStatus `json:"spendStatus"`

	// StartDate and EndDate are Unix timestamps (0 = unset).
	StartDate int64 `json:"startDate,omitempty"`
	EndDate   int64 `json:"endDate,omitempty"`

	// CreatedBy is the user ID of the trip creator (initial OWNER).
	CreatedBy string `json:"createdBy"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`

	// DeletedAt is the soft-delete Unix timestamp (0 = live). The storage
	// layer filters deleted trips inside its queries; callers never see
	// logically-deleted rows.
	DeletedAt int64 `json:"-"`
}

// TripMember is a user's membership in a trip.
type TripMember struct {
	TripID string     `json:"tripId"`
	UserID string     `json:"userId"`
	Role   MemberRole `json:"role"`
	RSVP   RSVPStatus `json:"rsvp"`

	// InvitedBy is the user ID that created this membership, empty for
	// the trip creator.
	InvitedBy string `json:"invitedBy,omitempty"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// MilestoneKind distinguishes plain calendar milestones from ones that
// trigger lifecycle actions when completed.
type MilestoneKind string

const (
	// MilestoneGeneric has no side effects.
	MilestoneGeneric MilestoneKind = "GENERIC"
	// MilestoneSpendClose closes the trip's spend window on completion,
	// through the same path as the explicit toggle action.
	MilestoneSpendClose MilestoneKind = "SPEND_CLOSE"
)

// Milestone is a dated trip event (e.g., "Book flights", "Spending Window
// Closes").
type Milestone struct {
	ID          string        `json:"id"`
	TripID      string        `json:"tripId"`
	Title       string        `json:"title"`
	Kind        MilestoneKind `json:"kind"`
	DueDate     int64         `json:"dueDate,omitempty"`
	CompletedAt int64         `json:"completedAt,omitempty"`
	CreatedAt   int64         `json:"createdAt"`
}

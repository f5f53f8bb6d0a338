package models

// Checklist is a shared packing or to-do list on a trip.
type Checklist struct {
	ID        string          `json:"id"`
	TripID    string          `json:"tripId"`
	Name      string          `json:"name"`
	Items     []ChecklistItem `json:"items"`
	CreatedAt int64           `json:"createdAt"`
}

// ChecklistItem is one entry on a checklist, optionally assigned to a
// member.
type ChecklistItem struct {
	ID          string `json:"id"`
	ChecklistID string `json:"checklistId"`
	Text        string `json:"text"`

	// AssigneeID is the member responsible for the item, empty if shared.
	AssigneeID string `json:"assigneeId,omitempty"`

	Done      bool  `json:"done"`
	CreatedAt int64 `json:"createdAt"`
}

package models

// Choice is a menu-style group selection: the organizer poses options and
// each member picks one.
type Choice struct {
	ID        string         `json:"id"`
	TripID    string         `json:"tripId"`
	Title     string         `json:"title"`
	Options   []ChoiceOption `json:"options"`
	CreatedAt int64          `json:"createdAt"`
}

// ChoiceOption is one selectable option of a choice.
type ChoiceOption struct {
	ID       string `json:"id"`
	ChoiceID string `json:"choiceId"`
	Label    string `json:"label"`

	// Selections holds the user IDs that picked this option (one
	// selection per member per choice; re-selecting moves the vote).
	Selections []string `json:"selections"`
}

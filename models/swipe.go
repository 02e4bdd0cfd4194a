package models

// SwipeVerb is the user's verdict on a presented commander.
type SwipeVerb string

const (
	SwipeLike SwipeVerb = "like"
	SwipePass SwipeVerb = "pass"
)

// SwipeHistoryLimit caps locally kept swipe records. The history is
// append-only, so the trim is FIFO: oldest entries evicted first.
const SwipeHistoryLimit = 1000

// SwipeAction is one append-only history record of a swipe decision.
type SwipeAction struct {
	CommanderID string    `json:"commanderId"`
	Action      SwipeVerb `json:"action"`

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`

	// Commander optionally embeds the card snapshot at swipe time.
	Commander *Card `json:"commanderData,omitempty"`
}

// TableName returns the name of the database table
// associated with the SwipeAction model.
func (a SwipeAction) TableName() string {
	return "swipe_history"
}

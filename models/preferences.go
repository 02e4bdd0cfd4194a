package models

// Color symbols accepted in discovery filters. "C" stands for
// colorless and is a filter symbol only, never part of a card's
// color identity.
const (
	ColorWhite     = "W"
	ColorBlue      = "U"
	ColorBlack     = "B"
	ColorRed       = "R"
	ColorGreen     = "G"
	ColorColorless = "C"
)

// Preferences is the per-user settings singleton. It is overwritten
// wholesale on save.
type Preferences struct {
	// ColorFilters controls which commanders are eligible for
	// discovery. The full set (all five colors plus colorless) is the
	// structural default and means "no filter".
	ColorFilters []string `json:"colorFilters"`
}

// DefaultPreferences returns the structural default used whenever no
// preferences are stored for the user.
func DefaultPreferences() Preferences {
	return Preferences{
		ColorFilters: []string{ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen, ColorColorless},
	}
}

// TableName returns the name of the database table
// associated with the Preferences model.
func (p Preferences) TableName() string {
	return "user_preferences"
}

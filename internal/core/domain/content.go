package domain

import "time"

// BinQuiz is a single bin-sorting question: which bin does the item go in.
type BinQuiz struct {
	ID        string
	Item      string
	Choices   []string
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contest describes an environmental contest listing.
type Contest struct {
	ID           string
	Title        string
	Organization string
	Scope        string
	Grade        string
	Deadline     string
	Prize        string
	Description  string
	Requirements []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tracker is a mapped recycling-bin location.
type Tracker struct {
	ID        string
	Type      string
	Name      string
	Longitude float64
	Latitude  float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidCoordinates reports whether the tracker's position is on the globe.
func (t Tracker) ValidCoordinates() bool {
	return t.Longitude >= -180 && t.Longitude <= 180 && t.Latitude >= -90 && t.Latitude <= 90
}

// LeaderboardEntry is one row of the public leaderboard projection.
type LeaderboardEntry struct {
	UserID           string
	FirstName        string
	LastName         *string
	LeaderboardScore int
}

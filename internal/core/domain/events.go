package domain

import "time"

// UserProvisionedEvent is emitted when a verified external subject is seen
// for the first time and a local user record is created for it.
type UserProvisionedEvent struct {
	EventID       string
	UserID        string
	Auth0ID       string
	Email         string
	ProvisionedAt time.Time
	Metadata      map[string]any
}

// UserDeletedEvent is emitted after an account deletion, in either design.
type UserDeletedEvent struct {
	EventID   string
	UserID    string
	Email     string
	DeletedAt time.Time
	Metadata  map[string]any
}

// QuizSubmittedEvent is emitted when a quiz submission increments a score.
type QuizSubmittedEvent struct {
	EventID     string
	UserID      string
	Points      int
	NewScore    int
	SubmittedAt time.Time
	Metadata    map[string]any
}

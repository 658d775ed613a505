package domain

import "time"

// LockPolicy is the slice of game configuration the engine consults when
// deciding whether solving an exercise should record an unlock, and when
// resolving visibility.
type LockPolicy struct {
	ModuleLock   float64
	ExerciseLock bool
}

// GameMetadata is the registration/game join returned for a player's
// registration.
type GameMetadata struct {
	RegistrationID          int64
	Progress                int
	JoinedAt                time.Time
	LeftAt                  *time.Time
	Language                string
	GameID                  int64
	GameTitle               string
	GameActive              bool
	GameDescription         string
	GameProgrammingLanguage string
	GameTotalExercises      int
	GameStartDate           time.Time
	GameEndDate             time.Time
}

package domain

import (
	"encoding/json"
	"time"
)

// PlayerRegistration ties a player to a game. Progress is the authoritative
// count of distinct exercises first-correctly solved in the game and only
// ever changes through the submission processor.
type PlayerRegistration struct {
	ID        int64
	PlayerID  int64
	GameID    int64
	Language  string
	Progress  int
	GameState json.RawMessage
	SavedAt   time.Time
	JoinedAt  time.Time
	LeftAt    *time.Time
}

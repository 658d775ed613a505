package domain

import "time"

// PlayerReward accumulates grants of one reward to one player in one game.
// Count grows by one per grant; ExpiresAt is recomputed to now+ValidPeriod
// on every grant, so re-granting refreshes expiry instead of extending it.
type PlayerReward struct {
	ID         int64
	PlayerID   int64
	RewardID   int64
	GameID     int64
	Count      int
	UsedCount  int
	ObtainedAt time.Time
	ExpiresAt  time.Time
}

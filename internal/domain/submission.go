package domain

import (
	"encoding/json"
	"time"
)

// Submission is an immutable, append-only record of one solution attempt.
// FirstSolution is fixed at insert time: it marks the earliest submission
// for the (player, exercise, game) triple with a positive result and is
// never retroactively revised.
type Submission struct {
	ID                int64
	ExerciseID        int64
	GameID            int64
	PlayerID          int64
	Client            string
	SubmittedCode     string
	Metrics           json.RawMessage
	Result            float64
	ResultDescription json.RawMessage
	FirstSolution     bool
	Feedback          string
	EarnedRewards     json.RawMessage
	EnteredAt         time.Time
	SubmittedAt       time.Time // server-assigned
}

// Correct reports whether the attempt counts as solved.
func (s *Submission) Correct() bool {
	return s.Result > 0
}

// Solution is the subset of a submission returned when a player asks for
// their last relevant attempt at an exercise.
type Solution struct {
	SubmittedCode     string
	Metrics           json.RawMessage
	Result            float64
	ResultDescription json.RawMessage
	Feedback          string
	SubmittedAt       time.Time
}

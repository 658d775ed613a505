package domain

import (
	"encoding/json"
	"time"
)

// Exercise is a single authored task. The hidden and locked flags are
// authoring-time defaults; the effective per-player values are derived by
// the visibility resolver.
type Exercise struct {
	ID                  int64
	ModuleID            int64
	Order               int
	Title               string
	Description         string
	Language            string
	ProgrammingLanguage string
	InitCode            string
	PreCode             string
	PostCode            string
	TestCode            string
	CheckSource         string
	Hidden              bool
	Locked              bool
	Mode                string
	ModeParameters      json.RawMessage
	Difficulty          string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Visibility is the resolver's answer for one (exercise, game, player)
// triple. It reflects a point-in-time snapshot and carries no cached state.
type Visibility struct {
	Hidden bool
	Locked bool
}

// ExerciseData is the full exercise payload returned to a player, with
// hidden/locked already resolved for that player's game context.
type ExerciseData struct {
	Order          int
	Title          string
	Description    string
	InitCode       string
	PreCode        string
	PostCode       string
	TestCode       string
	CheckSource    string
	Mode           string
	ModeParameters json.RawMessage
	Difficulty     string
	Hidden         bool
	Locked         bool
}

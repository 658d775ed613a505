package domain

import "time"

// CourseData is the gamification configuration a client needs to render a
// game, together with the module IDs available in the requested language.
type CourseData struct {
	GamificationRuleConditions string
	GamificationComplexRules   string
	GamificationRuleResults    string
	ModuleIDs                  []int64
}

// ModuleData is a module's metadata plus the exercise IDs matching the
// requested language pair.
type ModuleData struct {
	Order       int
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	ExerciseIDs []int64
}

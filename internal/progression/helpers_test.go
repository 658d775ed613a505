package progression

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/storage/sqlite"
)

// newTestEngine builds a service over a fresh SQLite store seeded with one
// course, two modules and four games covering every lock-policy shape:
//
//	game 1: module gate 0.5 and sequential gate
//	game 2: no gates
//	game 3: module gate 0.5 only
//	game 4: sequential gate only
//
// Module 1 holds exercises 1 and 2 (orders 1 and 2). Module 2 holds
// exercise 3 (hidden) and exercise 4 (authored locked). Reward 10 has a
// two-hour validity; reward 11 has none configured.
func newTestEngine(t *testing.T) (*Service, *sqlite.Store, *sqlite.DB) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	stmts := []string{
		`INSERT INTO players (id, email, display_name) VALUES
			(1, 'ada@example.org', 'Ada'),
			(2, 'bob@example.org', 'Bob')`,
		`INSERT INTO courses (id, title, languages, programming_languages,
			gamification_rule_conditions, gamification_complex_rules, gamification_rule_results, public)
			VALUES (1, 'Intro to Programming', 'en,fr', 'python', 'conds', 'complex', 'results', 1)`,
		`INSERT INTO modules (id, course_id, "order", title, language, start_date, end_date) VALUES
			(1, 1, 1, 'Basics', 'en', '2026-01-01', '2026-12-31'),
			(2, 1, 2, 'Extras', 'en', '2026-01-01', '2026-12-31')`,
		`INSERT INTO exercises (id, module_id, "order", title, language, programming_language, hidden, locked) VALUES
			(1, 1, 1, 'Hello', 'en', 'python', 0, 0),
			(2, 1, 2, 'Loops', 'en', 'python', 0, 0),
			(3, 2, 1, 'Secret', 'en', 'python', 1, 0),
			(4, 2, 2, 'Sealed', 'en', 'python', 0, 1)`,
		`INSERT INTO games (id, title, public, active, course_id, module_lock, exercise_lock,
			total_exercises, start_date, end_date) VALUES
			(1, 'Full Policy', 1, 1, 1, 0.5, 1, 2, '2026-01-01', '2026-12-31'),
			(2, 'Open Play', 1, 1, 1, 0, 0, 2, '2026-01-01', '2026-12-31'),
			(3, 'Module Gate', 1, 1, 1, 0.5, 0, 2, '2026-01-01', '2026-12-31'),
			(4, 'Sequential', 1, 1, 1, 0, 1, 2, '2026-01-01', '2026-12-31')`,
		`INSERT INTO rewards (id, course_id, name, valid_period_secs) VALUES
			(10, 1, 'Gold Star', 7200),
			(11, 1, 'Broken Badge', NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v\n%s", err, stmt)
		}
	}

	store := sqlite.NewStore(db)
	return NewService(store), store, db
}

func registerPlayer(t *testing.T, store *sqlite.Store, playerID, gameID int64) int64 {
	t.Helper()
	now := time.Now()
	id, err := store.Registrations().Create(context.Background(), &domain.PlayerRegistration{
		PlayerID:  playerID,
		GameID:    gameID,
		Language:  "en",
		GameState: json.RawMessage(`{}`),
		SavedAt:   now,
		JoinedAt:  now,
	})
	if err != nil {
		t.Fatalf("register player %d in game %d: %v", playerID, gameID, err)
	}
	return id
}

// solve inserts a correct submission row directly, bypassing the service.
func solve(t *testing.T, db *sqlite.DB, playerID, exerciseID, gameID int64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO submissions (exercise_id, game_id, player_id, result, first_solution, entered_at, submitted_at)
		VALUES (?, ?, ?, 1, 1, ?, ?)`,
		exerciseID, gameID, playerID, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("insert solved submission: %v", err)
	}
}

func countRows(t *testing.T, db *sqlite.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

// capturingPublisher records published events and optionally fails.
type capturingPublisher struct {
	events []*SolvedEvent
	err    error
}

func (p *capturingPublisher) PublishSolved(_ context.Context, ev *SolvedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

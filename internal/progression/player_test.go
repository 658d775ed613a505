package progression

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

func TestJoinGame(t *testing.T) {
	svc, _, db := newTestEngine(t)
	ctx := context.Background()

	id, err := svc.JoinGame(ctx, 1, 1, "en")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if id == 0 {
		t.Error("registration id should be non-zero")
	}

	var progress int
	var state string
	if err := db.QueryRow(
		"SELECT progress, game_state FROM player_registrations WHERE id = ?", id).
		Scan(&progress, &state); err != nil {
		t.Fatal(err)
	}
	if progress != 0 || state != "{}" {
		t.Errorf("fresh registration progress = %d state = %s", progress, state)
	}

	if _, err := svc.JoinGame(ctx, 1, 1, "en"); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Errorf("double join error = %v, want ErrAlreadyRegistered", err)
	}
	if _, err := svc.JoinGame(ctx, 999, 1, "en"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown player join error = %v, want ErrNotFound", err)
	}
}

func TestSaveAndLoadGame(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	id, err := svc.JoinGame(ctx, 1, 1, "en")
	if err != nil {
		t.Fatal(err)
	}

	state := json.RawMessage(`{"checkpoint": "level-3"}`)
	if err := svc.SaveGame(ctx, id, state); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := svc.LoadGame(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != string(state) {
		t.Errorf("loaded state = %s, want %s", got, state)
	}

	if err := svc.SaveGame(ctx, 999, state); !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Errorf("save to missing registration error = %v, want ErrRegistrationNotFound", err)
	}
	if _, err := svc.LoadGame(ctx, 999); !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Errorf("load of missing registration error = %v, want ErrRegistrationNotFound", err)
	}
}

func TestLeaveGame(t *testing.T) {
	svc, _, db := newTestEngine(t)
	ctx := context.Background()

	if _, err := svc.JoinGame(ctx, 1, 1, "en"); err != nil {
		t.Fatal(err)
	}

	if err := svc.LeaveGame(ctx, 1, 1); err != nil {
		t.Fatalf("leave: %v", err)
	}

	// The registration survives with left_at set.
	if n := countRows(t, db,
		"SELECT COUNT(*) FROM player_registrations WHERE player_id = 1 AND game_id = 1 AND left_at IS NOT NULL"); n != 1 {
		t.Errorf("left registrations = %d, want 1", n)
	}

	if err := svc.LeaveGame(ctx, 1, 1); !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Errorf("leaving twice error = %v, want ErrRegistrationNotFound", err)
	}
	if err := svc.LeaveGame(ctx, 2, 1); !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Errorf("leaving without joining error = %v, want ErrRegistrationNotFound", err)
	}
}

func TestSetGameLanguage(t *testing.T) {
	svc, _, db := newTestEngine(t)
	ctx := context.Background()

	if _, err := svc.JoinGame(ctx, 1, 1, "en"); err != nil {
		t.Fatal(err)
	}

	if err := svc.SetGameLanguage(ctx, 1, 1, "fr"); err != nil {
		t.Fatalf("set language: %v", err)
	}
	var lang string
	if err := db.QueryRow(
		"SELECT language FROM player_registrations WHERE player_id = 1 AND game_id = 1").
		Scan(&lang); err != nil {
		t.Fatal(err)
	}
	if lang != "fr" {
		t.Errorf("language = %q, want fr", lang)
	}

	if err := svc.SetGameLanguage(ctx, 1, 1, "de"); !errors.Is(err, domain.ErrLanguageNotAllowed) {
		t.Errorf("disallowed language error = %v, want ErrLanguageNotAllowed", err)
	}
	if err := svc.SetGameLanguage(ctx, 2, 1, "en"); !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Errorf("unregistered player error = %v, want ErrRegistrationNotFound", err)
	}
}

func TestPlayerGames(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := svc.JoinGame(ctx, 1, 1, "en")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.JoinGame(ctx, 1, 2, "en")
	if err != nil {
		t.Fatal(err)
	}

	ids, err := svc.PlayerGames(ctx, 1, false)
	if err != nil {
		t.Fatalf("player games: %v", err)
	}
	if len(ids) != 2 || ids[0] != first || ids[1] != second {
		t.Errorf("ids = %v, want [%d %d]", ids, first, second)
	}

	if err := svc.LeaveGame(ctx, 1, 1); err != nil {
		t.Fatal(err)
	}
	active, err := svc.PlayerGames(ctx, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0] != second {
		t.Errorf("active ids = %v, want [%d]", active, second)
	}

	if _, err := svc.PlayerGames(ctx, 999, false); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("unknown player error = %v, want ErrPlayerNotFound", err)
	}
}

func TestGameMetadata(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	id, err := svc.JoinGame(ctx, 1, 1, "en")
	if err != nil {
		t.Fatal(err)
	}

	meta, err := svc.GameMetadata(ctx, id)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.RegistrationID != id || meta.GameID != 1 || meta.GameTitle != "Full Policy" {
		t.Errorf("metadata = %+v", meta)
	}
	if !meta.GameActive {
		t.Error("game 1 is active")
	}

	if _, err := svc.GameMetadata(ctx, 999); !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Errorf("missing registration error = %v, want ErrRegistrationNotFound", err)
	}
}

package progression

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

// JoinGame registers a player in a game and returns the registration ID.
// Joining twice yields ErrAlreadyRegistered; a missing player or game
// yields ErrNotFound.
func (s *Service) JoinGame(ctx context.Context, playerID, gameID int64, language string) (int64, error) {
	now := time.Now()
	reg := &domain.PlayerRegistration{
		PlayerID:  playerID,
		GameID:    gameID,
		Language:  language,
		Progress:  0,
		GameState: json.RawMessage(`{}`),
		SavedAt:   now,
		JoinedAt:  now,
	}

	id, err := s.store.Registrations().Create(ctx, reg)
	if err != nil {
		return 0, fmt.Errorf("join game %d as player %d: %w", gameID, playerID, err)
	}

	slog.Info("player joined game",
		"player_id", playerID,
		"game_id", gameID,
		"registration_id", id,
	)
	return id, nil
}

// SaveGame overwrites the opaque game-state blob of a registration.
func (s *Service) SaveGame(ctx context.Context, registrationID int64, state json.RawMessage) error {
	affected, err := s.store.Registrations().SaveState(ctx, registrationID, state, time.Now())
	if err != nil {
		return fmt.Errorf("save game state: %w", err)
	}
	switch affected {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("registration %d: %w", registrationID, domain.ErrRegistrationNotFound)
	default:
		return fmt.Errorf("save affected %d rows, expected 1: %w", affected, domain.ErrInternal)
	}
}

// LoadGame returns the saved game-state blob of a registration.
func (s *Service) LoadGame(ctx context.Context, registrationID int64) (json.RawMessage, error) {
	state, err := s.store.Registrations().State(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("load game state for registration %d: %w", registrationID, err)
	}
	return state, nil
}

// LeaveGame soft-leaves the player's active registration in a game by
// setting its left_at marker. The registration row is kept.
func (s *Service) LeaveGame(ctx context.Context, playerID, gameID int64) error {
	affected, err := s.store.Registrations().MarkLeft(ctx, playerID, gameID, time.Now())
	if err != nil {
		return fmt.Errorf("leave game: %w", err)
	}
	switch affected {
	case 1:
		slog.Info("player left game", "player_id", playerID, "game_id", gameID)
		return nil
	case 0:
		return fmt.Errorf("no active registration for player %d in game %d: %w", playerID, gameID, domain.ErrRegistrationNotFound)
	default:
		return fmt.Errorf("leave affected %d rows, expected 0 or 1: %w", affected, domain.ErrInternal)
	}
}

// SetGameLanguage changes the registration's language after validating it
// against the languages allowed by the game's course.
func (s *Service) SetGameLanguage(ctx context.Context, playerID, gameID int64, language string) error {
	allowed, err := s.store.Games().AllowedLanguages(ctx, playerID, gameID)
	if err != nil {
		return fmt.Errorf("read allowed languages: %w", err)
	}

	found := false
	for _, lang := range allowed {
		if strings.TrimSpace(lang) == language {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("language %q for game %d: %w", language, gameID, domain.ErrLanguageNotAllowed)
	}

	affected, err := s.store.Registrations().SetLanguage(ctx, playerID, gameID, language)
	if err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	if affected != 1 {
		// The registration was just read through the language check, so
		// anything but one row is an inconsistency.
		return fmt.Errorf("language update affected %d rows, expected 1: %w", affected, domain.ErrInternal)
	}
	return nil
}

// PlayerGames lists the player's registration IDs. With onlyActive set,
// registrations the player has left and registrations in inactive games
// are filtered out.
func (s *Service) PlayerGames(ctx context.Context, playerID int64, onlyActive bool) ([]int64, error) {
	exists, err := s.store.Players().Exists(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("check player: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("player %d: %w", playerID, domain.ErrPlayerNotFound)
	}

	ids, err := s.store.Registrations().IDsByPlayer(ctx, playerID, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return ids, nil
}

// GameMetadata returns the registration/game join for one registration.
func (s *Service) GameMetadata(ctx context.Context, registrationID int64) (*domain.GameMetadata, error) {
	meta, err := s.store.Registrations().Metadata(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("load game metadata for registration %d: %w", registrationID, err)
	}
	return meta, nil
}

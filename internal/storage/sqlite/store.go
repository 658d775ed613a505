package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

// Store implements domain.Store over a SQLite database. A Store from
// NewStore runs each call on the shared connection; Begin returns a copy
// bound to one transaction.
type Store struct {
	db *DB
	tx *sql.Tx

	players       *PlayerStore
	games         *GameStore
	exercises     *ExerciseStore
	registrations *RegistrationStore
	submissions   *SubmissionStore
	rewards       *RewardStore
	unlocks       *UnlockStore
}

// NewStore creates a store over an open database.
func NewStore(db *DB) *Store {
	return newStore(db, nil)
}

// newStore wires the sub-stores up front. The pool-bound store is shared
// across goroutines, so the fields must never be written after construction.
func newStore(db *DB, tx *sql.Tx) *Store {
	s := &Store{db: db, tx: tx}
	s.players = &PlayerStore{s: s}
	s.games = &GameStore{s: s}
	s.exercises = &ExerciseStore{s: s}
	s.registrations = &RegistrationStore{s: s}
	s.submissions = &SubmissionStore{s: s}
	s.rewards = &RewardStore{s: s}
	s.unlocks = &UnlockStore{s: s}
	return s
}

// dbtx is the subset of sql.DB and sql.Tx the sub-stores run against.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) q() dbtx {
	if s.tx != nil {
		return s.tx
	}
	return s.db.DB
}

// Begin starts a transaction-bound copy of the store. The single-connection
// pool makes concurrent transactions fully serialized.
func (s *Store) Begin(ctx context.Context) (domain.Store, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newStore(s.db, tx), nil
}

// Commit commits the transaction; outside a transaction it is a no-op.
func (s *Store) Commit() error {
	if s.tx == nil {
		return nil
	}
	return s.tx.Commit()
}

// Rollback rolls back the transaction; outside a transaction it is a no-op.
func (s *Store) Rollback() error {
	if s.tx == nil {
		return nil
	}
	return s.tx.Rollback()
}

// Players returns the player store.
func (s *Store) Players() domain.PlayerStore { return s.players }

// Games returns the game store.
func (s *Store) Games() domain.GameStore { return s.games }

// Exercises returns the exercise store.
func (s *Store) Exercises() domain.ExerciseStore { return s.exercises }

// Registrations returns the registration store.
func (s *Store) Registrations() domain.RegistrationStore { return s.registrations }

// Submissions returns the submission store.
func (s *Store) Submissions() domain.SubmissionStore { return s.submissions }

// Rewards returns the reward store.
func (s *Store) Rewards() domain.RewardStore { return s.rewards }

// Unlocks returns the unlock store.
func (s *Store) Unlocks() domain.UnlockStore { return s.unlocks }

func isForeignKeyViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// Ensure Store implements the domain contract.
var _ domain.Store = (*Store)(nil)

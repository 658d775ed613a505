package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

// Store implements domain.Store over a PostgreSQL pool. Begin returns a
// copy bound to a serializable transaction, so concurrent submission
// processing for the same rows resolves to one winner.
type Store struct {
	db *DB
	tx pgx.Tx

	players       *PlayerStore
	games         *GameStore
	exercises     *ExerciseStore
	registrations *RegistrationStore
	submissions   *SubmissionStore
	rewards       *RewardStore
	unlocks       *UnlockStore
}

// NewStore creates a store over an open pool.
func NewStore(db *DB) *Store {
	return newStore(db, nil)
}

// newStore wires the sub-stores up front. The pool-bound store is shared
// across goroutines, so the fields must never be written after construction.
func newStore(db *DB, tx pgx.Tx) *Store {
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

// querier is the subset of pgxpool.Pool and pgx.Tx the sub-stores run
// against.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) q() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db.Pool
}

// Begin starts a serializable transaction-bound copy of the store.
func (s *Store) Begin(ctx context.Context) (domain.Store, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
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
	return s.tx.Commit(context.Background())
}

// Rollback rolls back the transaction; outside a transaction it is a no-op.
func (s *Store) Rollback() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback(context.Background())
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
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
	var perr *pgconn.PgError
	return errors.As(err, &perr) && perr.Code == "23503"
}

func isUniqueViolation(err error) bool {
	var perr *pgconn.PgError
	return errors.As(err, &perr) && perr.Code == "23505"
}

// Ensure Store implements the domain contract.
var _ domain.Store = (*Store)(nil)

package progression

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

func TestVisibilityNoGates(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	registerPlayer(t, store, 1, 2)

	vis, err := svc.ExerciseVisibility(ctx, 2, 2, 1)
	if err != nil {
		t.Fatalf("visibility: %v", err)
	}
	if vis.Hidden || vis.Locked {
		t.Errorf("visibility in a gate-free game = %+v, want open", vis)
	}
}

func TestVisibilityModuleGate(t *testing.T) {
	svc, store, db := newTestEngine(t)
	ctx := context.Background()
	registerPlayer(t, store, 1, 3) // game 3: module gate 0.5, no sequential gate

	// 0 of 2 exercises solved: 0 < 0.5 locks.
	vis, err := svc.ExerciseVisibility(ctx, 2, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !vis.Locked {
		t.Error("module gate should lock with nothing solved")
	}

	// 1 of 2 solved: 0.5 >= 0.5, the boundary is inclusive toward
	// unlocking.
	solve(t, db, 1, 1, 3)
	vis, err = svc.ExerciseVisibility(ctx, 2, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if vis.Locked {
		t.Error("reaching the threshold exactly should unlock")
	}
}

func TestVisibilityModuleGatePerPlayer(t *testing.T) {
	svc, store, db := newTestEngine(t)
	ctx := context.Background()
	registerPlayer(t, store, 1, 3)
	registerPlayer(t, store, 2, 3)

	solve(t, db, 1, 1, 3)

	vis, err := svc.ExerciseVisibility(ctx, 2, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if vis.Locked {
		t.Error("player 1 met the threshold")
	}

	vis, err = svc.ExerciseVisibility(ctx, 2, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !vis.Locked {
		t.Error("player 2 solved nothing, the gate should still lock")
	}
}

func TestVisibilitySequentialGate(t *testing.T) {
	svc, store, db := newTestEngine(t)
	ctx := context.Background()
	registerPlayer(t, store, 1, 4) // game 4: sequential gate only

	// Exercise 1 has order 1, the gate never applies to it.
	vis, err := svc.ExerciseVisibility(ctx, 1, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if vis.Locked {
		t.Error("first exercise in order should not be sequentially locked")
	}

	// Exercise 2 is locked until its predecessor is solved.
	vis, err = svc.ExerciseVisibility(ctx, 2, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !vis.Locked {
		t.Error("successor should be locked before the predecessor is solved")
	}

	solve(t, db, 1, 1, 4)
	vis, err = svc.ExerciseVisibility(ctx, 2, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if vis.Locked {
		t.Error("successor should unlock once the predecessor is solved")
	}
}

func TestVisibilityAuthoredFlags(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	registerPlayer(t, store, 1, 2)

	// Exercise 3 is authored hidden.
	vis, err := svc.ExerciseVisibility(ctx, 3, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !vis.Hidden {
		t.Error("authored hidden flag should show through")
	}

	// Exercise 4 is authored locked, even in a gate-free game.
	vis, err = svc.ExerciseVisibility(ctx, 4, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !vis.Locked {
		t.Error("authored locked flag should show through")
	}
}

func TestVisibilityUnlockOverride(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	registerPlayer(t, store, 1, 2)

	if err := store.Unlocks().Insert(ctx, 1, 3, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := store.Unlocks().Insert(ctx, 1, 4, time.Now()); err != nil {
		t.Fatal(err)
	}

	vis, err := svc.ExerciseVisibility(ctx, 3, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if vis.Hidden {
		t.Error("an unlock should clear the hidden flag")
	}

	vis, err = svc.ExerciseVisibility(ctx, 4, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if vis.Locked {
		t.Error("an unlock should clear the locked flag")
	}
}

func TestVisibilityUnlockOverridesGates(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	registerPlayer(t, store, 1, 1) // game 1 has both gates active

	if err := svc.UnlockExercise(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}

	vis, err := svc.ExerciseVisibility(ctx, 2, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if vis.Locked || vis.Hidden {
		t.Errorf("unlock should override every gate, got %+v", vis)
	}
}

func TestVisibilityMissingRows(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := svc.ExerciseVisibility(ctx, 999, 1, 1); !errors.Is(err, domain.ErrExerciseNotFound) {
		t.Errorf("missing exercise error = %v, want ErrExerciseNotFound", err)
	}
	if _, err := svc.ExerciseVisibility(ctx, 1, 999, 1); !errors.Is(err, domain.ErrGameNotFound) {
		t.Errorf("missing game error = %v, want ErrGameNotFound", err)
	}
}

func TestExerciseData(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	registerPlayer(t, store, 1, 4)

	data, err := svc.ExerciseData(ctx, 2, 4, 1)
	if err != nil {
		t.Fatalf("exercise data: %v", err)
	}
	if data.Title != "Loops" || data.Order != 2 {
		t.Errorf("data = %+v", data)
	}
	if !data.Locked {
		t.Error("payload should carry the resolved locked flag")
	}
	if data.Hidden {
		t.Error("exercise 2 is not hidden")
	}
}

func TestUnlockExerciseIdempotent(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()

	if err := svc.UnlockExercise(ctx, 1, 1); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := svc.UnlockExercise(ctx, 1, 1); err != nil {
		t.Fatalf("repeat unlock should be a no-op, got %v", err)
	}

	exists, err := store.Unlocks().Exists(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("unlock should be recorded")
	}
}

func TestVisibilityConcurrentQueries(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	registerPlayer(t, store, 1, 2)

	// Run the first-ever queries against a fresh store in parallel; the
	// race detector flags any store state mutated after construction.
	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vis, err := svc.ExerciseVisibility(ctx, 1, 2, 1)
			if err == nil && (vis.Hidden || vis.Locked) {
				err = fmt.Errorf("visibility = %+v, want open", vis)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent visibility: %v", err)
		}
	}
}

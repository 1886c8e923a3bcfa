package tempo

import (
	"errors"
	"testing"
)

func TestYieldPendingExactlyOnce(t *testing.T) {
	var y Yield

	if _, done, err := y.Resume(); done || err != nil {
		t.Fatal("first resume must suspend")
	}
	if _, done, err := y.Resume(); !done || err != nil {
		t.Fatal("second resume must complete")
	}
	if _, done, _ := y.Resume(); !done {
		t.Fatal("a finished yield stays done")
	}
}

func TestCheckpointPassesWhenNotCancelled(t *testing.T) {
	cp := NewCheckpoint(NewCancellationToken())

	if _, done, err := cp.Resume(); done || err != nil {
		t.Fatal("first resume of an uncancelled checkpoint must suspend")
	}
	if _, done, err := cp.Resume(); !done || err != nil {
		t.Fatal("second resume must complete without error")
	}
}

func TestCheckpointObservesCancellationBetweenResumes(t *testing.T) {
	token := NewCancellationToken()
	cp := NewCheckpoint(token)

	if _, done, _ := cp.Resume(); done {
		t.Fatal("first resume must suspend")
	}
	token.Cancel()
	if _, done, err := cp.Resume(); !done || !errors.Is(err, ErrCancelled) {
		t.Fatalf("resume after cancel must finish with ErrCancelled, got done=%v err=%v", done, err)
	}
}

func TestCheckpointCancelledUpFront(t *testing.T) {
	token := NewCancellationToken()
	token.Cancel()

	cp := NewCheckpoint(token)
	if _, done, err := cp.Resume(); !done || !errors.Is(err, ErrCancelled) {
		t.Fatal("a checkpoint on a cancelled token must fail on its first resume")
	}
}

func TestTokenCopiesShareFlag(t *testing.T) {
	token := NewCancellationToken()
	copied := token

	copied.Cancel()
	if !token.Cancelled() {
		t.Error("cancelling a copy must cancel the original")
	}
	if !errors.Is(token.Err(), ErrCancelled) {
		t.Error("Err must report ErrCancelled once set")
	}
}

func TestCompleteFinishesFirstResume(t *testing.T) {
	step := Complete(func() (any, error) { return 7, nil })

	v, done, err := step.Resume()
	if !done || err != nil || v != any(7) {
		t.Fatalf("expected (7, true, nil), got (%v, %v, %v)", v, done, err)
	}
}

package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSnapshot struct {
	mu       sync.Mutex
	saves    [][]byte
	failures int
}

func (f *fakeSnapshot) Load(context.Context) ([]byte, error) { return nil, nil }

func (f *fakeSnapshot) Save(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("backend down")
	}
	f.saves = append(f.saves, append([]byte(nil), data...))
	return nil
}

func (f *fakeSnapshot) Close() error { return nil }

func (f *fakeSnapshot) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeSnapshot) lastSave() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil
	}
	return f.saves[len(f.saves)-1]
}

func stateWithUser(name string) models.AppState {
	return models.AppState{
		Users: []models.User{{ID: "u1", Name: name, Email: "u@pos.com", Role: models.RoleAdmin, IsActive: true}},
	}
}

func TestWorkerSavesEnqueuedState(t *testing.T) {
	snap := &fakeSnapshot{}
	w := NewSnapshotWorker(snap)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Start(ctx)
		close(done)
	}()

	w.Enqueue(stateWithUser("first"))

	require.Eventually(t, func() bool { return snap.saveCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	decoded := state.DecodeState(snap.lastSave(), zap.NewNop())
	require.Len(t, decoded.Users, 1)
	assert.Equal(t, "first", decoded.Users[0].Name)
}

func TestWorkerCoalescesBursts(t *testing.T) {
	snap := &fakeSnapshot{}
	w := NewSnapshotWorker(snap)

	// enqueue before the loop runs: only the newest survives
	w.Enqueue(stateWithUser("stale"))
	w.Enqueue(stateWithUser("newer"))
	w.Enqueue(stateWithUser("newest"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return snap.saveCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, 1, snap.saveCount())
	decoded := state.DecodeState(snap.lastSave(), zap.NewNop())
	assert.Equal(t, "newest", decoded.Users[0].Name)
}

func TestWorkerRetriesFailedSaves(t *testing.T) {
	snap := &fakeSnapshot{failures: 2}
	w := NewSnapshotWorker(snap)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Start(ctx)
		close(done)
	}()

	w.Enqueue(stateWithUser("persistent"))

	// two failures then success on the third attempt
	require.Eventually(t, func() bool { return snap.saveCount() == 1 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-done

	decoded := state.DecodeState(snap.lastSave(), zap.NewNop())
	assert.Equal(t, "persistent", decoded.Users[0].Name)
}

func TestWorkerFlushesPendingOnShutdown(t *testing.T) {
	snap := &fakeSnapshot{}
	w := NewSnapshotWorker(snap)

	// never started before cancel: the flush path must still write it
	w.Enqueue(stateWithUser("final"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, snap.saveCount())
	decoded := state.DecodeState(snap.lastSave(), zap.NewNop())
	assert.Equal(t, "final", decoded.Users[0].Name)
}

func TestWorkerGivesUpAfterRetriesWithoutBlocking(t *testing.T) {
	snap := &fakeSnapshot{failures: 100}
	w := NewSnapshotWorker(snap)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Start(ctx)
		close(done)
	}()

	w.Enqueue(stateWithUser("doomed"))

	// a broken backend must not wedge the loop; a later enqueue still works
	time.Sleep(100 * time.Millisecond)
	w.Enqueue(stateWithUser("also doomed"))
	time.Sleep(100 * time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}

	assert.Zero(t, snap.saveCount())
}

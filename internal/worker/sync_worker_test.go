package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hearth/internal/amqp"
	"hearth/internal/budget"
	"hearth/internal/simplefin"
	"hearth/internal/storage"
)

type fakeSource struct {
	set *simplefin.AccountSet
	err error
}

func (f *fakeSource) FetchAccounts(ctx context.Context, accessURL string, since time.Time) (*simplefin.AccountSet, error) {
	return f.set, f.err
}

func newTestWorker(t *testing.T, source *fakeSource) (*SyncWorker, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "hearth.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewSyncWorker(budget.NewSyncer(store, source, 30*24*time.Hour)), store
}

func TestHandleSyncRequestDropsWhenUnlinked(t *testing.T) {
	w, _ := newTestWorker(t, &fakeSource{set: &simplefin.AccountSet{}})

	// No bank link: the message must be acked (nil), not requeued forever.
	msg := amqp.NewSyncRequestMessage(amqp.ReasonManual)
	if err := w.HandleSyncRequest(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncRequest = %v, want nil", err)
	}
}

func TestHandleSyncRequestImports(t *testing.T) {
	source := &fakeSource{set: &simplefin.AccountSet{
		Accounts: []simplefin.Account{{
			ID:      "acc-1",
			Name:    "Chequing",
			Org:     simplefin.Organization{Name: "Big Bank"},
			Balance: "1500.00",
			Transactions: []simplefin.Transaction{
				{ID: "t1", Posted: time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC).Unix(), Amount: "-25.00", Description: "Coffee"},
			},
		}},
	}}
	w, store := newTestWorker(t, source)
	ctx := context.Background()

	if err := store.SetSimpleFinAccessURL(ctx, "https://u:p@bridge.example/simplefin"); err != nil {
		t.Fatalf("SetSimpleFinAccessURL: %v", err)
	}

	msg := amqp.NewSyncRequestMessage(amqp.ReasonScheduled)
	if err := w.HandleSyncRequest(ctx, msg); err != nil {
		t.Fatalf("HandleSyncRequest = %v", err)
	}

	txns, err := store.OnBudgetTransactions(ctx)
	if err != nil {
		t.Fatalf("OnBudgetTransactions: %v", err)
	}
	if len(txns) != 1 || txns[0].ID != "acc-1-t1" {
		t.Fatalf("transactions = %+v", txns)
	}
}

func TestHandleSyncRequestPropagatesUpstreamErrors(t *testing.T) {
	w, store := newTestWorker(t, &fakeSource{err: errors.New("bridge down")})
	ctx := context.Background()

	if err := store.SetSimpleFinAccessURL(ctx, "https://u:p@bridge.example/simplefin"); err != nil {
		t.Fatalf("SetSimpleFinAccessURL: %v", err)
	}

	// Upstream failures surface so the consumer requeues the message.
	msg := amqp.NewSyncRequestMessage(amqp.ReasonManual)
	if err := w.HandleSyncRequest(ctx, msg); !errors.Is(err, budget.ErrUpstream) {
		t.Fatalf("HandleSyncRequest = %v, want ErrUpstream", err)
	}
}

func TestRunScheduledStopsOnCancel(t *testing.T) {
	w, _ := newTestWorker(t, &fakeSource{set: &simplefin.AccountSet{}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.RunScheduled(ctx, time.Hour)
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("RunScheduled = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunScheduled did not stop after cancel")
	}
}

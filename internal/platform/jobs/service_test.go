package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
	called  chan struct{}
}

func (f *fakePruner) Prune(cutoff time.Time) (int, error) {
	f.mu.Lock()
	f.cutoffs = append(f.cutoffs, cutoff)
	f.mu.Unlock()
	if f.called != nil {
		select {
		case f.called <- struct{}{}:
		default:
		}
	}
	return 2, f.err
}

func TestPruneReportsUsesRetentionCutoff(t *testing.T) {
	pruner := &fakePruner{}
	svc := New(pruner, 48*time.Hour, time.Hour)
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	details, err := svc.RunNow(context.Background(), JobReportRetention, svc.PruneReports)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details["deleted"] != 2 {
		t.Fatalf("unexpected details %#v", details)
	}
	if len(pruner.cutoffs) != 1 || !pruner.cutoffs[0].Equal(now.Add(-48*time.Hour)) {
		t.Fatalf("unexpected cutoff %v", pruner.cutoffs)
	}
}

func TestRunNowReturnsJobError(t *testing.T) {
	svc := New(&fakePruner{err: errors.New("permission denied")}, time.Hour, time.Hour)
	if _, err := svc.RunNow(context.Background(), JobReportRetention, svc.PruneReports); err == nil {
		t.Fatalf("expected the prune error")
	}
}

func TestScheduledRetentionStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	pruner := &fakePruner{called: make(chan struct{}, 1)}
	svc := New(pruner, time.Hour, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)

	select {
	case <-pruner.called:
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatalf("retention job never ran")
	}
	cancel()
	time.Sleep(50 * time.Millisecond)
}

func TestEnqueueReportsFullQueue(t *testing.T) {
	svc := New(nil, 0, 0)
	run := func(context.Context) (map[string]any, error) { return nil, nil }
	for i := 0; i < cap(svc.queue); i++ {
		if !svc.Enqueue("noop", run) {
			t.Fatalf("enqueue %d should fit", i)
		}
	}
	if svc.Enqueue("noop", run) {
		t.Fatalf("expected a full queue to reject")
	}
}

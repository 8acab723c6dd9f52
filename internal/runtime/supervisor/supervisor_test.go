package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestGoCancelOnError(t *testing.T) {
	sup := New(context.Background(), WithCancelOnError(true))
	boom := errors.New("boom")

	sup.Go("fails", func(ctx context.Context) error { return boom })
	sup.Go0("waits", func(ctx context.Context) { <-ctx.Done() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := sup.Wait(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("Wait() = %v, want wrapped boom", err)
	}
	if sup.Context().Err() == nil {
		t.Fatal("expected supervisor context to be canceled")
	}
}

func TestGoRecoversPanic(t *testing.T) {
	sup := New(context.Background())
	sup.Go0("panics", func(ctx context.Context) { panic("oops") })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sup.Wait(ctx); err == nil {
		t.Fatal("expected panic to surface as error")
	}
	if got := sup.Counters().Active; got != 0 {
		t.Fatalf("active = %d, want 0", got)
	}
}

func TestGoRestartRestartsUntilCanceled(t *testing.T) {
	sup := New(context.Background())
	var runs atomic.Int32
	sup.GoRestart("flaky", func(ctx context.Context) error {
		if runs.Add(1) >= 3 {
			<-ctx.Done()
			return nil
		}
		return errors.New("transient")
	}, WithRestartBackoff(time.Millisecond, 5*time.Millisecond))

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() < 3 {
		t.Fatalf("runs = %d, want >= 3", runs.Load())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sup.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
}

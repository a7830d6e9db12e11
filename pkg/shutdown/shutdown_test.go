//go:build unix

package shutdown

import (
	"context"
	"syscall"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestWithSignalsCancelsOnSignal(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := WithSignals(context.Background(), syscall.SIGUSR1)
	defer cancel()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by signal")
	}
}

func TestWithSignalsStopsWithParent(t *testing.T) {
	defer goleak.VerifyNone(t)

	parent, stop := context.WithCancel(context.Background())
	ctx, cancel := WithSignals(parent, syscall.SIGUSR2)
	defer cancel()

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled with parent")
	}
}

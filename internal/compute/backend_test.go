package compute

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/san-kum/mandelscope/internal/fractal"
)

func TestRowsVisitEachRowOnce(t *testing.T) {
	backends := []Backend{
		NewSerialBackend(),
		NewCPUBackend(1),
		NewCPUBackend(4),
		NewCPUBackend(64),
	}
	heights := []int{0, 1, 15, 16, 17, 100, 1001}

	for _, b := range backends {
		for _, h := range heights {
			visits := make([]int32, h)
			err := b.Rows(context.Background(), h, func(y int) {
				atomic.AddInt32(&visits[y], 1)
			})
			if err != nil {
				t.Fatalf("%s height=%d: %v", b.Name(), h, err)
			}
			for y, n := range visits {
				if n != 1 {
					t.Fatalf("%s height=%d: row %d visited %d times", b.Name(), h, y, n)
				}
			}
		}
	}
}

func TestRowsCanceled(t *testing.T) {
	for _, b := range []Backend{NewSerialBackend(), NewCPUBackend(4)} {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls int32
		err := b.Rows(ctx, 500, func(y int) { atomic.AddInt32(&calls, 1) })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", b.Name(), err)
		}
		if calls != 0 {
			t.Errorf("%s: %d rows ran after cancel", b.Name(), calls)
		}
	}
}

func TestRowsCanceledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	err := NewSerialBackend().Rows(ctx, 100, func(y int) {
		if atomic.AddInt32(&calls, 1) == 10 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 10 {
		t.Errorf("expected 10 rows before stopping, got %d", calls)
	}
}

func TestGetBackend(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"cpu", "cpu"},
		{"serial", "serial"},
	}
	for _, tt := range tests {
		b, err := GetBackend(tt.name, 2)
		if err != nil {
			t.Fatalf("GetBackend(%q): %v", tt.name, err)
		}
		if b.Name() != tt.want {
			t.Errorf("GetBackend(%q).Name() = %s", tt.name, b.Name())
		}
		b.Cleanup()
	}

	_, err := GetBackend("cuda", 0)
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
	if !errors.Is(err, fractal.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	if b, err := GetBackend("", 0); err != nil || !b.Available() {
		t.Errorf("auto-selected backend should be available: %v %v", b, err)
	}
}

func TestCPUBackendWorkers(t *testing.T) {
	if NewCPUBackend(0).Workers() < 1 {
		t.Error("zero workers should default to NumCPU")
	}
	if got := NewCPUBackend(3).Workers(); got != 3 {
		t.Errorf("Workers() = %d, want 3", got)
	}
	if NewCPUBackend(1).Available() {
		t.Error("a single-worker cpu backend should not report itself available")
	}
}

package compute

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/mandelscope/internal/fractal"
)

// Backend runs a per-row function over [0, height). Implementations may call fn from
// several goroutines at once but never twice for the same row.
type Backend interface {
	Name() string
	Available() bool
	Rows(ctx context.Context, height int, fn func(y int)) error
	Cleanup()
}

var backends = map[string]func(workers int) Backend{
	"cpu":    func(workers int) Backend { return NewCPUBackend(workers) },
	"serial": func(int) Backend { return NewSerialBackend() },
}

// GetBackend returns the backend registered under name. workers only applies to cpu;
// zero means one per CPU.
func GetBackend(name string, workers int) (Backend, error) {
	if name == "" {
		return AutoSelectBackend(workers), nil
	}
	if err := CheckBackend(name); err != nil {
		return nil, err
	}
	return backends[name](workers), nil
}

// CheckBackend accepts the empty name, which selects automatically, and every
// registered backend.
func CheckBackend(name string) error {
	if _, ok := backends[name]; ok || name == "" {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUnknownBackend, &fractal.ConfigError{
		Field:  "render.backend",
		Value:  name,
		Reason: fmt.Sprintf("must be one of %v", ListBackends()),
	})
}

func ListBackends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func AutoSelectBackend(workers int) Backend {
	cpu := NewCPUBackend(workers)
	if cpu.Available() {
		return cpu
	}
	return NewSerialBackend()
}

package compute

import "context"

type SerialBackend struct{}

func NewSerialBackend() *SerialBackend {
	return &SerialBackend{}
}

func (s *SerialBackend) Name() string    { return "serial" }
func (s *SerialBackend) Available() bool { return true }
func (s *SerialBackend) Cleanup()        {}

func (s *SerialBackend) Rows(ctx context.Context, height int, fn func(y int)) error {
	return serialRows(ctx, height, fn)
}

func serialRows(ctx context.Context, height int, fn func(y int)) error {
	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(y)
	}
	return nil
}

//go:build headless

package ebitenwin

import "context"

// Available reports whether this build can open a window.
const Available = false

// Run validates opts and returns ErrNoWindow.
func Run(ctx context.Context, opts Options) error {
	if err := opts.validate(ctx); err != nil {
		return err
	}
	return ErrNoWindow
}

// FallbackSize is unknown without a window backend.
func FallbackSize() (width, height int) {
	return 0, 0
}

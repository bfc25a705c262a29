package platform

// Unsupported returns an adapter whose every method fails with
// ErrUnsupported. It lets the overlay run degraded (no click-through, no
// cursor hiding) when the native backend is unavailable.
func Unsupported() Adapter {
	return unsupportedAdapter{}
}

type unsupportedAdapter struct{}

func (unsupportedAdapter) VirtualScreen() (Rect, error) { return Rect{}, ErrUnsupported }

func (unsupportedAdapter) CursorPosition() (int, int, error) { return 0, 0, ErrUnsupported }

func (unsupportedAdapter) FindWindow(string) (Handle, error) { return 0, ErrUnsupported }

func (unsupportedAdapter) ApplyWindowAttributes(Handle, WindowAttributes) error {
	return ErrUnsupported
}

func (unsupportedAdapter) ShowWindow(Handle) error { return ErrUnsupported }

func (unsupportedAdapter) InstallBlankCursors([]CursorShape) error { return ErrUnsupported }

func (unsupportedAdapter) RestoreCursors() error { return ErrUnsupported }

func (unsupportedAdapter) EnableDPIAwareness() error { return ErrUnsupported }

func (unsupportedAdapter) Close() error { return nil }

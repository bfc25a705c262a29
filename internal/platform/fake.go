package platform

import (
	"sync"
)

// Fake is an in-memory Adapter for tests. It models one desktop: a virtual
// screen, a pointer, a set of live windows and the system cursor visibility.
// All methods are safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	Screen Rect
	X, Y   int

	windows map[string]Handle
	live    map[Handle]bool
	hidden  map[Handle]bool
	applied map[Handle]WindowAttributes
	next    Handle

	cursorsHidden bool

	// Injected failures. A nil error means the call succeeds.
	ScreenErr  error
	CursorErr  error
	ApplyErr   error
	InstallErr error
	RestoreErr error
	DPIErr     error

	// Call counters.
	ApplyCalls   int
	ShowCalls    int
	InstallCalls int
	RestoreCalls int
	DPICalls     int
	Closed       bool
}

// NewFake returns a Fake with the given virtual screen.
func NewFake(screen Rect) *Fake {
	return &Fake{
		Screen:  screen,
		windows: make(map[string]Handle),
		live:    make(map[Handle]bool),
		hidden:  make(map[Handle]bool),
		applied: make(map[Handle]WindowAttributes),
		next:    0x100,
	}
}

// CreateWindow registers a live top-level window and returns its handle.
func (f *Fake) CreateWindow(title string) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	h := f.next
	f.windows[title] = h
	f.live[h] = true
	return h
}

// DestroyWindow invalidates h, as if another process closed it.
func (f *Fake) DestroyWindow(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, h)
	for title, wh := range f.windows {
		if wh == h {
			delete(f.windows, title)
		}
	}
}

// HideWindow marks h hidden, as if a window manager minimized it.
func (f *Fake) HideWindow(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden[h] = true
}

// StripAttributes clears the recorded attributes of h, as if another
// program reset its styles.
func (f *Fake) StripAttributes(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.applied, h)
}

// Attributes returns the attributes last applied to h.
func (f *Fake) Attributes(h Handle) (WindowAttributes, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.applied[h]
	return a, ok
}

// WindowVisible reports whether h is live and not hidden.
func (f *Fake) WindowVisible(h Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[h] && !f.hidden[h]
}

// CursorsHidden reports whether the system cursor is currently replaced.
func (f *Fake) CursorsHidden() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursorsHidden
}

// MoveCursor sets the pointer position in screen coordinates.
func (f *Fake) MoveCursor(x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.X, f.Y = x, y
}

func (f *Fake) VirtualScreen() (Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ScreenErr != nil {
		return Rect{}, f.ScreenErr
	}
	return f.Screen, nil
}

func (f *Fake) CursorPosition() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CursorErr != nil {
		return 0, 0, f.CursorErr
	}
	return f.X, f.Y, nil
}

func (f *Fake) FindWindow(title string) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.windows[title]
	if !ok {
		return 0, ErrNotFound
	}
	return h, nil
}

func (f *Fake) ApplyWindowAttributes(h Handle, attrs WindowAttributes) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ApplyCalls++
	if !f.live[h] {
		return ErrInvalidHandle
	}
	if f.ApplyErr != nil {
		return f.ApplyErr
	}
	f.applied[h] = attrs
	return nil
}

func (f *Fake) ShowWindow(h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ShowCalls++
	if !f.live[h] {
		return ErrInvalidHandle
	}
	delete(f.hidden, h)
	return nil
}

func (f *Fake) InstallBlankCursors(shapes []CursorShape) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InstallCalls++
	if f.InstallErr != nil {
		return f.InstallErr
	}
	f.cursorsHidden = true
	return nil
}

func (f *Fake) RestoreCursors() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RestoreCalls++
	if f.RestoreErr != nil {
		return f.RestoreErr
	}
	f.cursorsHidden = false
	return nil
}

func (f *Fake) EnableDPIAwareness() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DPICalls++
	return f.DPIErr
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

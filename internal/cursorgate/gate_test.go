package cursorgate

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"cursortrail/internal/platform"
)

func newFake() *platform.Fake {
	return platform.NewFake(platform.Rect{Width: 1920, Height: 1080})
}

func TestGate_HideShow(t *testing.T) {
	fake := newFake()
	g := New(fake, nil)

	assert.False(t, g.Hidden())

	g.Hide()
	assert.True(t, g.Hidden())
	assert.True(t, fake.CursorsHidden())

	g.Show()
	assert.False(t, g.Hidden())
	assert.False(t, fake.CursorsHidden())
}

func TestGate_Idempotent(t *testing.T) {
	fake := newFake()
	g := New(fake, nil)

	g.Hide()
	g.Hide()
	g.Hide()
	assert.Equal(t, 1, fake.InstallCalls)

	g.Show()
	g.Show()
	assert.Equal(t, 1, fake.RestoreCalls)
}

func TestGate_ShowWithoutHide(t *testing.T) {
	fake := newFake()
	g := New(fake, nil)

	g.Show()
	assert.Equal(t, 0, fake.RestoreCalls)
	assert.False(t, g.Hidden())
}

func TestGate_RestoreSeals(t *testing.T) {
	fake := newFake()
	g := New(fake, nil)

	g.Hide()
	g.Restore()
	assert.False(t, fake.CursorsHidden())

	// A tick racing with shutdown cannot hide the cursor again.
	g.Hide()
	assert.False(t, g.Hidden())
	assert.Equal(t, 1, fake.InstallCalls)
	assert.Equal(t, 1, fake.RestoreCalls)

	g.Restore()
	assert.Equal(t, 1, fake.RestoreCalls)
}

func TestGate_FailuresStillFlipState(t *testing.T) {
	fake := newFake()
	fake.InstallErr = errors.New("access denied")
	fake.RestoreErr = errors.New("access denied")
	g := New(fake, nil)

	g.Hide()
	assert.True(t, g.Hidden())
	assert.Equal(t, 1, fake.InstallCalls)

	// A failed install still counts as hidden, so Show must try to restore.
	g.Show()
	assert.False(t, g.Hidden())
	assert.Equal(t, 1, fake.RestoreCalls)
}

func TestGate_InstallsEveryShape(t *testing.T) {
	rec := &recordingCursors{}
	g := New(rec, nil)

	g.Hide()
	assert.Equal(t, platform.CursorShapes, rec.installed)
}

func TestGate_ConcurrentShow(t *testing.T) {
	fake := newFake()
	g := New(fake, nil)
	g.Hide()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Show()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fake.RestoreCalls)
	assert.False(t, fake.CursorsHidden())
}

type recordingCursors struct {
	installed []platform.CursorShape
}

func (r *recordingCursors) InstallBlankCursors(shapes []platform.CursorShape) error {
	r.installed = append(r.installed, shapes...)
	return nil
}

func (r *recordingCursors) RestoreCursors() error { return nil }

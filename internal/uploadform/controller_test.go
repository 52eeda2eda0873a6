package uploadform

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the controller's timers manually.
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	fn      func()
	fired   bool
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward, firing due timers in deadline order.
// Callbacks may schedule further timers; those are honored too.
func (c *fakeClock) Advance(d time.Duration) {
	target := c.now + d
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		next.fn()
	}
	c.now = target
	sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at < c.timers[j].at })
}

type fakeInput struct {
	file SelectedFile
	has  bool
}

func (f *fakeInput) Selected() (SelectedFile, bool) { return f.file, f.has }
func (f *fakeInput) Clear()                         { f.has = false; f.file = SelectedFile{} }

func (f *fakeInput) set(file SelectedFile) { f.file = file; f.has = true }

type fakeButton struct{ disabled bool }

func (b *fakeButton) SetDisabled(d bool) { b.disabled = d }

type fakeRegion struct{ visible bool }

func (r *fakeRegion) Show() { r.visible = true }
func (r *fakeRegion) Hide() { r.visible = false }

type fakeAlert struct {
	message  string
	danger   bool
	closed   int
	closeErr error
	host     *fakeHost
}

func (a *fakeAlert) Danger() bool { return a.danger }

func (a *fakeAlert) Close() error {
	a.closed++
	if a.closeErr != nil {
		return a.closeErr
	}
	if a.host != nil {
		a.host.Remove(a)
	}
	return nil
}

type fakeHost struct{ mounted []*fakeAlert }

func (h *fakeHost) Alerts() []Alert {
	out := make([]Alert, len(h.mounted))
	for i, a := range h.mounted {
		out[i] = a
	}
	return out
}

func (h *fakeHost) Remove(a Alert) {
	for i, m := range h.mounted {
		if m == a {
			h.mounted = append(h.mounted[:i], h.mounted[i+1:]...)
			return
		}
	}
}

func (h *fakeHost) ShowDanger(message string) Alert {
	a := &fakeAlert{message: message, danger: true, host: h}
	h.mounted = append(h.mounted, a)
	return a
}

func (h *fakeHost) mount(message string, danger bool) *fakeAlert {
	a := &fakeAlert{message: message, danger: danger, host: h}
	h.mounted = append(h.mounted, a)
	return a
}

type fakeIcons struct{ replaced int }

func (i *fakeIcons) Replace() { i.replaced++ }

type fixture struct {
	input   *fakeInput
	button  *fakeButton
	idle    *fakeRegion
	loading *fakeRegion
	host    *fakeHost
	icons   *fakeIcons
	clock   *fakeClock
	ctl     *Controller
}

func newFixture() *fixture {
	f := &fixture{
		input:   &fakeInput{},
		button:  &fakeButton{},
		idle:    &fakeRegion{visible: true},
		loading: &fakeRegion{visible: false},
		host:    &fakeHost{},
		icons:   &fakeIcons{},
		clock:   &fakeClock{},
	}
	f.ctl = New(f.input, f.button, f.idle, f.loading, f.host, f.icons, f.clock)
	return f
}

func validPDF(size int64) SelectedFile {
	return SelectedFile{Type: PDFContentType, Name: "deck.pdf", Size: size}
}

func TestHandleSubmit_NoFile(t *testing.T) {
	f := newFixture()

	ok := f.ctl.HandleSubmit()

	assert.False(t, ok, "submission should be prevented")
	require.Len(t, f.host.mounted, 1)
	assert.Equal(t, MsgMissingFile, f.host.mounted[0].message)
	assert.True(t, f.host.mounted[0].danger)
	assert.False(t, f.ctl.Loading())
	assert.False(t, f.button.disabled)
}

func TestHandleSubmit_InvalidType(t *testing.T) {
	f := newFixture()
	f.input.set(SelectedFile{Type: "text/plain", Name: "notes.txt", Size: 512})

	ok := f.ctl.HandleSubmit()

	assert.False(t, ok)
	require.Len(t, f.host.mounted, 1)
	assert.Equal(t, MsgInvalidType, f.host.mounted[0].message)
	assert.False(t, f.ctl.Loading())
}

func TestHandleSubmit_Oversized(t *testing.T) {
	f := newFixture()
	f.input.set(validPDF(20*1024*1024 + 1))

	ok := f.ctl.HandleSubmit()

	assert.False(t, ok)
	require.Len(t, f.host.mounted, 1)
	assert.Equal(t, MsgFileTooLarge, f.host.mounted[0].message)
}

func TestHandleSubmit_ValidEntersLoading(t *testing.T) {
	f := newFixture()
	f.input.set(validPDF(10 * 1024 * 1024))

	ok := f.ctl.HandleSubmit()

	assert.True(t, ok, "submission should proceed")
	assert.Empty(t, f.host.mounted, "no alert on a valid submit")
	assert.True(t, f.ctl.Loading())
	assert.True(t, f.button.disabled)
	assert.False(t, f.idle.visible)
	assert.True(t, f.loading.visible)
}

func TestFailsafeRevertsToIdle(t *testing.T) {
	f := newFixture()
	f.input.set(validPDF(1024))
	require.True(t, f.ctl.HandleSubmit())

	f.clock.Advance(FailsafeTimeout - time.Second)
	assert.True(t, f.ctl.Loading(), "still loading just before the failsafe")

	f.clock.Advance(time.Second)
	assert.False(t, f.ctl.Loading())
	assert.False(t, f.button.disabled)
	assert.True(t, f.idle.visible)
	assert.False(t, f.loading.visible)
}

func TestFailsafeCancelledWhenSuperseded(t *testing.T) {
	f := newFixture()
	f.input.set(validPDF(1024))
	require.True(t, f.ctl.HandleSubmit())

	// Loading is re-entered programmatically before the first failsafe
	// fires. The earlier timer is cancelled, not left to fire stale.
	f.clock.Advance(FailsafeTimeout - time.Minute)
	require.True(t, f.ctl.HandleSubmit())

	// Past the first submission's deadline: still Loading.
	f.clock.Advance(2 * time.Minute)
	assert.True(t, f.ctl.Loading(), "stale timer must not revert the later submission")

	// The second submission's own failsafe still works.
	f.clock.Advance(FailsafeTimeout)
	assert.False(t, f.ctl.Loading())
}

func TestHandleFileChange_NoFileIsNoop(t *testing.T) {
	f := newFixture()

	f.ctl.HandleFileChange()

	assert.Empty(t, f.host.mounted)
}

func TestHandleFileChange_InvalidTypeClearsSelection(t *testing.T) {
	f := newFixture()
	f.input.set(SelectedFile{Type: "text/plain", Name: "notes.txt", Size: 64})

	f.ctl.HandleFileChange()

	require.Len(t, f.host.mounted, 1)
	assert.Equal(t, MsgInvalidType, f.host.mounted[0].message)
	_, has := f.input.Selected()
	assert.False(t, has, "selection should be cleared")

	// A subsequent submit with nothing re-selected is a missing-file case.
	ok := f.ctl.HandleSubmit()
	assert.False(t, ok)
	require.Len(t, f.host.mounted, 1)
	assert.Equal(t, MsgMissingFile, f.host.mounted[0].message)
}

func TestHandleFileChange_OversizedClearsSelection(t *testing.T) {
	f := newFixture()
	f.input.set(validPDF(25 * 1024 * 1024))

	f.ctl.HandleFileChange()

	require.Len(t, f.host.mounted, 1)
	assert.Equal(t, MsgFileTooLarge, f.host.mounted[0].message)
	_, has := f.input.Selected()
	assert.False(t, has)
}

func TestHandleFileChange_TypeCheckedBeforeSize(t *testing.T) {
	f := newFixture()
	// Wrong type AND oversized: only the type error is shown.
	f.input.set(SelectedFile{Type: "text/plain", Name: "huge.txt", Size: 25 * 1024 * 1024})

	f.ctl.HandleFileChange()

	require.Len(t, f.host.mounted, 1)
	assert.Equal(t, MsgInvalidType, f.host.mounted[0].message)
}

func TestHandleFileChange_ValidClearsOnlyDangerAlerts(t *testing.T) {
	f := newFixture()
	info := f.host.mount("conversion finished earlier", false)
	f.host.mount("previous validation error", true)
	f.input.set(validPDF(1024))

	f.ctl.HandleFileChange()

	require.Len(t, f.host.mounted, 1)
	assert.Same(t, info, f.host.mounted[0], "non-danger alert survives")
	_, has := f.input.Selected()
	assert.True(t, has, "valid selection stays intact")
}

func TestShowError_ReplacesAllAlerts(t *testing.T) {
	f := newFixture()
	f.host.mount("success banner", false)
	f.host.mount("old error", true)

	f.ctl.ShowError(MsgInvalidType)

	require.Len(t, f.host.mounted, 1)
	assert.Equal(t, MsgInvalidType, f.host.mounted[0].message)
	assert.Equal(t, 1, f.icons.replaced, "icon pass re-triggered after insert")
}

func TestConsecutiveFailures_SingleDangerAlert(t *testing.T) {
	f := newFixture()

	f.input.set(SelectedFile{Type: "text/plain", Name: "notes.txt", Size: 64})
	f.ctl.HandleFileChange()
	f.input.set(validPDF(25 * 1024 * 1024))
	f.ctl.HandleFileChange()

	require.Len(t, f.host.mounted, 1, "at most one danger alert at a time")
	assert.Equal(t, MsgFileTooLarge, f.host.mounted[0].message)
}

func TestStartupSweep_DismissesNonDangerAlerts(t *testing.T) {
	f := newFixture()
	flash := f.host.mount("converted successfully", false)
	errAlert := f.host.mount("old validation error", true)

	f.ctl.Start()

	f.clock.Advance(SweepDelay + DismissDelay - time.Millisecond)
	assert.Equal(t, 0, flash.closed, "not dismissed before 6s")

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, 1, flash.closed, "dismissed at sweep delay + dismiss delay")
	assert.Equal(t, 0, errAlert.closed, "danger alerts are never auto-dismissed")
	require.Len(t, f.host.mounted, 1)
	assert.Same(t, errAlert, f.host.mounted[0])
}

func TestStartupSweep_SwallowsCloseErrors(t *testing.T) {
	f := newFixture()
	flash := f.host.mount("stale banner", false)
	flash.closeErr = errors.New("already disposed")

	f.ctl.Start()

	assert.NotPanics(t, func() {
		f.clock.Advance(SweepDelay + DismissDelay)
	})
	assert.Equal(t, 1, flash.closed)
}

func TestForceIdleIsIdempotent(t *testing.T) {
	f := newFixture()
	f.input.set(validPDF(1024))
	require.True(t, f.ctl.HandleSubmit())

	f.ctl.ForceIdle()
	f.ctl.ForceIdle()

	assert.False(t, f.ctl.Loading())
	assert.False(t, f.button.disabled)

	// The cancelled failsafe must not flip state later.
	f.input.set(validPDF(1024))
	require.True(t, f.ctl.HandleSubmit())
	f.clock.Advance(time.Minute)
	assert.True(t, f.ctl.Loading())
}

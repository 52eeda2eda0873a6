package uploadform

import (
	"sync"
	"time"
)

// Timing constants for the controller's three timers.
const (
	// FailsafeTimeout force-reverts the button to Idle when nothing else
	// resolves an in-flight submission (the controller cannot observe the
	// native request lifecycle).
	FailsafeTimeout = 5 * time.Minute

	// SweepDelay is how long after startup the auto-dismiss sweep runs.
	SweepDelay = 1 * time.Second

	// DismissDelay is how long after the sweep each eligible alert closes.
	DismissDelay = 5 * time.Second
)

// FileInput is the file-selection element. Selected reports the single
// file the input currently holds, if any.
type FileInput interface {
	Selected() (SelectedFile, bool)
	Clear()
}

// Button is the form's submit button.
type Button interface {
	SetDisabled(disabled bool)
}

// Region is a toggleable label area inside the button (idle text or
// loading text).
type Region interface {
	Show()
	Hide()
}

// Alert is a mounted banner. Close dismisses it through the alert
// library; closing an already-dismissed alert may return an error.
type Alert interface {
	Danger() bool
	Close() error
}

// AlertHost owns the banner area above the form. ShowDanger mounts one
// dismissible danger alert directly above the form and returns it.
// Alerts returns the mounted banners in display order.
type AlertHost interface {
	Alerts() []Alert
	Remove(a Alert)
	ShowDanger(message string) Alert
}

// IconRenderer re-scans the document for icon markup so icons inside
// freshly inserted alerts render.
type IconRenderer interface {
	Replace()
}

// Timer is a one-shot timer handle. Stop reports whether the timer was
// stopped before firing.
type Timer interface {
	Stop() bool
}

// Clock schedules one-shot callbacks. It exists so tests can drive the
// controller's timers manually.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() bool { return r.t.Stop() }

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{time.AfterFunc(d, fn)}
}

// SystemClock returns a Clock backed by time.AfterFunc.
func SystemClock() Clock { return realClock{} }

// Controller validates a user-selected file before allowing submission
// and reflects validation failures and submission progress in the page.
// One controller is bound per page view; there is no teardown path.
type Controller struct {
	input   FileInput
	button  Button
	idle    Region
	loading Region
	alerts  AlertHost
	icons   IconRenderer
	clock   Clock

	mu       sync.Mutex
	busy     bool
	failsafe Timer
}

// New creates a controller bound to its page collaborators. A nil clock
// falls back to the system clock.
func New(input FileInput, button Button, idle, loading Region, alerts AlertHost, icons IconRenderer, clock Clock) *Controller {
	if clock == nil {
		clock = SystemClock()
	}
	return &Controller{
		input:   input,
		button:  button,
		idle:    idle,
		loading: loading,
		alerts:  alerts,
		icons:   icons,
		clock:   clock,
	}
}

// Start runs the startup alert sweep: one second after load, every
// mounted non-danger alert is scheduled to close five seconds later.
// Danger alerts are never auto-dismissed; they persist until the user
// closes them or a new validation event clears them.
func (c *Controller) Start() {
	c.clock.AfterFunc(SweepDelay, func() {
		for _, a := range c.alerts.Alerts() {
			if a.Danger() {
				continue
			}
			alert := a
			c.clock.AfterFunc(DismissDelay, func() {
				// Already-closed alerts are tolerated.
				_ = alert.Close()
			})
		}
	})
}

// HandleFileChange reacts to a change event on the file input. A file
// that fails validation is rejected immediately and the selection is
// cleared so a later submit is treated as missing-file.
func (c *Controller) HandleFileChange() {
	f, ok := c.input.Selected()
	if !ok {
		return
	}
	if !ValidType(f) {
		c.ShowError(MsgInvalidType)
		c.input.Clear()
		return
	}
	if !ValidSize(f) {
		c.ShowError(MsgFileTooLarge)
		c.input.Clear()
		return
	}
	c.clearDangerAlerts()
}

// HandleSubmit gates the native form submission. It returns true when
// submission may proceed, in which case the button enters Loading and a
// failsafe timer is armed.
func (c *Controller) HandleSubmit() bool {
	f, ok := c.input.Selected()
	if !ok {
		c.ShowError(MsgMissingFile)
		return false
	}
	if !ValidType(f) {
		c.ShowError(MsgInvalidType)
		return false
	}
	if !ValidSize(f) {
		c.ShowError(MsgFileTooLarge)
		return false
	}
	c.enterLoading()
	return true
}

// ShowError replaces every mounted alert with a single dismissible
// danger alert carrying the message, then re-triggers icon rendering.
func (c *Controller) ShowError(message string) {
	for _, a := range c.alerts.Alerts() {
		c.alerts.Remove(a)
	}
	c.alerts.ShowDanger(message)
	c.icons.Replace()
}

// Loading reports whether a submission is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// ForceIdle reverts the button to Idle and cancels any armed failsafe.
// It is the failsafe's own callback and is safe to call redundantly.
func (c *Controller) ForceIdle() {
	c.mu.Lock()
	if c.failsafe != nil {
		c.failsafe.Stop()
		c.failsafe = nil
	}
	c.busy = false
	c.mu.Unlock()

	c.button.SetDisabled(false)
	c.idle.Show()
	c.loading.Hide()
}

func (c *Controller) enterLoading() {
	c.mu.Lock()
	// A superseded failsafe is cancelled so a stale revert cannot undo
	// this submission's Loading state.
	if c.failsafe != nil {
		c.failsafe.Stop()
	}
	c.busy = true
	c.failsafe = c.clock.AfterFunc(FailsafeTimeout, c.ForceIdle)
	c.mu.Unlock()

	c.button.SetDisabled(true)
	c.idle.Hide()
	c.loading.Show()
}

func (c *Controller) clearDangerAlerts() {
	for _, a := range c.alerts.Alerts() {
		if a.Danger() {
			c.alerts.Remove(a)
		}
	}
}

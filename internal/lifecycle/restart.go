package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/launchpad-dev/launchpad/internal/config"
	"github.com/launchpad-dev/launchpad/internal/errors"
	"github.com/launchpad-dev/launchpad/internal/notify"
)

// restartPhase is the restart machine's state. An explicit three-state machine
// makes the drop-versus-coalesce behavior provable: signals arriving while
// Restarting are dropped, signals arriving while Debouncing coalesce to the
// latest configuration.
type restartPhase int

const (
	restartIdle restartPhase = iota
	restartDebouncing
	restartRestarting
)

// DefaultRestartDebounce is the config-change coalescing window.
const DefaultRestartDebounce = 200 * time.Millisecond

type restartMachine struct {
	coordinator *Coordinator

	mutex   sync.Mutex
	phase   restartPhase
	timer   *time.Timer
	pending *config.Config
	delay   time.Duration
}

func (r *restartMachine) init(c *Coordinator) {
	r.coordinator = c
	r.delay = DefaultRestartDebounce
}

// SetRestartDebounce overrides the coalescing window. Effective for signals
// observed after the call.
func (c *Coordinator) SetRestartDebounce(delay time.Duration) {
	c.restart.mutex.Lock()
	defer c.restart.mutex.Unlock()
	if delay > 0 {
		c.restart.delay = delay
	}
}

// HandleConfigChange is the config-watcher callback. Signals are debounced:
// every arrival resets the window and only the last configuration observed
// before the timer fires is used. A signal arriving mid-restart is dropped
// outright, never queued.
func (c *Coordinator) HandleConfigChange(cfg *config.Config) {
	r := &c.restart
	r.mutex.Lock()
	defer r.mutex.Unlock()

	switch r.phase {
	case restartRestarting:
		c.logger.Debug(context.Background(), "config change dropped",
			"reason", errors.ErrRestartRaceRejected.Error())
		return
	case restartDebouncing:
		r.pending = cfg
		r.timer.Stop()
		r.timer = time.AfterFunc(r.delay, c.fireRestart)
	default:
		r.phase = restartDebouncing
		r.pending = cfg
		r.timer = time.AfterFunc(r.delay, c.fireRestart)
	}
}

// fireRestart executes one coordinated restart with the coalesced config:
// stop the running server, replace (not merge) the stored configuration, and
// start again under the restart-mode marker.
func (c *Coordinator) fireRestart() {
	r := &c.restart
	r.mutex.Lock()
	// A timer can fire while HandleConfigChange holds the mutex and reschedules;
	// its Stop() misses and two fires race for one pending config. Only the fire
	// that still sees a debouncing machine with a pending config may restart.
	if r.phase != restartDebouncing || r.pending == nil {
		r.mutex.Unlock()
		return
	}
	cfg := r.pending
	r.pending = nil
	r.phase = restartRestarting
	r.mutex.Unlock()

	defer func() {
		r.mutex.Lock()
		r.phase = restartIdle
		r.mutex.Unlock()
	}()

	ctx := context.Background()

	if err := c.Stop(ctx); err != nil {
		// Stop failures already moved state to Error; the start below is the
		// explicit fresh call that re-enters the machine.
		c.logger.Warn(ctx, err, "stop during restart failed")
	}

	c.mutex.Lock()
	c.cfg = cfg
	c.mutex.Unlock()

	if err := c.start(ctx, true); err != nil {
		return
	}

	c.logger.Info(ctx, "configuration changed, server restarted")
	c.bus.Publish(notify.EventConfigChanged, map[string]interface{}{"scope": "launcher"})
}

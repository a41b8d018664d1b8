package motion

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tilt-arcade/internal/core"
)

// DefaultPollInterval is how often a started host sensor is polled.
const DefaultPollInterval = 16 * time.Millisecond

// Options configures a Normalizer. Host and Native are both optional.
type Options struct {
	Host         HostSensor
	Native       NativeSensor
	PollInterval time.Duration
	Saturation   Saturation
	Logger       *log.Logger
}

// Normalizer owns all input state for one process and produces a
// ControlSignal per frame.
type Normalizer struct {
	host       HostSensor
	native     NativeSensor
	poll       time.Duration
	saturation Saturation
	logger     *log.Logger

	mu     sync.Mutex
	sensor SensorState
	keys   [keyCount]bool

	pointerDown bool
	hasTarget   bool
	target      float64
	hasRange    bool
	rangeMin    float64
	rangeMax    float64

	requested  bool
	accessDone chan struct{}
	granted    bool

	closed      bool
	cancelPoll  context.CancelFunc
	pollDone    chan struct{}
	unsubscribe func()
}

// New creates a Normalizer. No sensor is touched until RequestMotionAccess.
func New(opts Options) *Normalizer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Saturation == (Saturation{}) {
		opts.Saturation = DefaultSaturation()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Normalizer{
		host:       opts.Host,
		native:     opts.Native,
		poll:       opts.PollInterval,
		saturation: opts.Saturation,
		logger:     opts.Logger,
		accessDone: make(chan struct{}),
	}
}

// RequestMotionAccess runs the sensor fallback chain in the background and
// delivers true on the returned channel if a motion source was attached.
// Only the first call probes; later calls report the cached outcome.
func (n *Normalizer) RequestMotionAccess(ctx context.Context) <-chan bool {
	out := make(chan bool, 1)

	n.mu.Lock()
	if n.requested {
		n.mu.Unlock()
		go func() {
			<-n.accessDone
			n.mu.Lock()
			granted := n.granted
			n.mu.Unlock()
			out <- granted
			close(out)
		}()
		return out
	}
	n.requested = true
	n.mu.Unlock()

	go func() {
		granted := n.probe(ctx)
		n.mu.Lock()
		n.granted = granted
		n.mu.Unlock()
		close(n.accessDone)
		out <- granted
		close(out)
	}()
	return out
}

// probe walks host -> native -> none and returns whether motion is enabled.
func (n *Normalizer) probe(ctx context.Context) bool {
	if n.host != nil {
		err := n.host.Start(ctx)
		if err == nil {
			return n.attachHost()
		}
		n.logger.Info("host sensor unavailable, falling back", "error", err)
	}

	if n.native != nil {
		return n.attachNative(ctx)
	}

	n.logger.Info("no motion source, using keyboard and pointer only")
	return false
}

func (n *Normalizer) attachHost() bool {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		n.host.Stop()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	n.cancelPoll = cancel
	n.pollDone = make(chan struct{})
	n.sensor.Tier = TierHost
	n.sensor.Permission = PermissionGranted
	n.sensor.Enabled = true
	done := n.pollDone
	n.mu.Unlock()

	go n.pollHost(ctx, done)
	n.logger.Info("motion source attached", "tier", TierHost, "poll", n.poll)
	return true
}

func (n *Normalizer) attachNative(ctx context.Context) bool {
	perm := PermissionGranted
	if n.native.RequiresPermission() {
		n.mu.Lock()
		n.sensor.Permission = PermissionPending
		n.mu.Unlock()

		p, err := n.native.RequestPermission(ctx)
		if err != nil {
			n.logger.Info("motion permission request failed", "error", err)
			p = PermissionDenied
		}
		perm = p
	}

	if perm != PermissionGranted {
		n.mu.Lock()
		n.sensor.Permission = PermissionDenied
		n.sensor.Tier = TierNone
		n.sensor.Enabled = false
		n.mu.Unlock()
		n.logger.Info("motion permission denied, using keyboard and pointer only")
		return false
	}

	unsubscribe := n.native.Subscribe(n.handleEvent)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		unsubscribe()
		return false
	}
	n.unsubscribe = unsubscribe
	n.sensor.Permission = PermissionGranted
	n.sensor.Tier = TierNative
	n.sensor.Enabled = true
	n.mu.Unlock()

	n.logger.Info("motion source attached", "tier", TierNative)
	return true
}

func (n *Normalizer) pollHost(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(n.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r := n.host.Reading()
			if r.X == nil || r.Y == nil {
				continue
			}
			n.storeTilt(*r.X, *r.Y, KindAcceleration)
		}
	}
}

func (n *Normalizer) handleEvent(ev Event) {
	if ev.X == nil || ev.Y == nil {
		return
	}
	n.storeTilt(*ev.X, *ev.Y, ev.Kind)
}

func (n *Normalizer) storeTilt(x, y float64, kind Kind) {
	sat := n.saturation.For(kind)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.sensor.TiltX = Normalize(x, sat)
	n.sensor.TiltY = Normalize(y, sat)
}

// Sample returns the control signal for this frame. It never blocks on a
// sensor and consumes any pending pointer target.
func (n *Normalizer) Sample() core.ControlSignal {
	n.mu.Lock()
	defer n.mu.Unlock()

	sig := core.ControlSignal{
		MoveX:       axis(n.keys[KeyLeft], n.keys[KeyRight]),
		MoveY:       axis(n.keys[KeyUp], n.keys[KeyDown]),
		Action:      n.keys[KeyAction] || n.pointerDown,
		PointerHeld: n.pointerDown,
	}
	if n.sensor.Enabled {
		sig.TiltX = n.sensor.TiltX
		sig.TiltY = n.sensor.TiltY
	}
	if n.hasTarget {
		sig.HasTarget = true
		sig.TargetX = n.target
		if n.hasRange {
			sig.TargetX = core.ClampF(n.target, n.rangeMin, n.rangeMax)
		}
		n.hasTarget = false
	}
	return sig
}

// Press marks a key as held.
func (n *Normalizer) Press(k Key) {
	if k < 0 || k >= keyCount {
		return
	}
	n.mu.Lock()
	n.keys[k] = true
	n.mu.Unlock()
}

// Release marks a key as no longer held.
func (n *Normalizer) Release(k Key) {
	if k < 0 || k >= keyCount {
		return
	}
	n.mu.Lock()
	n.keys[k] = false
	n.mu.Unlock()
}

// Held reports whether a key is currently held.
func (n *Normalizer) Held(k Key) bool {
	if k < 0 || k >= keyCount {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.keys[k]
}

// Blur releases every key and the pointer. Called when input focus is lost.
func (n *Normalizer) Blur() {
	n.mu.Lock()
	n.keys = [keyCount]bool{}
	n.pointerDown = false
	n.mu.Unlock()
}

// PointerDown starts a touch or mouse press at playfield x.
func (n *Normalizer) PointerDown(x float64) {
	n.mu.Lock()
	n.pointerDown = true
	n.hasTarget = true
	n.target = x
	n.mu.Unlock()
}

// PointerMove records a new pointer position for the next frame.
func (n *Normalizer) PointerMove(x float64) {
	n.mu.Lock()
	n.hasTarget = true
	n.target = x
	n.mu.Unlock()
}

// PointerUp ends a touch or mouse press.
func (n *Normalizer) PointerUp() {
	n.mu.Lock()
	n.pointerDown = false
	n.mu.Unlock()
}

// SetTargetRange limits pointer targets to [min, max], typically the valid
// travel range of a paddle centre.
func (n *Normalizer) SetTargetRange(min, max float64) {
	n.mu.Lock()
	n.hasRange = true
	n.rangeMin = min
	n.rangeMax = max
	n.mu.Unlock()
}

// ClearTargetRange removes any pointer target limit.
func (n *Normalizer) ClearTargetRange() {
	n.mu.Lock()
	n.hasRange = false
	n.mu.Unlock()
}

// State returns a copy of the current sensor state.
func (n *Normalizer) State() SensorState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sensor
}

// Close stops host polling, detaches native listeners and stops the host
// sensor. The tier and permission outcome are kept for diagnostics.
func (n *Normalizer) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	cancel := n.cancelPoll
	done := n.pollDone
	unsubscribe := n.unsubscribe
	hostActive := n.sensor.Tier == TierHost
	n.sensor.Enabled = false
	n.sensor.TiltX = 0
	n.sensor.TiltY = 0
	n.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	if hostActive {
		n.host.Stop()
	}
}

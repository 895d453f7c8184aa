// Package resilience wraps calls to coordinate providers with retry, circuit
// breaking and per-call timeouts.
package resilience

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CircuitState is the state of a Breaker.
type CircuitState int

const (
	// CircuitClosed lets every call through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects calls until the cool-down elapses.
	CircuitOpen
	// CircuitHalfOpen lets probe calls through to test recovery.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned for calls rejected by an open breaker.
var ErrCircuitOpen = eris.New("resilience: circuit open")

// BreakerConfig tunes a Breaker.
type BreakerConfig struct {
	// FailureThreshold consecutive counted failures open the circuit.
	FailureThreshold int           `mapstructure:"failure_threshold"`
	CoolDown         time.Duration `mapstructure:"cool_down"`
	// Probes successful half-open calls close the circuit again.
	Probes int `mapstructure:"probes"`

	// ShouldTrip decides which errors count. Defaults to IsTransient so a
	// provider answering "not found" never opens the circuit.
	ShouldTrip    func(err error) bool          `mapstructure:"-"`
	OnStateChange func(from, to CircuitState) `mapstructure:"-"`
}

// DefaultBreakerConfig returns the breaker settings used for providers.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, CoolDown: 30 * time.Second, Probes: 1}
}

// Breaker is a consecutive-failure circuit breaker for one provider.
type Breaker struct {
	name string
	cfg  BreakerConfig

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	probes   int

	now func() time.Time
}

// NewBreaker builds a closed Breaker. Zero config fields take defaults.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	d := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = d.FailureThreshold
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = d.CoolDown
	}
	if cfg.Probes <= 0 {
		cfg.Probes = d.Probes
	}
	if cfg.ShouldTrip == nil {
		cfg.ShouldTrip = IsTransient
	}
	return &Breaker{name: name, cfg: cfg, now: time.Now}
}

// Name returns the provider name the breaker guards.
func (b *Breaker) Name() string { return b.name }

// Execute runs fn unless the circuit is open.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// ExecuteVal is Execute for functions that return a value.
func ExecuteVal[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	if err := b.admit(); err != nil {
		var zero T
		return zero, err
	}
	v, err := fn(ctx)
	b.record(err)
	return v, err
}

// State returns the current state, moving an expired open circuit to
// half-open.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expire()
	return b.state
}

// Failures returns the consecutive counted failure total.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset closes the circuit and clears counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures, b.probes = 0, 0
	b.setState(CircuitClosed)
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expire()
	if b.state == CircuitOpen {
		return eris.Wrapf(ErrCircuitOpen, "provider %s", b.name)
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil || !b.cfg.ShouldTrip(err) {
		if b.state == CircuitHalfOpen {
			b.probes++
			if b.probes >= b.cfg.Probes {
				b.failures, b.probes = 0, 0
				b.setState(CircuitClosed)
			}
			return
		}
		b.failures = 0
		return
	}

	b.failures++
	if b.state == CircuitHalfOpen || b.failures >= b.cfg.FailureThreshold {
		b.openedAt = b.now()
		b.probes = 0
		b.setState(CircuitOpen)
	}
}

// expire must be called with mu held.
func (b *Breaker) expire() {
	if b.state == CircuitOpen && b.now().Sub(b.openedAt) >= b.cfg.CoolDown {
		b.setState(CircuitHalfOpen)
	}
}

// setState must be called with mu held.
func (b *Breaker) setState(to CircuitState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	zap.L().Info("resilience: circuit state change",
		zap.String("provider", b.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}

// Breakers hands out one Breaker per provider name.
type Breakers struct {
	cfg BreakerConfig
	mu  sync.Mutex
	m   map[string]*Breaker
}

// NewBreakers returns an empty set sharing cfg.
func NewBreakers(cfg BreakerConfig) *Breakers {
	return &Breakers{cfg: cfg, m: make(map[string]*Breaker)}
}

// Get returns the breaker for name, creating it on first use.
func (bs *Breakers) Get(name string) *Breaker {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	b, ok := bs.m[name]
	if !ok {
		b = NewBreaker(name, bs.cfg)
		bs.m[name] = b
	}
	return b
}

// Open lists providers whose circuit is currently open, sorted.
func (bs *Breakers) Open() []string {
	bs.mu.Lock()
	all := make([]*Breaker, 0, len(bs.m))
	for _, b := range bs.m {
		all = append(all, b)
	}
	bs.mu.Unlock()

	var open []string
	for _, b := range all {
		if b.State() == CircuitOpen {
			open = append(open, b.name)
		}
	}
	sort.Strings(open)
	return open
}

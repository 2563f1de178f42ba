package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNoProvider is returned by Active when no registered backend probes as
// available. This is a host configuration error and is never retried; the
// failed selection is fixed for the process lifetime like a successful one.
var ErrNoProvider = errors.New("no port provider available on this host")

// registry holds process-wide backend selection state. Selection happens at
// most once; handle resolution happens at most once per logical type. Reads
// after resolution take the mutex only long enough for a map hit.
type registry struct {
	mu sync.Mutex

	backends []Backend

	selected bool
	active   Provider
	selErr   error

	handles map[string]any
}

var global = &registry{handles: make(map[string]any)}

// Register adds a backend to the probe set. Backends register from their
// package's init or from test setup; registering after the selection has
// been made has no effect until Reset.
func Register(b Backend) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.backends = append(global.backends, b)
}

// Active returns the selected provider, probing registered backends in
// priority order on first use. The outcome, success or failure, is fixed for
// the process lifetime.
func Active() (Provider, error) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.selectLocked()
	return global.active, global.selErr
}

// ActiveID reports the selected provider id without triggering selection.
func ActiveID() (ProviderID, bool) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if !global.selected || global.active == nil {
		return "", false
	}
	return global.active.ID(), true
}

// ActiveFailure returns the active backend's declared sentinel for the given
// failure kind, if it declares one.
func ActiveFailure(kind FailureKind) (error, bool) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if !global.selected || global.active == nil {
		return nil, false
	}
	for _, b := range global.backends {
		if b.ID == global.active.ID() {
			err, ok := b.Failures[kind]
			return err, ok
		}
	}
	return nil, false
}

// Handle resolves the active provider's implementation of a logical facade
// type, caching it on first request. The cached value must coerce to T; a
// mismatch means the backend's surface has drifted from the assumed contract
// and is reported as an error, not retried.
func Handle[T any](logical string) (T, error) {
	var zero T

	global.mu.Lock()
	defer global.mu.Unlock()

	global.selectLocked()
	if global.selErr != nil {
		return zero, global.selErr
	}

	h, ok := global.handles[logical]
	if !ok {
		resolved, err := global.active.Resolve(logical)
		if err != nil {
			return zero, fmt.Errorf("resolving %q on provider %s: %w", logical, global.active.ID(), err)
		}
		global.handles[logical] = resolved
		h = resolved
	}

	typed, ok := h.(T)
	if !ok {
		return zero, fmt.Errorf("provider %s: handle for %q has type %T, not the expected facade type", global.active.ID(), logical, h)
	}
	return typed, nil
}

// Reset clears the selection, the handle cache, and the registered backend
// set. It exists for diagnostics and tests; production code never resets a
// selection.
func Reset() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.backends = nil
	global.selected = false
	global.active = nil
	global.selErr = nil
	global.handles = make(map[string]any)
}

// selectLocked performs the one-time backend probe. Callers hold global.mu.
func (r *registry) selectLocked() {
	if r.selected {
		return
	}
	r.selected = true

	ordered := make([]Backend, len(r.backends))
	copy(ordered, r.backends)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for _, b := range ordered {
		if b.Probe != nil && !b.Probe() {
			continue
		}
		p, err := b.Open()
		if err != nil {
			log().Warn().Err(err).Str("provider", string(b.ID)).Msg("port provider probed available but failed to open")
			continue
		}
		r.active = p
		log().Debug().Str("provider", string(b.ID)).Msg("port provider selected")
		return
	}
	r.selErr = ErrNoProvider
}

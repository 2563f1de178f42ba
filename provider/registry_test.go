package provider_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/allbin/go-commport/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider counts Resolve calls so resolve-once semantics are checkable.
type fakeProvider struct {
	id       provider.ProviderID
	resolves atomic.Int64
}

func (f *fakeProvider) ID() provider.ProviderID { return f.id }

func (f *fakeProvider) Resolve(logical string) (any, error) {
	f.resolves.Add(1)
	switch logical {
	case provider.LogicalPortIdentifier:
		return &fakeOps{}, nil
	default:
		return nil, fmt.Errorf("unknown logical type %q", logical)
	}
}

type fakeOps struct{}

func (*fakeOps) Ports() ([]provider.NativePort, error)      { return nil, nil }
func (*fakeOps) Lookup(string) (provider.NativePort, error) { return nil, nil }

func fakeBackend(id provider.ProviderID, priority int, available bool) (provider.Backend, *fakeProvider) {
	p := &fakeProvider{id: id}
	return provider.Backend{
		ID:       id,
		Priority: priority,
		Probe:    func() bool { return available },
		Open:     func() (provider.Provider, error) { return p, nil },
	}, p
}

func TestSelectionFollowsPriority(t *testing.T) {
	provider.Reset()
	t.Cleanup(provider.Reset)

	second, _ := fakeBackend("second", 20, true)
	first, _ := fakeBackend("first", 10, true)
	provider.Register(second)
	provider.Register(first)

	active, err := provider.Active()
	require.NoError(t, err)
	assert.Equal(t, provider.ProviderID("first"), active.ID())
}

func TestSelectionSkipsUnavailable(t *testing.T) {
	provider.Reset()
	t.Cleanup(provider.Reset)

	first, _ := fakeBackend("first", 10, false)
	second, _ := fakeBackend("second", 20, true)
	provider.Register(first)
	provider.Register(second)

	active, err := provider.Active()
	require.NoError(t, err)
	assert.Equal(t, provider.ProviderID("second"), active.ID())
}

func TestSelectionIsFixedForProcessLifetime(t *testing.T) {
	provider.Reset()
	t.Cleanup(provider.Reset)

	_, err := provider.Active()
	require.ErrorIs(t, err, provider.ErrNoProvider)

	// Registering after the (failed) selection must not change the outcome.
	late, _ := fakeBackend("late", 10, true)
	provider.Register(late)

	_, err = provider.Active()
	assert.ErrorIs(t, err, provider.ErrNoProvider)
}

func TestActiveIDDoesNotTriggerSelection(t *testing.T) {
	provider.Reset()
	t.Cleanup(provider.Reset)

	b, _ := fakeBackend("only", 10, true)
	provider.Register(b)

	_, ok := provider.ActiveID()
	assert.False(t, ok, "ActiveID must not resolve a provider")

	_, err := provider.Active()
	require.NoError(t, err)

	id, ok := provider.ActiveID()
	require.True(t, ok)
	assert.Equal(t, provider.ProviderID("only"), id)
}

func TestHandleResolvesOnce(t *testing.T) {
	provider.Reset()
	t.Cleanup(provider.Reset)

	b, fake := fakeBackend("only", 10, true)
	provider.Register(b)

	const workers = 16
	handles := make([]provider.PortIdentifierOps, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := provider.Handle[provider.PortIdentifierOps](provider.LogicalPortIdentifier)
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), fake.resolves.Load(), "logical type resolved more than once")
	for i := 1; i < workers; i++ {
		assert.Same(t, handles[0], handles[i], "threads observed different cached handles")
	}
}

func TestHandleTypeMismatchIsAnError(t *testing.T) {
	provider.Reset()
	t.Cleanup(provider.Reset)

	b, _ := fakeBackend("only", 10, true)
	provider.Register(b)

	_, err := provider.Handle[provider.Refresher](provider.LogicalPortIdentifier)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected facade type")
}

func TestHandleUnknownLogicalType(t *testing.T) {
	provider.Reset()
	t.Cleanup(provider.Reset)

	b, _ := fakeBackend("only", 10, true)
	provider.Register(b)

	_, err := provider.Handle[provider.PortIdentifierOps]("no-such-logical-type")
	require.Error(t, err)
}

func TestActiveFailureLookup(t *testing.T) {
	provider.Reset()
	t.Cleanup(provider.Reset)

	b, _ := fakeBackend("only", 10, true)
	sentinel := fmt.Errorf("held")
	b.Failures = map[provider.FailureKind]error{provider.FailurePortInUse: sentinel}
	provider.Register(b)

	_, ok := provider.ActiveFailure(provider.FailurePortInUse)
	assert.False(t, ok, "no failures before selection")

	_, err := provider.Active()
	require.NoError(t, err)

	got, ok := provider.ActiveFailure(provider.FailurePortInUse)
	require.True(t, ok)
	assert.Same(t, sentinel, got)

	_, ok = provider.ActiveFailure(provider.FailureNoSuchPort)
	assert.False(t, ok, "undeclared kind must not report a sentinel")
}

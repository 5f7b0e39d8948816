package lemmatizer

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModel returns a fixed Doc and counts invocations.
type stubModel struct {
	name string
	doc  Doc
	err  error

	mu    sync.Mutex
	calls int
}

func (s *stubModel) Name() string { return s.name }

func (s *stubModel) Process(_ context.Context, _ string) (Doc, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.doc, s.err
}

func (s *stubModel) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestHandleBeforeLoad(t *testing.T) {
	h := NewHandle("en_core_web_sm")
	assert.Equal(t, Uninitialized, h.State())
	assert.False(t, h.Loaded())
	assert.Equal(t, "en_core_web_sm", h.Name())

	_, err := h.Model()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.NoError(t, h.Err())
}

func TestLoaderFirstAttempt(t *testing.T) {
	m := &stubModel{name: "en"}
	fetched := 0
	l := &Loader{
		Open:  func(context.Context, string) (Model, error) { return m, nil },
		Fetch: func(context.Context, string) error { fetched++; return nil },
	}
	h := NewHandle("en")
	require.NoError(t, l.Load(context.Background(), h))
	assert.Equal(t, Ready, h.State())
	assert.Equal(t, 0, fetched)

	got, err := h.Model()
	require.NoError(t, err)
	assert.Same(t, m, got)
}

func TestLoaderFetchFallback(t *testing.T) {
	m := &stubModel{name: "en"}
	installed := false
	opens, fetches := 0, 0
	l := &Loader{
		Open: func(_ context.Context, name string) (Model, error) {
			opens++
			if !installed {
				return nil, errors.Wrapf(ErrModelNotFound, "%s", name)
			}
			return m, nil
		},
		Fetch: func(context.Context, string) error {
			fetches++
			installed = true
			return nil
		},
	}
	h := NewHandle("en")
	require.NoError(t, l.Load(context.Background(), h))
	assert.Equal(t, Ready, h.State())
	assert.Equal(t, 2, opens)
	assert.Equal(t, 1, fetches)
}

func TestLoaderFailsAfterFallback(t *testing.T) {
	opens, fetches := 0, 0
	l := &Loader{
		Open: func(_ context.Context, name string) (Model, error) {
			opens++
			return nil, errors.Wrapf(ErrModelNotFound, "%s", name)
		},
		Fetch: func(context.Context, string) error { fetches++; return nil },
	}
	h := NewHandle("en_core_web_sm")
	err := l.Load(context.Background(), h)
	require.Error(t, err)

	assert.Equal(t, 2, opens, "open is retried exactly once")
	assert.Equal(t, 1, fetches, "fetch is attempted exactly once")
	assert.Equal(t, Failed, h.State())
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.Equal(t, err, h.Err())
	assert.Contains(t, errors.GetAllHints(err), "install it with: lemmatizer download en_core_web_sm")

	_, err = h.Model()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestLoaderFetchFails(t *testing.T) {
	opens := 0
	l := &Loader{
		Open: func(context.Context, string) (Model, error) {
			opens++
			return nil, ErrModelNotFound
		},
		Fetch: func(context.Context, string) error { return errors.Wrap(ErrFetch, "offline") },
	}
	h := NewHandle("en")
	err := l.Load(context.Background(), h)
	require.Error(t, err)
	assert.Equal(t, 1, opens, "no second open when the fetch failed")
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.Equal(t, Failed, h.State())
}

func TestLoaderWithoutFetch(t *testing.T) {
	l := &Loader{
		Open: func(context.Context, string) (Model, error) { return nil, ErrModelNotFound },
	}
	h := NewHandle("http://nlp:9000")
	err := l.Load(context.Background(), h)
	require.Error(t, err)
	assert.Contains(t, errors.GetAllHints(err), Remedy("http://nlp:9000"))
	assert.Contains(t, Remedy("http://nlp:9000"), "reachable")
}

func TestLoaderRunsOnce(t *testing.T) {
	m := &stubModel{name: "en"}
	l := &Loader{Open: func(context.Context, string) (Model, error) { return m, nil }}
	h := NewHandle("en")
	require.NoError(t, l.Load(context.Background(), h))
	assert.Error(t, l.Load(context.Background(), h))
	assert.Equal(t, Ready, h.State())
}

func TestNewLoaderOpensInstalledModel(t *testing.T) {
	l := NewLoader("models", nil, 0, nil)
	h := NewHandle("en_core_web_sm")
	require.NoError(t, l.Load(context.Background(), h))
	m, err := h.Model()
	require.NoError(t, err)
	assert.Equal(t, "en_core_web_sm", m.Name())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(42).String())
}

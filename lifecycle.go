package lemmatizer

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// State is the load state of a model Handle.
type State int32

const (
	Uninitialized State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type loaded struct {
	model Model
}

// Handle owns the process-wide model. It is written once by a Loader and
// read concurrently by request handlers afterwards.
type Handle struct {
	name  string
	state atomic.Int32
	model atomic.Pointer[loaded]
	err   atomic.Pointer[error]
}

// NewHandle returns an uninitialized handle for the named model.
func NewHandle(name string) *Handle {
	return &Handle{name: name}
}

// Name returns the configured model identifier.
func (h *Handle) Name() string {
	return h.name
}

// State returns the current load state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Loaded reports whether the model reached Ready.
func (h *Handle) Loaded() bool {
	return h.State() == Ready
}

// Model returns the loaded model, or ErrNotReady.
func (h *Handle) Model() (Model, error) {
	if h.State() != Ready {
		return nil, errors.Wrapf(ErrNotReady, "model %q is %s", h.name, h.State())
	}
	return h.model.Load().model, nil
}

// Err returns the load failure, if any.
func (h *Handle) Err() error {
	if p := h.err.Load(); p != nil {
		return *p
	}
	return nil
}

func (h *Handle) begin() bool {
	return h.state.CompareAndSwap(int32(Uninitialized), int32(Loading))
}

func (h *Handle) ready(m Model) {
	h.model.Store(&loaded{model: m})
	h.state.Store(int32(Ready))
}

func (h *Handle) fail(err error) {
	h.err.Store(&err)
	h.state.Store(int32(Failed))
}

// Loader moves a Handle from Uninitialized to Ready or Failed.
type Loader struct {
	// Open loads a model from local resources.
	Open func(ctx context.Context, name string) (Model, error)
	// Fetch installs the model from a remote source. A nil Fetch
	// disables the download fallback.
	Fetch func(ctx context.Context, name string) error

	Logger *zap.Logger
}

// NewLoader returns a Loader opening rule models from modelsDir and remote
// models by URL. When fetcher is non-nil it provides the download
// fallback for rule models.
func NewLoader(modelsDir string, fetcher *Fetcher, timeout time.Duration, logger *zap.Logger) *Loader {
	l := &Loader{
		Open: func(ctx context.Context, name string) (Model, error) {
			if IsRemote(name) {
				return OpenRemoteModel(ctx, name, timeout)
			}
			return OpenRuleModel(filepath.Join(modelsDir, name))
		},
		Logger: logger,
	}
	if fetcher != nil {
		l.Fetch = func(ctx context.Context, name string) error {
			if IsRemote(name) {
				return errors.Newf("remote model %s cannot be downloaded", name)
			}
			return fetcher.Fetch(ctx, name)
		}
	}
	return l
}

// Remedy returns the action that makes the named model loadable.
func Remedy(name string) string {
	if IsRemote(name) {
		return "check that the annotation service at " + name + " is reachable"
	}
	return "install it with: lemmatizer download " + name
}

// Load opens the model named by h. If the first attempt fails it fetches
// the model once and retries the open once. Any further failure leaves h
// Failed and returns an error carrying the remedial command as a hint.
// Load runs at most once per Handle.
func (l *Loader) Load(ctx context.Context, h *Handle) error {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if !h.begin() {
		return errors.Newf("model %q already %s", h.name, h.State())
	}
	log = log.With(zap.String("model", h.name))
	start := time.Now()
	log.Info("loading model")

	m, err := l.Open(ctx, h.name)
	if err != nil && l.Fetch != nil {
		log.Warn("model not available locally, fetching", zap.Error(err))
		if ferr := l.Fetch(ctx, h.name); ferr != nil {
			err = errors.CombineErrors(err, ferr)
		} else {
			log.Info("model fetched")
			m, err = l.Open(ctx, h.name)
		}
	}
	if err != nil {
		err = errors.WithHint(
			errors.Wrapf(err, "model %q could not be loaded", h.name),
			Remedy(h.name))
		h.fail(err)
		log.Error("model load failed", zap.Error(err), zap.Strings("hints", errors.GetAllHints(err)))
		return err
	}
	h.ready(m)
	log.Info("model ready", zap.Duration("elapsed", time.Since(start)))
	return nil
}

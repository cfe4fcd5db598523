// Package vm hosts a counter contract instance: it decodes messages, runs
// each entry point inside a storage transaction and records what happened.
package vm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/govm-net/counter/api"
	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/counter"
	"github.com/govm-net/counter/repository"
	"github.com/govm-net/counter/store"
	_ "github.com/govm-net/counter/store/db"
	_ "github.com/govm-net/counter/store/memory"
	"github.com/govm-net/counter/types"
	"github.com/govm-net/counter/wasi"
	"github.com/looplab/fsm"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ErrAlreadyInstantiated is returned by Instantiate on an active instance.
var ErrAlreadyInstantiated = errors.New("contract already instantiated")

// Entry point names used in logs and metrics
const (
	EntryInstantiate = "instantiate"
	EntryExecute     = "execute"
	EntryQuery       = "query"
)

var _ api.Contract = (*Engine)(nil)

// Engine runs one contract instance. Entry points are serialized and each
// one commits as a unit or not at all.
type Engine struct {
	mu sync.Mutex

	config    *Config
	contract  core.Address
	code      api.ContractConfig
	backend   store.Backend
	math      core.Arithmetic
	kernel    *wasi.Kernel
	lifecycle *fsm.FSM
	registry  *prometheus.Registry
	metrics   *metrics
	log       *zap.SugaredLogger
}

// NewEngine creates an engine and opens its storage backend
func NewEngine(ctx context.Context, config *Config, log *zap.SugaredLogger) (*Engine, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	contract := api.DefaultContractAddress()
	if config.ContractAddress != "" {
		contract = core.MustParseAddress(config.ContractAddress)
	}

	registry, m, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	backend, err := store.Get(store.BackendType(config.Backend), config.backendParams())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", config.Backend, err)
	}

	e := &Engine{
		config:   config,
		contract: contract,
		code:     api.DefaultContractConfig(),
		backend:  backend,
		math:     counter.CheckedMath{},
		registry: registry,
		metrics:  m,
		log:      log.With("contract", contract.String()),
	}

	if config.Arithmetic == ArithmeticWasm {
		kernel, err := wasi.NewKernel(ctx)
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("failed to create arithmetic kernel: %w", err)
		}
		e.kernel = kernel
		e.math = kernel
	}

	initial, err := e.detectState(ctx)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.lifecycle = newLifecycle(initial, e.log)

	e.log.Infow("engine started",
		"backend", config.Backend,
		"arithmetic", config.Arithmetic,
		"state", initial)
	return e, nil
}

// detectState derives the lifecycle state from storage
func (e *Engine) detectState(ctx context.Context) (string, error) {
	state := StateUninitialized
	err := e.backend.View(ctx, func(s core.Storage) error {
		deps := e.deps(ctx, s)
		_, err := counter.LoadState(deps)
		switch {
		case err == nil:
		case errors.Is(err, core.ErrNotFound):
			return nil
		default:
			return fmt.Errorf("failed to read contract state: %w", err)
		}
		if err := e.checkVersion(ctx, deps.Storage); err != nil {
			return fmt.Errorf("incompatible contract store: %w", err)
		}
		state = StateActive
		return nil
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// checkVersion refuses a store written by another contract or by a version
// outside the running major.minor line.
func (e *Engine) checkVersion(ctx context.Context, s core.Storage) error {
	v, err := semver.StrictNewVersion(e.code.Version)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalidVersion, err)
	}
	constraint := fmt.Sprintf("^%d.%d", v.Major(), v.Minor())
	return repository.AssertContractVersion(ctx, s, e.code.Name, constraint)
}

func (e *Engine) deps(ctx context.Context, s core.Storage) counter.Deps {
	return counter.Deps{
		Ctx:     ctx,
		Storage: store.ContractStorage(s, e.contract),
		Math:    e.math,
	}
}

// Contract returns the address of the hosted instance
func (e *Engine) Contract() core.Address {
	return e.contract
}

// LifecycleState returns "uninitialized" or "active"
func (e *Engine) LifecycleState() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lifecycle.Current()
}

// Instantiate implements api.Contract. The version record is written in
// the same transaction as the counter record.
func (e *Engine) Instantiate(ctx context.Context, sender core.Address, msg []byte) (res *types.Response, err error) {
	start := time.Now()
	defer func() { e.finish(EntryInstantiate, sender, start, res, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.lifecycle.Can(EventInstantiate) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInstantiated, e.contract)
	}

	decoded, err := types.DecodeInstantiate(msg)
	if err != nil {
		return nil, err
	}

	err = e.backend.Update(ctx, func(s core.Storage) error {
		deps := e.deps(ctx, s)
		if err := repository.SetContractVersion(ctx, deps.Storage, e.code.Name, e.code.Version); err != nil {
			return err
		}
		res, err = counter.Instantiate(deps, types.MessageInfo{Sender: sender}, decoded)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := e.lifecycle.Event(ctx, EventInstantiate); err != nil {
		return nil, fmt.Errorf("lifecycle: %w", err)
	}
	return res, nil
}

// Execute implements api.Contract
func (e *Engine) Execute(ctx context.Context, sender core.Address, msg []byte) (res *types.Response, err error) {
	start := time.Now()
	defer func() { e.finish(EntryExecute, sender, start, res, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifecycle.Is(StateUninitialized) {
		return nil, fmt.Errorf("contract %s not instantiated: %w", e.contract, core.ErrNotFound)
	}

	decoded, err := types.DecodeExecute(msg)
	if err != nil {
		return nil, err
	}

	err = e.backend.Update(ctx, func(s core.Storage) error {
		res, err = counter.Execute(e.deps(ctx, s), types.MessageInfo{Sender: sender}, decoded)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Query implements api.Contract
func (e *Engine) Query(ctx context.Context, msg []byte) (out []byte, err error) {
	start := time.Now()
	defer func() {
		e.metrics.observe(EntryQuery, start, err)
		if err != nil {
			e.log.Debugw("query failed", "error", err)
		}
	}()

	e.mu.Lock()
	defer e.mu.Unlock()

	decoded, err := types.DecodeQuery(msg)
	if err != nil {
		return nil, err
	}

	err = e.backend.View(ctx, func(s core.Storage) error {
		out, err = counter.Query(e.deps(ctx, s), decoded)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// State returns the full record, including the owner.
func (e *Engine) State(ctx context.Context) (state counter.State, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err = e.backend.View(ctx, func(s core.Storage) error {
		state, err = counter.LoadState(e.deps(ctx, s))
		return err
	})
	return state, err
}

// ContractInfo returns the version record written at instantiate
func (e *Engine) ContractInfo(ctx context.Context) (info *repository.ContractInfo, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err = e.backend.View(ctx, func(s core.Storage) error {
		info, err = repository.GetContractVersion(ctx, store.ContractStorage(s, e.contract))
		return err
	})
	return info, err
}

// Metrics returns the registry holding the engine's collectors
func (e *Engine) Metrics() *prometheus.Registry {
	return e.registry
}

// Close releases the backend and the arithmetic kernel. It waits for an
// in-flight entry point to finish.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	if e.kernel != nil {
		if err := e.kernel.Close(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("failed to close arithmetic kernel: %w", err))
		}
	}
	if err := e.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close backend: %w", err))
	}
	return errors.Join(errs...)
}

func (e *Engine) finish(entryPoint string, sender core.Address, start time.Time, res *types.Response, err error) {
	e.metrics.observe(entryPoint, start, err)
	if err != nil {
		e.log.Warnw("entry point failed",
			"entry_point", entryPoint,
			"sender", sender.String(),
			"error", err)
		return
	}
	kv := []any{"entry_point", entryPoint, "sender", sender.String()}
	e.log.Infow("contract event", append(kv, res.KeyValues()...)...)
}

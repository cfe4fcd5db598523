package vm

import (
	"context"
	"math"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/govm-net/counter/api"
	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/counter"
	"github.com/govm-net/counter/repository"
	"github.com/govm-net/counter/store"
	"github.com/govm-net/counter/store/db"
	"github.com/govm-net/counter/store/memory"
	"github.com/govm-net/counter/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	creator = core.MustParseAddress("c0000000000000000000000000000000000000e1")
	anyone  = core.MustParseAddress("a0000000000000000000000000000000000000e2")
)

func memoryConfig() *Config {
	config := DefaultConfig()
	config.Backend = "memory"
	return config
}

func dbConfig(t *testing.T) *Config {
	config := DefaultConfig()
	config.DBPath = filepath.Join(t.TempDir(), "counter.db")
	return config
}

func newTestEngine(t *testing.T, config *Config) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), config, nil)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func getCount(t *testing.T, e *Engine) int32 {
	t.Helper()
	out, err := e.Query(context.Background(), []byte(`{"get_count":{}}`))
	require.NoError(t, err)
	var res types.GetCountResponse
	require.NoError(t, types.Decode(out, &res))
	return res.Count
}

func getResetCount(t *testing.T, e *Engine) int32 {
	t.Helper()
	out, err := e.Query(context.Background(), []byte(`{"get_reset_count":{}}`))
	require.NoError(t, err)
	var res types.GetResetCountResponse
	require.NoError(t, types.Decode(out, &res))
	return res.ResetCount
}

func instantiate(t *testing.T, e *Engine, count int32) {
	t.Helper()
	msg := `{"count":` + strconv.Itoa(int(count)) + `}`
	_, err := e.Instantiate(context.Background(), creator, []byte(msg))
	require.NoError(t, err)
}

func TestEngineScenario(t *testing.T) {
	configs := map[string]func(t *testing.T) *Config{
		"memory": func(*testing.T) *Config { return memoryConfig() },
		"db":     dbConfig,
		"wasm": func(*testing.T) *Config {
			config := memoryConfig()
			config.Arithmetic = ArithmeticWasm
			return config
		},
	}

	for name, mk := range configs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := newTestEngine(t, mk(t))
			assert.Equal(t, StateUninitialized, e.LifecycleState())

			res, err := e.Instantiate(ctx, creator, []byte(`{"count":17}`))
			require.NoError(t, err)
			method, _ := res.Attr("method")
			assert.Equal(t, "instantiate", method)
			owner, _ := res.Attr("owner")
			assert.Equal(t, creator.String(), owner)
			assert.Equal(t, StateActive, e.LifecycleState())

			assert.Equal(t, int32(17), getCount(t, e))
			assert.Equal(t, int32(0), getResetCount(t, e))

			_, err = e.Execute(ctx, anyone, []byte(`{"increment":{}}`))
			require.NoError(t, err)
			assert.Equal(t, int32(18), getCount(t, e))

			res, err = e.Execute(ctx, anyone, []byte(`{"decrement":{"amount":5}}`))
			require.NoError(t, err)
			count, _ := res.Attr("count")
			assert.Equal(t, "13", count)

			_, err = e.Execute(ctx, anyone, []byte(`{"reset":{"count":3}}`))
			assert.ErrorIs(t, err, core.ErrUnauthorized)
			assert.Equal(t, int32(13), getCount(t, e))
			assert.Equal(t, int32(0), getResetCount(t, e))

			_, err = e.Execute(ctx, creator, []byte(`{"reset":{"count":3}}`))
			require.NoError(t, err)
			assert.Equal(t, int32(3), getCount(t, e))
			assert.Equal(t, int32(1), getResetCount(t, e))

			_, err = e.Execute(ctx, creator, []byte(`{"reset":{}}`))
			require.NoError(t, err)
			assert.Equal(t, int32(0), getCount(t, e))
			assert.Equal(t, int32(2), getResetCount(t, e))

			state, err := e.State(ctx)
			require.NoError(t, err)
			assert.Equal(t, creator, state.Owner)
		})
	}
}

func TestEngineInstantiateTwice(t *testing.T) {
	e := newTestEngine(t, memoryConfig())
	instantiate(t, e, 1)

	_, err := e.Instantiate(context.Background(), anyone, []byte(`{"count":99}`))
	assert.ErrorIs(t, err, ErrAlreadyInstantiated)

	state, err := e.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), state.Count)
	assert.Equal(t, creator, state.Owner)
}

func TestEngineBeforeInstantiate(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, memoryConfig())

	_, err := e.Execute(ctx, creator, []byte(`{"increment":{}}`))
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = e.Query(ctx, []byte(`{"get_count":{}}`))
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = e.ContractInfo(ctx)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestEngineInvalidMessages(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, memoryConfig())

	_, err := e.Instantiate(ctx, creator, []byte(`{"count":"seven"}`))
	assert.ErrorIs(t, err, types.ErrInvalidMessage)
	assert.Equal(t, StateUninitialized, e.LifecycleState())

	instantiate(t, e, 0)

	for _, msg := range []string{
		`{}`,
		`{"increment":{},"decrement":{}}`,
		`{"multiply":{"by":2}}`,
		`not json`,
		`{"increment":{}} {"decrement":{}}`,
		`{"increment":{}}garbage`,
		`{"Increment":{}}`,
	} {
		_, err := e.Execute(ctx, creator, []byte(msg))
		assert.ErrorIs(t, err, types.ErrInvalidMessage, msg)
	}

	_, err = e.Query(ctx, []byte(`{"get_owner":{}}`))
	assert.ErrorIs(t, err, types.ErrInvalidMessage)
	assert.Equal(t, int32(0), getCount(t, e))
}

func TestEngineOverflow(t *testing.T) {
	for _, arithmetic := range []string{ArithmeticNative, ArithmeticWasm} {
		t.Run(arithmetic, func(t *testing.T) {
			ctx := context.Background()
			config := memoryConfig()
			config.Arithmetic = arithmetic
			e := newTestEngine(t, config)
			instantiate(t, e, math.MaxInt32)

			_, err := e.Execute(ctx, creator, []byte(`{"increment":{}}`))
			assert.ErrorIs(t, err, core.ErrOverflow)
			assert.Equal(t, int32(math.MaxInt32), getCount(t, e))

			_, err = e.Execute(ctx, creator, []byte(`{"reset":{"count":-2147483648}}`))
			require.NoError(t, err)
			_, err = e.Execute(ctx, creator, []byte(`{"decrement":{}}`))
			assert.ErrorIs(t, err, core.ErrOverflow)
			assert.Equal(t, int32(math.MinInt32), getCount(t, e))
		})
	}
}

func TestEngineContractInfo(t *testing.T) {
	e := newTestEngine(t, memoryConfig())
	instantiate(t, e, 0)

	info, err := e.ContractInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.ContractName, info.Contract)
	assert.Equal(t, api.ContractVersion, info.Version)
}

func TestEngineReopen(t *testing.T) {
	ctx := context.Background()
	config := dbConfig(t)

	e, err := NewEngine(ctx, config, nil)
	require.NoError(t, err)
	instantiate(t, e, 5)
	_, err = e.Execute(ctx, anyone, []byte(`{"increment":{"amount":10}}`))
	require.NoError(t, err)
	require.NoError(t, e.Close())

	e = newTestEngine(t, config)
	assert.Equal(t, StateActive, e.LifecycleState())
	assert.Equal(t, int32(15), getCount(t, e))

	_, err = e.Instantiate(ctx, creator, []byte(`{"count":0}`))
	assert.ErrorIs(t, err, ErrAlreadyInstantiated)
}

func TestEngineContractsAreIsolated(t *testing.T) {
	ctx := context.Background()
	config := dbConfig(t)

	first := newTestEngine(t, config)
	instantiate(t, first, 1)
	require.NoError(t, first.Close())

	other := *config
	other.ContractAddress = anyone.String()
	second := newTestEngine(t, &other)
	assert.Equal(t, StateUninitialized, second.LifecycleState())

	_, err := second.Query(ctx, []byte(`{"get_count":{}}`))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestEngineMetrics(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, memoryConfig())
	instantiate(t, e, 0)

	_, err := e.Execute(ctx, creator, []byte(`{"increment":{}}`))
	require.NoError(t, err)
	_, err = e.Execute(ctx, anyone, []byte(`{"reset":{}}`))
	require.Error(t, err)
	_, err = e.Execute(ctx, anyone, []byte(`{}`))
	require.Error(t, err)
	getCount(t, e)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.calls.WithLabelValues(EntryInstantiate, outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.calls.WithLabelValues(EntryExecute, outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.calls.WithLabelValues(EntryExecute, outcomeUnauthorized)))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.calls.WithLabelValues(EntryExecute, outcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.calls.WithLabelValues(EntryQuery, outcomeOK)))

	families, err := e.Metrics().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "counter_entry_point_calls_total")
	assert.Contains(t, names, "counter_entry_point_duration_seconds")
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	config := memoryConfig()
	config.Arithmetic = "float"
	_, err := NewEngine(context.Background(), config, nil)
	assert.Error(t, err)
}

// seedStore writes a counter record stamped with the given contract name and
// version, the way another build would have left it.
func seedStore(t *testing.T, path, name, version string) {
	t.Helper()
	ctx := context.Background()
	backend, err := db.Open(path)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.Update(ctx, func(s core.Storage) error {
		contract := store.ContractStorage(s, api.DefaultContractAddress())
		if err := repository.SetContractVersion(ctx, contract, name, version); err != nil {
			return err
		}
		deps := counter.Deps{Ctx: ctx, Storage: contract}
		_, err := counter.Instantiate(deps, types.MessageInfo{Sender: creator}, types.InstantiateMsg{Count: 9})
		return err
	})
	require.NoError(t, err)
}

func TestEngineRefusesForeignStore(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr error
	}{
		{"other:contract", api.ContractVersion, core.ErrInvalidArgument},
		{api.ContractName, "1.0.0", repository.ErrInvalidVersion},
		{api.ContractName, "0.0.9", repository.ErrInvalidVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name+"@"+tt.version, func(t *testing.T) {
			config := dbConfig(t)
			seedStore(t, config.DBPath, tt.name, tt.version)

			_, err := NewEngine(context.Background(), config, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEngineAcceptsCompatibleStore(t *testing.T) {
	config := dbConfig(t)
	seedStore(t, config.DBPath, api.ContractName, api.ContractVersion)

	e := newTestEngine(t, config)
	assert.Equal(t, StateActive, e.LifecycleState())
	assert.Equal(t, int32(9), getCount(t, e))
}

func TestEngineCloseWaitsForExecute(t *testing.T) {
	ctx := context.Background()
	config := memoryConfig()
	config.Arithmetic = ArithmeticWasm
	e, err := NewEngine(ctx, config, nil)
	require.NoError(t, err)
	instantiate(t, e, 0)

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := e.Execute(ctx, anyone, []byte(`{"increment":{}}`))
				errs <- err
			}
		}()
	}
	require.NoError(t, e.Close())
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, memory.ErrClosed)
		}
	}
}

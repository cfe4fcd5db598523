// Package wasi evaluates counter arithmetic inside a wazero sandbox.
package wasi

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/govm-net/counter/core"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// counterMath is the binary encoding of:
//
//	(module
//	  (func (export "add") (param i32 i32) (result i64)
//	    local.get 0 i64.extend_i32_s local.get 1 i64.extend_i32_s i64.add)
//	  (func (export "sub") (param i32 i32) (result i64)
//	    local.get 0 i64.extend_i32_s local.get 1 i64.extend_i32_s i64.sub))
var counterMath = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type section: (i32, i32) -> i64
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7e,
	// function section: two functions of type 0
	0x03, 0x03, 0x02, 0x00, 0x00,
	// export section: "add" -> 0, "sub" -> 1
	0x07, 0x0d, 0x02,
	0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	0x03, 0x73, 0x75, 0x62, 0x00, 0x01,
	// code section
	0x0a, 0x15, 0x02,
	0x09, 0x00, 0x20, 0x00, 0xac, 0x20, 0x01, 0xac, 0x7c, 0x0b,
	0x09, 0x00, 0x20, 0x00, 0xac, 0x20, 0x01, 0xac, 0x7d, 0x0b,
}

const moduleName = "counter_math"

// Kernel implements core.Arithmetic by calling into the sandboxed module.
// Calls are serialized; a module instance is not safe for concurrent use.
type Kernel struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	add     api.Function
	sub     api.Function
}

// NewKernel compiles and instantiates the arithmetic module.
func NewKernel(ctx context.Context) (*Kernel, error) {
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())

	compiled, err := runtime.CompileModule(ctx, counterMath)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("failed to compile WebAssembly module: %w", err)
	}

	mod, err := runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(moduleName))
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WebAssembly module: %w", err)
	}

	k := &Kernel{
		runtime: runtime,
		add:     mod.ExportedFunction("add"),
		sub:     mod.ExportedFunction("sub"),
	}
	if k.add == nil || k.sub == nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("module %s does not export add and sub", moduleName)
	}
	return k, nil
}

// Add implements core.Arithmetic
func (k *Kernel) Add(ctx context.Context, a, b int32) (int32, error) {
	return k.call(ctx, k.add, "add", a, b)
}

// Sub implements core.Arithmetic
func (k *Kernel) Sub(ctx context.Context, a, b int32) (int32, error) {
	return k.call(ctx, k.sub, "sub", a, b)
}

func (k *Kernel) call(ctx context.Context, fn api.Function, name string, a, b int32) (int32, error) {
	k.mu.Lock()
	results, err := fn.Call(ctx, api.EncodeI32(a), api.EncodeI32(b))
	k.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("failed to call %s: %w", name, err)
	}
	if len(results) != 1 {
		return 0, fmt.Errorf("%s returned %d results", name, len(results))
	}

	wide := int64(results[0])
	if wide > math.MaxInt32 || wide < math.MinInt32 {
		return 0, fmt.Errorf("%w: %s(%d, %d)", core.ErrOverflow, name, a, b)
	}
	return int32(wide), nil
}

// Close releases the wazero runtime.
func (k *Kernel) Close(ctx context.Context) error {
	return k.runtime.Close(ctx)
}

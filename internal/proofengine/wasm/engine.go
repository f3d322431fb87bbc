// Package wasm hosts a prover compiled to WebAssembly.
//
// The guest exports its linear memory, allocate(size i32) i32 and
// generate(ptr i32, len i32) i64. generate reads a JSON request from the
// given region and returns the location of a JSON proofengine.Result packed
// as ptr<<32 | len.
package wasm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"zkvault/internal/attestation/models"
	"zkvault/internal/proofengine"
	"zkvault/pkg/domain"
)

type request struct {
	ClaimType domain.ClaimType `json:"claimType"`
	Evidence  any              `json:"evidence"`
}

type dkimInput struct {
	Domain        string `json:"domain"`
	DKIMSignature string `json:"dkimSignature"`
	AuthResults   string `json:"authResults"`
}

// Engine instantiates a fresh guest per generation so concurrent calls never
// share guest memory.
type Engine struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	seq      atomic.Uint64
}

// New compiles the prover module. Cancelling a Generate context aborts the
// guest mid-execution.
func New(ctx context.Context, wasmBytes []byte) (*Engine, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to compile prover: %w", err)
	}
	for _, name := range []string{"allocate", "generate"} {
		if _, ok := compiled.ExportedFunctions()[name]; !ok {
			rt.Close(ctx)
			return nil, fmt.Errorf("prover does not export %q", name)
		}
	}
	return &Engine{runtime: rt, compiled: compiled}, nil
}

func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

func (e *Engine) Generate(ctx context.Context, claim domain.ClaimType, evidence models.Evidence) (*proofengine.Result, error) {
	payload, err := encodeRequest(claim, evidence)
	if err != nil {
		return nil, err
	}
	defer clear(payload)

	name := fmt.Sprintf("prover-%d", e.seq.Add(1))
	mod, err := e.runtime.InstantiateModule(ctx, e.compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate prover: %w", err)
	}
	defer mod.Close(ctx)

	packed, err := call(ctx, mod, payload)
	if err != nil {
		return nil, err
	}
	ptr, length := uint32(packed>>32), uint32(packed)
	if ptr == 0 || length == 0 {
		return nil, fmt.Errorf("prover returned no result")
	}
	data, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("prover result out of bounds")
	}
	var result proofengine.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode prover result: %w", err)
	}
	return &result, nil
}

func call(ctx context.Context, mod api.Module, input []byte) (uint64, error) {
	res, err := mod.ExportedFunction("allocate").Call(ctx, uint64(len(input)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in prover: %w", err)
	}
	if len(res) == 0 {
		return 0, fmt.Errorf("allocate returned no results")
	}
	ptr := uint32(res[0])
	mem := mod.Memory()
	if mem == nil || !mem.Write(ptr, input) {
		return 0, fmt.Errorf("failed to write request to prover memory")
	}
	out, err := mod.ExportedFunction("generate").Call(ctx, uint64(ptr), uint64(len(input)))
	mem.Write(ptr, make([]byte, len(input)))
	if err != nil {
		return 0, fmt.Errorf("prover failed: %w", err)
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("generate returned no results")
	}
	return out[0], nil
}

func encodeRequest(claim domain.ClaimType, evidence models.Evidence) ([]byte, error) {
	if evidence == nil || evidence.ClaimType() != claim {
		return nil, fmt.Errorf("evidence does not match claim type %s", claim)
	}
	req := request{ClaimType: claim}
	switch ev := evidence.(type) {
	case *models.CountryEvidence, *models.AgeEvidence:
		req.Evidence = ev
	case *models.DKIMEvidence:
		if ev.Triple == nil {
			return nil, fmt.Errorf("missing dkim evidence")
		}
		req.Evidence = dkimInput{
			Domain:        ev.Triple.Domain,
			DKIMSignature: ev.Triple.DKIMSignature,
			AuthResults:   ev.Triple.AuthResults,
		}
	default:
		return nil, fmt.Errorf("unsupported evidence %T", evidence)
	}
	return json.Marshal(req)
}

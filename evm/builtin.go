// Copyright (c) 2025 Patricia DB Authors
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at patricia-db.org/bsl11.
//
// Change Date: 2029-1-1
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evm

import (
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/patricia-db/patricia/common"
	"golang.org/x/crypto/ripemd160"
)

// Builtin is a precompiled contract: a natively implemented function
// addressable by EVM calls, with a deterministic gas cost derived from the
// input size.
//
// Execution writes into a caller-provided output region, truncating or
// zero-padding as dictated by the region's size. Builtins never fail: ill
// formed input yields a well-defined output, for ecrecover an all-zero
// result.
type Builtin struct {
	name    string
	pricing linearPricing
	run     func(input, output []byte)
}

// linearPricing is the cost model of the frontier builtins: a base fee plus
// a per-word fee on the input, partial words rounded up.
type linearPricing struct {
	base, word uint64
}

func (p linearPricing) cost(inputSize uint64) uint64 {
	return p.base + p.word*((inputSize+31)/32)
}

// New creates the named builtin with a linear cost model. The known names
// are identity, ecrecover, sha256, and ripemd160.
func New(name string, base, word uint64) (*Builtin, error) {
	var run func(input, output []byte)
	switch name {
	case "identity":
		run = runIdentity
	case "ecrecover":
		run = runEcrecover
	case "sha256":
		run = runSha256
	case "ripemd160":
		run = runRipemd160
	default:
		return nil, fmt.Errorf("unknown builtin: %s", name)
	}
	return &Builtin{
		name:    name,
		pricing: linearPricing{base: base, word: word},
		run:     run,
	}, nil
}

// Registry creates the builtin set with the frontier cost parameters.
func Registry() map[string]*Builtin {
	res := map[string]*Builtin{}
	for _, config := range []struct {
		name       string
		base, word uint64
	}{
		{"ecrecover", 3000, 0},
		{"sha256", 60, 12},
		{"ripemd160", 600, 120},
		{"identity", 15, 3},
	} {
		builtin, err := New(config.name, config.base, config.word)
		if err != nil {
			panic(err) // the set above only lists known names
		}
		res[config.name] = builtin
	}
	return res
}

func (b *Builtin) Name() string {
	return b.name
}

// Cost computes the gas cost of running this builtin on an input of the
// given size.
func (b *Builtin) Cost(inputSize uint64) uint64 {
	return b.pricing.cost(inputSize)
}

// Run executes this builtin on the given input, writing the result to the
// output region. Results longer than the region are truncated; shorter
// results leave the remainder of the region untouched.
func (b *Builtin) Run(input, output []byte) {
	b.run(input, output)
}

func runIdentity(input, output []byte) {
	copy(output, input)
}

func runSha256(input, output []byte) {
	digest := sha256.Sum256(input)
	copy(output, digest[:])
}

func runRipemd160(input, output []byte) {
	hasher := ripemd160.New()
	hasher.Write(input)
	// The 20-byte digest is left-padded to a 32-byte word.
	var res [32]byte
	copy(res[12:], hasher.Sum(nil))
	copy(output, res[:])
}

func runEcrecover(input, output []byte) {
	// The input is interpreted as four 32-byte words: the message hash, the
	// recovery id v, and the signature values r and s. Short input is
	// zero-extended.
	var in [128]byte
	copy(in[:], input)

	// The result region is zeroed whether or not recovery succeeds, so that
	// stale data never masquerades as a recovered address.
	var res [32]byte
	defer func() { copy(output, res[:]) }()

	for _, b := range in[32:63] {
		if b != 0 {
			return
		}
	}
	v := in[63]
	if v != 27 && v != 28 {
		return
	}

	sig := make([]byte, 65)
	copy(sig, in[64:128])
	sig[64] = v - 27
	pubkey, err := crypto.Ecrecover(in[:32], sig)
	if err != nil {
		return
	}
	address := common.Keccak256(pubkey[1:])
	copy(res[12:], address[12:])
}

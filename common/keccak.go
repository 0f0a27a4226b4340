// Copyright (c) 2025 Patricia DB Authors
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at patricia-db.org/bsl11.
//
// Change Date: 2029-1-1
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"sync"

	"golang.org/x/crypto/sha3"
)

// Keccak256 computes the keccak-256 digest of the given data. Hasher
// instances are pooled since node hashing is a high-frequency operation.
func Keccak256(data []byte) Hash {
	hasher := keccakHasherPool.Get().(keccakHasher)
	hasher.Reset()
	hasher.Write(data)
	var res Hash
	hasher.Read(res[:])
	keccakHasherPool.Put(hasher)
	return res
}

var keccakHasherPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256().(keccakHasher) }}

// keccakHasher is the subset of the sha3 state used here. Read is preferred
// over Sum as it avoids copying the internal state.
type keccakHasher interface {
	Reset()
	Write(in []byte) (int, error)
	Read(out []byte) (int, error)
}

// Copyright (c) 2025 Patricia DB Authors
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at patricia-db.org/bsl11.
//
// Change Date: 2029-1-1
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package mpt

import (
	"bytes"

	"github.com/patricia-db/patricia/common"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Journal accumulates node encodings produced during a commit cycle before
// they reach the backing store. Nodes are keyed by the hash of their
// encoding, making the journal content-addressed: recording the same
// encoding twice is a no-op, and identical sub-tries are stored once.
//
// A journal also serves as a read overlay during the cycle: references
// produced by EncodeAndCommit may point to nodes that only exist in the
// journal until the cycle is completed.
//
// Journals are not safe for concurrent use; each trie instance owns one.
type Journal struct {
	pending map[common.Hash][]byte
}

// Entry is a recorded node awaiting persistence, pairing the hash of an
// encoding with the encoding itself.
type Entry struct {
	Hash common.Hash
	Data []byte
}

func NewJournal() *Journal {
	return &Journal{pending: map[common.Hash][]byte{}}
}

// Record adds the given node encoding to the journal and returns the hash of
// the encoding. Recording an encoding that is already pending has no effect
// beyond returning its hash.
func (j *Journal) Record(data []byte) common.Hash {
	hash := common.Keccak256(data)
	if _, exists := j.pending[hash]; !exists {
		j.pending[hash] = data
	}
	return hash
}

// Get retrieves a pending encoding by its hash.
func (j *Journal) Get(hash common.Hash) ([]byte, bool) {
	data, exists := j.pending[hash]
	return data, exists
}

// Size returns the number of pending encodings.
func (j *Journal) Size() int {
	return len(j.pending)
}

// Drain removes all pending encodings from the journal and returns them
// ordered by hash. The deterministic order makes write batches reproducible
// independent of the insertion history.
func (j *Journal) Drain() []Entry {
	hashes := maps.Keys(j.pending)
	slices.SortFunc(hashes, func(a, b common.Hash) bool {
		return bytes.Compare(a[:], b[:]) < 0
	})
	res := make([]Entry, 0, len(hashes))
	for _, hash := range hashes {
		res = append(res, Entry{Hash: hash, Data: j.pending[hash]})
	}
	maps.Clear(j.pending)
	return res
}

// Reset discards all pending encodings.
func (j *Journal) Reset() {
	maps.Clear(j.pending)
}

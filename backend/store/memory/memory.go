// Copyright (c) 2025 Patricia DB Authors
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at patricia-db.org/bsl11.
//
// Change Date: 2029-1-1
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"sync"

	"github.com/patricia-db/patricia/common"
	"github.com/patricia-db/patricia/database/mpt"
)

// Store is an in-memory node store keeping all node encodings in a map. It
// is mainly intended for tests and ephemeral tries; nothing is persisted
// beyond the lifetime of the instance.
//
// Unlike a trie, the store is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[common.Hash][]byte
}

func NewStore() *Store {
	return &Store{data: map[common.Hash][]byte{}}
}

// Get retrieves the node encoding stored under the given hash, or
// mpt.ErrNotFound if no such encoding exists. The returned slice is a copy
// and safe to modify.
func (s *Store) Get(hash common.Hash) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, exists := s.data[hash]
	if !exists {
		return nil, mpt.ErrNotFound
	}
	res := make([]byte, len(data))
	copy(res, data)
	return res, nil
}

// PutBatch stores the given entries. Entry data is copied, so callers are
// free to reuse their buffers.
func (s *Store) PutBatch(entries []mpt.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		data := make([]byte, len(entry.Data))
		copy(data, entry.Data)
		s.data[entry.Hash] = data
	}
	return nil
}

// Size returns the number of stored node encodings.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

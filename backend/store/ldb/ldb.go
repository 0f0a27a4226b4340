// Copyright (c) 2025 Patricia DB Authors
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at patricia-db.org/bsl11.
//
// Change Date: 2029-1-1
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"errors"
	"fmt"

	"github.com/patricia-db/patricia/common"
	"github.com/patricia-db/patricia/database/mpt"
	"github.com/syndtr/goleveldb/leveldb"
)

// nodeKeyPrefix is the key-space prefix of node encodings, separating them
// from other tables sharing the same LevelDB instance.
const nodeKeyPrefix = byte('n')

// Store is a node store persisting node encodings in a LevelDB instance.
// Keys are the 32-byte encoding hashes under a one-byte table prefix; writes
// are applied in atomic batches.
//
// The store does not own the LevelDB instance; closing it is up to the
// caller. The same instance may back multiple stores and other tables.
type Store struct {
	db common.LevelDB
}

func NewStore(db common.LevelDB) *Store {
	return &Store{db: db}
}

// Get retrieves the node encoding stored under the given hash, or
// mpt.ErrNotFound if no such encoding exists.
func (s *Store) Get(hash common.Hash) ([]byte, error) {
	data, err := s.db.Get(dbKey(hash), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, mpt.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read node %v: %w", hash, err)
	}
	return data, nil
}

// PutBatch stores the given entries in a single atomic write batch.
func (s *Store) PutBatch(entries []mpt.Entry) error {
	batch := new(leveldb.Batch)
	for _, entry := range entries {
		batch.Put(dbKey(entry.Hash), entry.Data)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write batch of %d nodes: %w", len(entries), err)
	}
	return nil
}

func dbKey(hash common.Hash) []byte {
	res := make([]byte, 0, common.HashSize+1)
	res = append(res, nodeKeyPrefix)
	return append(res, hash[:]...)
}

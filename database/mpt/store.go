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

import "github.com/patricia-db/patricia/common"

//go:generate mockgen -source store.go -destination store_mocks.go -package mpt

// ErrNotFound is reported by node stores when asked for a hash they do not
// contain.
const ErrNotFound = common.ConstError("node not found")

// NodeStore is the persistence interface of the trie: a content-addressed
// key-value store mapping the hash of a node encoding to the encoding. Tries
// only add entries, never remove them; encodings of nodes that became
// unreachable remain available for historic roots.
type NodeStore interface {
	// Get retrieves the node encoding stored under the given hash. It
	// reports ErrNotFound if no encoding is stored under the hash.
	Get(hash common.Hash) ([]byte, error)

	// PutBatch stores the given entries. The batch is to be applied
	// atomically where the backing store supports it.
	PutBatch(entries []Entry) error
}

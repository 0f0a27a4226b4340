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
	"encoding/hex"
	"fmt"
)

// HashSize is the byte length of a content hash.
const HashSize = 32

// Hash is a 32-byte cryptographic digest used for content addressing of
// serialized trie nodes. The hash of a node is a commitment to the node's
// canonical encoding and, transitively, to the entire sub-trie below it.
type Hash [HashSize]byte

// HashFromString parses a hexadecimal string into a Hash. The input must
// describe exactly 32 bytes.
func HashFromString(s string) (Hash, error) {
	var hash Hash
	data, err := hex.DecodeString(s)
	if err != nil {
		return hash, err
	}
	if len(data) != HashSize {
		return hash, fmt.Errorf("invalid hash length: got %d bytes, wanted %d", len(data), HashSize)
	}
	copy(hash[:], data)
	return hash, nil
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

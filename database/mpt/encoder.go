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
	"fmt"
	"sync"

	"github.com/patricia-db/patricia/common"
	"github.com/patricia-db/patricia/database/mpt/rlp"
)

// emptyNodeEncoding is the canonical encoding of the empty node: the RLP
// encoding of the empty string.
var emptyNodeEncoding = rlp.Encode(rlp.String{})

// EmptyNodeHash is the hash of the canonical empty node encoding. It is the
// root hash of an empty trie.
var EmptyNodeHash = common.Keccak256(emptyNodeEncoding)

// embeddingSizeLimit is the maximum encoded size of a node that gets embedded
// in its parent's encoding instead of being referenced by its hash.
const embeddingSizeLimit = 31

// EncodeNode computes the canonical RLP encoding of the given node. The
// encoding embeds the node's path, value, and child references; children
// themselves are expected to be encoded beforehand, their references produced
// by EncodeAndCommit.
func EncodeNode(node Node) ([]byte, error) {
	switch n := node.(type) {
	case EmptyNode:
		return emptyNodeEncoding, nil
	case *LeafNode:
		items := [2]rlp.Item{
			rlp.String{Str: n.Path.Encoded(true)},
			rlp.String{Str: n.Value},
		}
		return rlp.Encode(rlp.List{Items: items[:]}), nil
	case *ExtensionNode:
		items := [2]rlp.Item{
			rlp.String{Str: n.Path.Encoded(false)},
			referenceItem(n.Child),
		}
		return rlp.Encode(rlp.List{Items: items[:]}), nil
	case *BranchNode:
		items := branchItemsPool.Get().(*[]rlp.Item)
		defer branchItemsPool.Put(items)
		for i, child := range n.Children {
			(*items)[i] = referenceItem(child)
		}
		(*items)[16] = rlp.String{Str: n.Value}
		return rlp.Encode(rlp.List{Items: *items}), nil
	default:
		return nil, fmt.Errorf("unsupported node type %T", node)
	}
}

// EncodeAndCommit encodes the given node and converts the encoding into a
// reference fit for embedding in a parent node. Encodings of up to 31 bytes
// are returned as-is, becoming part of the parent's encoding; larger
// encodings are recorded in the given journal and referenced by their hash.
func EncodeAndCommit(node Node, journal *Journal) (Reference, error) {
	data, err := EncodeNode(node)
	if err != nil {
		return nil, err
	}
	if len(data) <= embeddingSizeLimit {
		return Reference(data), nil
	}
	hash := journal.Record(data)
	return Reference(hash[:]), nil
}

// referenceItem maps a child reference on its encoding in the parent node: an
// absent child becomes the empty string, a hashed child the 32-byte hash
// string, and an embedded child contributes its raw encoding verbatim.
func referenceItem(r Reference) rlp.Item {
	if r.IsEmpty() {
		return rlp.String{}
	}
	if r.IsHash() {
		return rlp.String{Str: r}
	}
	return rlp.Encoded{Data: r}
}

// branchItemsPool maintains reusable item slices for branch node encoding,
// saving the allocation of a 17-element slice per encoded branch.
var branchItemsPool = sync.Pool{
	New: func() any {
		items := make([]rlp.Item, 17)
		return &items
	},
}

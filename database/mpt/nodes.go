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

	"github.com/patricia-db/patricia/common"
)

// ErrCorruptData is reported whenever an encoded node or path does not match
// the canonical trie encoding. It never escalates to a panic; malformed
// persistent data must surface as a recoverable error to the caller.
const ErrCorruptData = common.ConstError("corrupt node encoding")

// This file defines the in-memory representation of Merkle-Patricia-Trie
// nodes. A trie is built from four node types:
//
//   - empty nodes, representing empty sub-tries
//   - branch nodes, offering a 16-way fan-out on the next key nibble plus an
//     optional value terminating exactly at the branch
//   - extension nodes, compressing a shared nibble sequence on the way to a
//     branch node
//   - leaf nodes, storing a value under the remaining key suffix
//
// Nodes are immutable snapshots of encoded data: all byte slices held by a
// decoded node are views into the encoding they were decoded from. Mutations
// are expressed by constructing new nodes and re-encoding them.

// Node is the interface of the in-memory representation of a single trie
// node.
type Node interface {
	fmt.Stringer

	// isNode restricts the set of implementations to the types of this file.
	isNode()
}

// EmptyNode is the node type of an empty sub-trie.
type EmptyNode struct{}

// LeafNode holds a value under the key suffix given by its path. The path may
// be empty for values terminating on a branch boundary.
type LeafNode struct {
	Path  NibbleSlice
	Value []byte
}

// ExtensionNode compresses a nibble sequence shared by all keys in its
// sub-trie. Its path is never empty and its child always refers to a branch
// node.
type ExtensionNode struct {
	Path  NibbleSlice
	Child Reference
}

// BranchNode dispatches on the next key nibble. Absent children are
// represented by empty references. The value, if present, belongs to the key
// ending exactly at this node.
type BranchNode struct {
	Children [16]Reference
	Value    []byte
}

func (EmptyNode) isNode()      {}
func (*LeafNode) isNode()      {}
func (*ExtensionNode) isNode() {}
func (*BranchNode) isNode()    {}

func (EmptyNode) String() string {
	return "Empty"
}

func (n *LeafNode) String() string {
	return fmt.Sprintf("Leaf(%v,%x)", n.Path, n.Value)
}

func (n *ExtensionNode) String() string {
	return fmt.Sprintf("Extension(%v,%v)", n.Path, n.Child)
}

func (n *BranchNode) String() string {
	res := "Branch("
	for i, child := range n.Children {
		if !child.IsEmpty() {
			res += fmt.Sprintf("%v:%v,", Nibble(i), child)
		}
	}
	return res + fmt.Sprintf("%x)", n.Value)
}

// ----------------------------------------------------------------------------
//                              References
// ----------------------------------------------------------------------------

// Reference identifies the child of a branch or extension node. Nodes whose
// encoding exceeds 31 bytes are referenced by the 32-byte hash of their
// encoding; smaller nodes are embedded directly, the reference holding their
// raw encoding. An empty reference marks an absent child.
type Reference []byte

// IsEmpty determines whether this reference marks an absent child.
func (r Reference) IsEmpty() bool {
	return len(r) == 0
}

// IsHash determines whether this reference holds the hash of a node encoding
// rather than an embedded encoding.
func (r Reference) IsHash() bool {
	return len(r) == common.HashSize
}

// Hash returns the referenced hash; the second return value is false if the
// reference is empty or embeds a node directly.
func (r Reference) Hash() (common.Hash, bool) {
	if !r.IsHash() {
		return common.Hash{}, false
	}
	var res common.Hash
	copy(res[:], r)
	return res, true
}

func (r Reference) String() string {
	if r.IsEmpty() {
		return "-"
	}
	if hash, ok := r.Hash(); ok {
		return hash.String()
	}
	return fmt.Sprintf("embedded(%x)", []byte(r))
}

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
	"github.com/patricia-db/patricia/database/mpt/rlp"
)

// Trie is a Merkle-Patricia-Trie mapping arbitrary byte keys to byte values,
// backed by a content-addressed node store. Mutations are collected in a
// journal and only reach the store when a commit cycle is completed through
// Commit; Abort discards all mutations since the last commit.
//
// Nodes modified during a cycle are re-encoded bottom-up: every change to a
// node changes its encoding, its hash, and thereby the reference held by its
// parent, up to the root. Unmodified sub-tries keep their references and are
// shared between the old and the new version of the trie.
//
// Trie instances are not safe for concurrent use.
type Trie struct {
	store   NodeStore
	journal *Journal

	// root is the encoding of the current root node, including any
	// uncommitted modifications.
	root []byte

	// committedRoot is the root hash of the last completed commit cycle,
	// the state Abort falls back to.
	committedRoot common.Hash
}

// NewEmptyTrie creates an empty trie on top of the given store.
func NewEmptyTrie(store NodeStore) *Trie {
	return &Trie{
		store:         store,
		journal:       NewJournal(),
		root:          emptyNodeEncoding,
		committedRoot: EmptyNodeHash,
	}
}

// NewTrie opens the trie rooted at the given hash. The root node encoding is
// fetched from the store eagerly, so opening a trie at an unknown root fails
// immediately rather than on first access.
func NewTrie(store NodeStore, root common.Hash) (*Trie, error) {
	if root == EmptyNodeHash {
		return NewEmptyTrie(store), nil
	}
	data, err := store.Get(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %v: %w", root, err)
	}
	return &Trie{
		store:         store,
		journal:       NewJournal(),
		root:          data,
		committedRoot: root,
	}, nil
}

// RootHash returns the hash of the current root node encoding, including
// uncommitted modifications.
func (t *Trie) RootHash() common.Hash {
	return common.Keccak256(t.root)
}

// Get retrieves the value stored under the given key. The second return
// value distinguishes a missing key from an error; absence is not an error.
func (t *Trie) Get(key []byte) ([]byte, bool, error) {
	data := t.root
	partial := NewNibbleSlice(key)
	for {
		node, err := DecodeNode(data)
		if err != nil {
			return nil, false, err
		}
		switch n := node.(type) {
		case EmptyNode:
			return nil, false, nil
		case *LeafNode:
			if n.Path.Equal(partial) {
				return n.Value, true, nil
			}
			return nil, false, nil
		case *ExtensionNode:
			if !partial.HasPrefix(n.Path) {
				return nil, false, nil
			}
			partial = partial.Mid(n.Path.Length())
			if data, err = t.resolve(n.Child); err != nil {
				return nil, false, err
			}
		case *BranchNode:
			if partial.IsEmpty() {
				return n.Value, n.Value != nil, nil
			}
			child := n.Children[partial.At(0)]
			if child.IsEmpty() {
				return nil, false, nil
			}
			partial = partial.Mid(1)
			if data, err = t.resolve(child); err != nil {
				return nil, false, err
			}
		}
	}
}

// Set stores the given value under the given key, replacing any previous
// value. Setting an empty value is equivalent to deleting the key, keeping
// the trie free of empty values and thereby canonical.
func (t *Trie) Set(key, value []byte) error {
	if len(value) == 0 {
		return t.Delete(key)
	}
	node, err := t.setNode(t.root, NewNibbleSlice(key), value)
	if err != nil {
		return err
	}
	return t.setRoot(node)
}

// Delete removes the value stored under the given key. Deleting a key that
// is not present is a no-op.
func (t *Trie) Delete(key []byte) error {
	node, changed, err := t.deleteNode(t.root, NewNibbleSlice(key))
	if err != nil || !changed {
		return err
	}
	return t.setRoot(node)
}

// Commit completes the current commit cycle: the root encoding is recorded
// in the journal and all pending encodings are handed to the store in a
// single batch. The returned hash identifies the committed trie version and
// can be used to re-open it through NewTrie.
func (t *Trie) Commit() (common.Hash, error) {
	hash := EmptyNodeHash
	if !rlp.IsEmptyString(t.root) {
		hash = t.journal.Record(t.root)
	}
	entries := t.journal.Drain()
	if len(entries) > 0 {
		if err := t.store.PutBatch(entries); err != nil {
			return common.Hash{}, fmt.Errorf("failed to persist %d nodes: %w", len(entries), err)
		}
	}
	t.committedRoot = hash
	return hash, nil
}

// Abort discards all modifications of the current commit cycle, restoring
// the state of the last completed commit.
func (t *Trie) Abort() error {
	t.journal.Reset()
	if t.committedRoot == EmptyNodeHash {
		t.root = emptyNodeEncoding
		return nil
	}
	data, err := t.store.Get(t.committedRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root %v: %w", t.committedRoot, err)
	}
	t.root = data
	return nil
}

// setRoot re-encodes the given node as the new root. Unlike inner nodes, the
// root is kept as a full encoding rather than a reference so that RootHash
// is defined for roots of any size.
func (t *Trie) setRoot(node Node) error {
	data, err := EncodeNode(node)
	if err != nil {
		return err
	}
	t.root = data
	return nil
}

// resolve turns a child reference into the encoding of the referenced node.
// Embedded references are their own encoding; hashed references are looked
// up in the journal first, covering nodes of the current uncommitted cycle,
// and in the store second.
func (t *Trie) resolve(ref Reference) ([]byte, error) {
	hash, ok := ref.Hash()
	if !ok {
		return ref, nil
	}
	if data, exists := t.journal.Get(hash); exists {
		return data, nil
	}
	data, err := t.store.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve node %v: %w", hash, err)
	}
	return data, nil
}

// ----------------------------------------------------------------------------
//                            Insert and Delete
// ----------------------------------------------------------------------------

// setNode implements the recursive descent of Set on the node with the given
// encoding, returning the replacement node covering the same position.
func (t *Trie) setNode(data []byte, partial NibbleSlice, value []byte) (Node, error) {
	node, err := DecodeNode(data)
	if err != nil {
		return nil, err
	}
	switch n := node.(type) {
	case EmptyNode:
		return &LeafNode{Path: partial, Value: value}, nil

	case *LeafNode:
		commonLen := partial.CommonPrefixLength(n.Path)
		if commonLen == partial.Length() && commonLen == n.Path.Length() {
			return &LeafNode{Path: partial, Value: value}, nil
		}
		// The paths diverge; both values move into a new branch node.
		branch := &BranchNode{}
		if err := t.placeInBranch(branch, n.Path.Mid(commonLen), n.Value); err != nil {
			return nil, err
		}
		if err := t.placeInBranch(branch, partial.Mid(commonLen), value); err != nil {
			return nil, err
		}
		return t.wrapInExtension(partial.Prefix(commonLen), branch)

	case *ExtensionNode:
		commonLen := partial.CommonPrefixLength(n.Path)
		if commonLen == n.Path.Length() {
			// The full extension path is consumed; descend into the child.
			childData, err := t.resolve(n.Child)
			if err != nil {
				return nil, err
			}
			newChild, err := t.setNode(childData, partial.Mid(commonLen), value)
			if err != nil {
				return nil, err
			}
			ref, err := EncodeAndCommit(newChild, t.journal)
			if err != nil {
				return nil, err
			}
			return &ExtensionNode{Path: n.Path, Child: ref}, nil
		}
		// The paths diverge within the extension; a new branch takes over
		// at the fork, the remainder of the extension moving below it.
		branch := &BranchNode{}
		forkNibble := n.Path.At(commonLen)
		if commonLen+1 == n.Path.Length() {
			branch.Children[forkNibble] = n.Child
		} else {
			tail := &ExtensionNode{Path: n.Path.Mid(commonLen + 1), Child: n.Child}
			if branch.Children[forkNibble], err = EncodeAndCommit(tail, t.journal); err != nil {
				return nil, err
			}
		}
		if err := t.placeInBranch(branch, partial.Mid(commonLen), value); err != nil {
			return nil, err
		}
		return t.wrapInExtension(n.Path.Prefix(commonLen), branch)

	case *BranchNode:
		if partial.IsEmpty() {
			n.Value = value
			return n, nil
		}
		pos := partial.At(0)
		childData := emptyNodeEncoding
		if child := n.Children[pos]; !child.IsEmpty() {
			if childData, err = t.resolve(child); err != nil {
				return nil, err
			}
		}
		newChild, err := t.setNode(childData, partial.Mid(1), value)
		if err != nil {
			return nil, err
		}
		if n.Children[pos], err = EncodeAndCommit(newChild, t.journal); err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, fmt.Errorf("unsupported node type %T", node)
}

// placeInBranch stores a value in the given branch under the given relative
// path: directly as the branch value for an empty path, as a leaf child
// otherwise.
func (t *Trie) placeInBranch(branch *BranchNode, path NibbleSlice, value []byte) error {
	if path.IsEmpty() {
		branch.Value = value
		return nil
	}
	leaf := &LeafNode{Path: path.Mid(1), Value: value}
	ref, err := EncodeAndCommit(leaf, t.journal)
	if err != nil {
		return err
	}
	branch.Children[path.At(0)] = ref
	return nil
}

// wrapInExtension places the given branch below an extension node carrying
// the given path, or returns the branch unchanged if the path is empty.
func (t *Trie) wrapInExtension(path NibbleSlice, branch *BranchNode) (Node, error) {
	if path.IsEmpty() {
		return branch, nil
	}
	ref, err := EncodeAndCommit(branch, t.journal)
	if err != nil {
		return nil, err
	}
	return &ExtensionNode{Path: path, Child: ref}, nil
}

// deleteNode implements the recursive descent of Delete on the node with the
// given encoding. The boolean result reports whether anything was removed;
// an unchanged sub-trie keeps its encoding and thereby its references.
func (t *Trie) deleteNode(data []byte, partial NibbleSlice) (Node, bool, error) {
	node, err := DecodeNode(data)
	if err != nil {
		return nil, false, err
	}
	switch n := node.(type) {
	case EmptyNode:
		return n, false, nil

	case *LeafNode:
		if n.Path.Equal(partial) {
			return EmptyNode{}, true, nil
		}
		return n, false, nil

	case *ExtensionNode:
		if !partial.HasPrefix(n.Path) {
			return n, false, nil
		}
		childData, err := t.resolve(n.Child)
		if err != nil {
			return nil, false, err
		}
		newChild, changed, err := t.deleteNode(childData, partial.Mid(n.Path.Length()))
		if err != nil || !changed {
			return n, false, err
		}
		// The child may have collapsed into a structure that can merge
		// with this extension.
		switch c := newChild.(type) {
		case EmptyNode:
			return EmptyNode{}, true, nil
		case *LeafNode:
			return &LeafNode{Path: joinPaths(n.Path, c.Path), Value: c.Value}, true, nil
		case *ExtensionNode:
			return &ExtensionNode{Path: joinPaths(n.Path, c.Path), Child: c.Child}, true, nil
		case *BranchNode:
			ref, err := EncodeAndCommit(c, t.journal)
			if err != nil {
				return nil, false, err
			}
			return &ExtensionNode{Path: n.Path, Child: ref}, true, nil
		}
		return nil, false, fmt.Errorf("unsupported node type %T", newChild)

	case *BranchNode:
		if partial.IsEmpty() {
			if n.Value == nil {
				return n, false, nil
			}
			n.Value = nil
			res, err := t.collapseBranch(n)
			return res, true, err
		}
		pos := partial.At(0)
		child := n.Children[pos]
		if child.IsEmpty() {
			return n, false, nil
		}
		childData, err := t.resolve(child)
		if err != nil {
			return nil, false, err
		}
		newChild, changed, err := t.deleteNode(childData, partial.Mid(1))
		if err != nil || !changed {
			return n, false, err
		}
		if _, isEmpty := newChild.(EmptyNode); isEmpty {
			n.Children[pos] = nil
		} else if n.Children[pos], err = EncodeAndCommit(newChild, t.journal); err != nil {
			return nil, false, err
		}
		res, err := t.collapseBranch(n)
		return res, true, err
	}
	return nil, false, fmt.Errorf("unsupported node type %T", node)
}

// collapseBranch restores the canonical shape of a branch node after a
// removal. Branches with at least two children, or one child and a value,
// remain branches. A branch reduced to only its value becomes a leaf, and a
// branch reduced to a single child merges with that child.
func (t *Trie) collapseBranch(n *BranchNode) (Node, error) {
	count := 0
	pos := Nibble(0)
	for i, child := range n.Children {
		if !child.IsEmpty() {
			count++
			pos = Nibble(i)
		}
	}
	if count >= 2 || (count == 1 && n.Value != nil) {
		return n, nil
	}
	if count == 0 {
		if n.Value == nil {
			return EmptyNode{}, nil
		}
		return &LeafNode{Path: NibbleSlice{}, Value: n.Value}, nil
	}
	// A single child and no value: the child absorbs the branch, extending
	// its path by the child's position.
	childData, err := t.resolve(n.Children[pos])
	if err != nil {
		return nil, err
	}
	child, err := DecodeNode(childData)
	if err != nil {
		return nil, err
	}
	switch c := child.(type) {
	case *LeafNode:
		return &LeafNode{Path: prependNibble(pos, c.Path), Value: c.Value}, nil
	case *ExtensionNode:
		return &ExtensionNode{Path: prependNibble(pos, c.Path), Child: c.Child}, nil
	case *BranchNode:
		// The surviving child keeps its reference; only a one-nibble
		// extension is placed on top.
		return &ExtensionNode{Path: pathOfNibbles([]Nibble{pos}), Child: n.Children[pos]}, nil
	}
	return nil, fmt.Errorf("%w: branch child of unexpected type %T", ErrCorruptData, child)
}

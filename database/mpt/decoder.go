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

// DecodeNode maps the given RLP encoding to its in-memory node
// representation. The decoding is zero-copy: paths, values, and child
// references of the resulting node are views into the input buffer, which
// must not be modified while the node is in use.
//
// The node type is derived from the shape of the encoding: the empty string
// decodes to an empty node, a two-element list to a leaf or extension node
// depending on the flag in its path, and a seventeen-element list to a branch
// node. Everything else is reported as corrupt, wrapped in ErrCorruptData.
func DecodeNode(data []byte) (Node, error) {
	if rlp.IsEmptyString(data) {
		return EmptyNode{}, nil
	}
	payload, rest, err := rlp.SplitList(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after node", ErrCorruptData, len(rest))
	}
	count, err := rlp.CountItems(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	switch count {
	case 2:
		return decodeLeafOrExtension(payload)
	case 17:
		return decodeBranch(payload)
	default:
		return nil, fmt.Errorf("%w: invalid number of list elements: %d", ErrCorruptData, count)
	}
}

func decodeLeafOrExtension(payload []byte) (Node, error) {
	compact, payload, err := rlp.SplitString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	path, isLeaf, err := PathFromEncoded(compact)
	if err != nil {
		return nil, err
	}
	if isLeaf {
		value, _, err := rlp.SplitString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		return &LeafNode{Path: path, Value: value}, nil
	}
	child, _, err := decodeReference(payload)
	if err != nil {
		return nil, err
	}
	if child.IsEmpty() {
		return nil, fmt.Errorf("%w: extension node without child", ErrCorruptData)
	}
	if path.IsEmpty() {
		return nil, fmt.Errorf("%w: extension node with empty path", ErrCorruptData)
	}
	return &ExtensionNode{Path: path, Child: child}, nil
}

func decodeBranch(payload []byte) (Node, error) {
	res := &BranchNode{}
	var err error
	for i := 0; i < 16; i++ {
		if res.Children[i], payload, err = decodeReference(payload); err != nil {
			return nil, err
		}
	}
	value, _, err := rlp.SplitString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if len(value) > 0 {
		res.Value = value
	}
	return res, nil
}

// decodeReference decodes one child reference from the given list payload. A
// child is either the empty string for an absent child, a 32-byte string
// holding the hash of the child's encoding, or the raw encoding of a child
// small enough to be embedded.
func decodeReference(payload []byte) (Reference, []byte, error) {
	if rlp.IsList(payload) {
		raw, rest, err := rlp.SplitRaw(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		if len(raw) > 31 {
			return nil, nil, fmt.Errorf("%w: embedded node of %d bytes exceeds embedding limit", ErrCorruptData, len(raw))
		}
		return Reference(raw), rest, nil
	}
	content, rest, err := rlp.SplitString(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	switch len(content) {
	case 0:
		return nil, rest, nil
	case common.HashSize:
		return Reference(content), rest, nil
	default:
		return nil, nil, fmt.Errorf("%w: invalid reference length %d", ErrCorruptData, len(content))
	}
}

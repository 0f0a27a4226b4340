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
	"strings"
)

// NibbleSlice is a view on a sequence of nibbles backed by a byte buffer. The
// view never copies the underlying data: deriving sub-slices through Mid or
// Prefix merely adjusts the covered range. Key bytes are interpreted
// big-endian, the high nibble of each byte preceding the low nibble.
type NibbleSlice struct {
	data   []byte
	offset int // < nibbles skipped at the front of data
	length int // < number of nibbles covered by the view
}

// NewNibbleSlice creates a view covering all nibbles of the given key.
func NewNibbleSlice(key []byte) NibbleSlice {
	return NibbleSlice{data: key, length: len(key) * 2}
}

// pathOfNibbles packs the given nibbles into a freshly allocated view. It is
// the only constructor that copies; it backs the structural re-writes of the
// trie where paths of neighboring nodes get merged or re-prefixed.
func pathOfNibbles(nibbles []Nibble) NibbleSlice {
	data := make([]byte, (len(nibbles)+1)/2)
	for i, n := range nibbles {
		if i%2 == 0 {
			data[i/2] = byte(n) << 4
		} else {
			data[i/2] |= byte(n)
		}
	}
	return NibbleSlice{data: data, length: len(nibbles)}
}

// joinPaths concatenates the given views into a new, packed view.
func joinPaths(paths ...NibbleSlice) NibbleSlice {
	total := 0
	for _, p := range paths {
		total += p.length
	}
	nibbles := make([]Nibble, 0, total)
	for _, p := range paths {
		for i := 0; i < p.length; i++ {
			nibbles = append(nibbles, p.At(i))
		}
	}
	return pathOfNibbles(nibbles)
}

// prependNibble produces a new path starting with the given nibble, followed
// by the nibbles of the given view.
func prependNibble(n Nibble, p NibbleSlice) NibbleSlice {
	return joinPaths(pathOfNibbles([]Nibble{n}), p)
}

// Length returns the number of nibbles covered by this view.
func (p NibbleSlice) Length() int {
	return p.length
}

// IsEmpty determines whether this view covers no nibbles at all.
func (p NibbleSlice) IsEmpty() bool {
	return p.length == 0
}

// At returns the nibble at the given position. The position must be in the
// range [0, Length()).
func (p NibbleSlice) At(pos int) Nibble {
	i := p.offset + pos
	if i%2 == 0 {
		return Nibble(p.data[i/2] >> 4)
	}
	return Nibble(p.data[i/2] & 0xf)
}

// Mid returns a sub-view covering everything from the given position to the
// end of this view.
func (p NibbleSlice) Mid(pos int) NibbleSlice {
	return NibbleSlice{data: p.data, offset: p.offset + pos, length: p.length - pos}
}

// Prefix returns a sub-view covering the first length nibbles of this view.
func (p NibbleSlice) Prefix(length int) NibbleSlice {
	return NibbleSlice{data: p.data, offset: p.offset, length: length}
}

// CommonPrefixLength computes the number of leading nibbles this view has in
// common with the given view.
func (p NibbleSlice) CommonPrefixLength(other NibbleSlice) int {
	limit := p.length
	if other.length < limit {
		limit = other.length
	}
	for i := 0; i < limit; i++ {
		if p.At(i) != other.At(i) {
			return i
		}
	}
	return limit
}

// HasPrefix determines whether the given view is a prefix of this view.
func (p NibbleSlice) HasPrefix(prefix NibbleSlice) bool {
	return p.length >= prefix.length && p.CommonPrefixLength(prefix) == prefix.length
}

// Equal determines whether the two views cover the same nibble sequence,
// irrespective of the backing buffers.
func (p NibbleSlice) Equal(other NibbleSlice) bool {
	return p.length == other.length && p.CommonPrefixLength(other) == p.length
}

// Nibbles materializes the covered nibbles in a freshly allocated slice.
func (p NibbleSlice) Nibbles() []Nibble {
	res := make([]Nibble, p.length)
	for i := range res {
		res[i] = p.At(i)
	}
	return res
}

func (p NibbleSlice) String() string {
	if p.length == 0 {
		return "-empty-"
	}
	builder := strings.Builder{}
	for i := 0; i < p.length; i++ {
		builder.WriteRune(p.At(i).Rune())
	}
	return builder.String()
}

// ----------------------------------------------------------------------------
//                          Hex-Prefix Encoding
// ----------------------------------------------------------------------------

// The partial path of a leaf or extension node is stored in the hex-prefix
// format: the high nibble of the first byte holds two flags, bit 5 marking
// leaf nodes and bit 4 an odd number of path nibbles. For odd paths the first
// nibble occupies the low half of the flag byte, for even paths the low half
// is zero. The remaining nibbles follow pairwise packed.

// Encoded returns the hex-prefix encoding of this view, tagged as a leaf or
// extension path as requested.
func (p NibbleSlice) Encoded(isLeaf bool) []byte {
	res := make([]byte, 0, p.length/2+1)
	flags := byte(0)
	if isLeaf {
		flags |= 0x20
	}
	i := 0
	if p.length%2 == 1 {
		flags |= 0x10 | byte(p.At(0))
		i = 1
	}
	res = append(res, flags)
	for ; i < p.length; i += 2 {
		res = append(res, byte(p.At(i))<<4|byte(p.At(i+1)))
	}
	return res
}

// PathFromEncoded interprets the given hex-prefix encoded path, returning a
// view on the path nibbles and the leaf flag. The view aliases the input
// buffer. Inputs with invalid flag bits are rejected.
func PathFromEncoded(compact []byte) (path NibbleSlice, isLeaf bool, err error) {
	if len(compact) == 0 {
		return NibbleSlice{}, false, fmt.Errorf("%w: empty path encoding", ErrCorruptData)
	}
	if compact[0]&0xc0 != 0 {
		return NibbleSlice{}, false, fmt.Errorf("%w: invalid path flags in 0x%02x", ErrCorruptData, compact[0])
	}
	isLeaf = compact[0]&0x20 != 0
	length := (len(compact) - 1) * 2
	offset := 2
	if compact[0]&0x10 != 0 {
		length++
		offset = 1
	}
	return NibbleSlice{data: compact, offset: offset, length: length}, isLeaf, nil
}

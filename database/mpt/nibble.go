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

// Nibble is a 4-bit signed integer in the range 0-F. It is the unit in which
// keys are consumed during trie navigation, each branch node dispatching on
// one nibble.
type Nibble byte

// Rune converts a Nibble in its hexadecimal rune: 0-9a-f. Any nibble outside
// the valid range is mapped to '?'.
func (n Nibble) Rune() rune {
	if n < 10 {
		return rune('0' + n)
	} else if n < 16 {
		return rune('a' + n - 10)
	} else {
		return '?'
	}
}

func (n Nibble) String() string {
	return string(n.Rune())
}

// Copyright (c) 2025 Patricia DB Authors
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at patricia-db.org/bsl11.
//
// Change Date: 2029-1-1
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package rlp

import (
	"fmt"
)

// Recursive-Length Prefix (RLP) serialization is based on a recursive
// structure definition of an `item`. An item is defined as
//   - a string of bytes
//   - a list of items
//
// Note the recursive definition in the second line. This recursive step
// allows arbitrarily nested structures to be encoded. This package provides
// RLP encoding support for items, a generic decoder, and zero-copy raw
// splitting primitives for callers that need access to the raw encoding of
// nested items without re-encoding them.

// Item is an interface for everything that can be RLP encoded by this package.
type Item interface {
	// write writes the RLP encoding of this item to the given writer.
	write(writer) writer

	// getEncodedLength computes the encoded length of this item in bytes.
	getEncodedLength() int
}

// Encode is a convenience function for serializing an item structure.
func Encode(item Item) []byte {
	return EncodeInto(make([]byte, 0, 1024), item)
}

// EncodeInto appends the encoding of the given item to dst and returns the
// resulting slice.
func EncodeInto(dst []byte, item Item) []byte {
	writer := writer(dst)
	return item.write(writer)
}

// Decode parses the given data as a single RLP item. Trailing data after the
// first item is rejected. Decoded strings are views into the input buffer.
func Decode(data []byte) (Item, error) {
	item, consumed, err := decode(data)
	if err != nil {
		return nil, err
	}
	if consumed != uint64(len(data)) {
		return nil, fmt.Errorf("trailing data after RLP item: %d extra bytes", uint64(len(data))-consumed)
	}
	return item, nil
}

// decode decodes the first item of an RLP stream, returning the item and the
// number of consumed bytes. It may recursively call itself to decode nested
// items.
func decode(data []byte) (Item, uint64, error) {
	offset, length, isList, err := payloadBounds(data)
	if err != nil {
		return nil, 0, err
	}
	if !isList {
		return String{Str: data[offset : offset+length]}, offset + length, nil
	}
	items, err := decodeList(data[offset : offset+length])
	return List{Items: items}, offset + length, err
}

// decodeList decodes a sequence of items from the given RLP list payload,
// the length prefix of the list itself being already cut off.
func decodeList(data []byte) ([]Item, error) {
	items := make([]Item, 0, 17)
	buf := data
	for len(buf) > 0 {
		item, consumed, err := decode(buf)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		buf = buf[consumed:]
	}
	return items, nil
}

// writer is a specialized writer for this package writing encoded RLP
// content in a pre-allocated buffer.
type writer []byte

func (w writer) Write(data []byte) writer {
	return append(w, data...)
}

func (w writer) Put(c byte) writer {
	return append(w, c)
}

// ----------------------------------------------------------------------------
//                           Core Item Types
// ----------------------------------------------------------------------------

// String is the atomic ground type of an RLP input structure representing a
// (potentially empty) string of bytes.
type String struct {
	Str []byte
}

func (s String) write(writer writer) writer {
	l := len(s.Str)
	// Single-element strings are encoded as a single byte if the
	// value is small enough.
	if l == 1 && s.Str[0] < 0x80 {
		return writer.Write(s.Str)
	}
	// For the rest, the length is encoded, followed by the string itself.
	writer = encodeLength(l, 0x80, writer)
	return writer.Write(s.Str)
}

func (s String) getEncodedLength() int {
	l := len(s.Str)
	if l == 1 && s.Str[0] < 0x80 {
		return 1
	}
	return l + getEncodedLengthLength(l)
}

// List composes a list of items into a new item to be serialized.
type List struct {
	Items []Item
}

func (l List) write(writer writer) writer {
	length := 0
	for i := 0; i < len(l.Items); i++ {
		length += l.Items[i].getEncodedLength()
	}
	writer = encodeLength(length, 0xc0, writer)
	for i := 0; i < len(l.Items); i++ {
		writer = l.Items[i].write(writer)
	}
	return writer
}

func (l List) getEncodedLength() int {
	sum := 0
	for _, item := range l.Items {
		sum += item.getEncodedLength()
	}
	return sum + getEncodedLengthLength(sum)
}

// Encoded allows for embedding an already RLP encoded data fragment in a new
// RLP encoding.
type Encoded struct {
	Data []byte
}

func (e Encoded) write(writer writer) writer {
	return writer.Write(e.Data)
}

func (e Encoded) getEncodedLength() int {
	return len(e.Data)
}

// encodeLength is a utility function used by String and List structures to
// encode the length of the string or list in the output stream.
func encodeLength(length int, offset byte, writer writer) writer {
	if length < 56 {
		return writer.Put(offset + byte(length))
	}
	numBytesForLength := getNumBytes(uint64(length))
	writer = writer.Put(offset + 55 + numBytesForLength)
	for i := byte(0); i < numBytesForLength; i++ {
		writer = writer.Put(byte(length >> (8 * (numBytesForLength - i - 1))))
	}
	return writer
}

// getNumBytes computes the minimum number of bytes required to represent
// the given value in big-endian encoding.
func getNumBytes(value uint64) byte {
	if value == 0 {
		return 0
	}
	for res := byte(1); ; res++ {
		if value >>= 8; value == 0 {
			return res
		}
	}
}

func getEncodedLengthLength(length int) int {
	if length < 56 {
		return 1
	}
	return int(getNumBytes(uint64(length))) + 1
}

// ----------------------------------------------------------------------------
//                           Raw Splitting
// ----------------------------------------------------------------------------

// The functions below grant access to the structure of an RLP stream without
// materializing items. All returned slices are views into the input buffer.

// IsList determines whether the first item of the given RLP stream is a list.
func IsList(data []byte) bool {
	return len(data) > 0 && data[0] >= 0xc0
}

// IsEmptyString determines whether the given RLP stream is the canonical
// encoding of the empty string.
func IsEmptyString(data []byte) bool {
	return len(data) == 1 && data[0] == 0x80
}

// SplitRaw splits the given RLP stream into the complete raw encoding of its
// first item, prefix included, and the remainder of the stream.
func SplitRaw(data []byte) (item, rest []byte, err error) {
	offset, length, _, err := payloadBounds(data)
	if err != nil {
		return nil, nil, err
	}
	return data[:offset+length], data[offset+length:], nil
}

// SplitString splits the given RLP stream into the payload of its first item,
// which must be a string, and the remainder of the stream.
func SplitString(data []byte) (content, rest []byte, err error) {
	offset, length, isList, err := payloadBounds(data)
	if err != nil {
		return nil, nil, err
	}
	if isList {
		return nil, nil, fmt.Errorf("expected RLP string, got list")
	}
	return data[offset : offset+length], data[offset+length:], nil
}

// SplitList splits the given RLP stream into the payload of its first item,
// which must be a list, and the remainder of the stream. The payload is the
// concatenation of the raw encodings of the list elements.
func SplitList(data []byte) (content, rest []byte, err error) {
	offset, length, isList, err := payloadBounds(data)
	if err != nil {
		return nil, nil, err
	}
	if !isList {
		return nil, nil, fmt.Errorf("expected RLP list, got string")
	}
	return data[offset : offset+length], data[offset+length:], nil
}

// CountItems counts the number of items encoded in the given list payload.
func CountItems(payload []byte) (int, error) {
	count := 0
	for len(payload) > 0 {
		var err error
		if _, payload, err = SplitRaw(payload); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// payloadBounds locates the payload of the first item in the given RLP
// stream. It returns the offset of the payload within the stream, its length,
// and whether the item is a list. For a single-byte item the byte itself is
// the payload. All bounds are validated against the input length so that
// malformed input surfaces as an error rather than an out-of-range access.
func payloadBounds(data []byte) (offset, length uint64, isList bool, err error) {
	if len(data) == 0 {
		return 0, 0, false, fmt.Errorf("input RLP is empty")
	}
	size := uint64(len(data))
	switch b := data[0]; {
	case b < 0x80: // single byte item
		return 0, 1, false, nil
	case b < 0xb8: // short string
		offset, length = 1, uint64(b-0x80)
	case b < 0xc0: // long string
		lenOfLen := uint64(b - 0xb7)
		if size < 1+lenOfLen {
			return 0, 0, false, fmt.Errorf("expected %d length bytes, got: %d", lenOfLen, size-1)
		}
		length, err = readSize(data[1:], byte(lenOfLen))
		if err != nil {
			return 0, 0, false, err
		}
		offset = 1 + lenOfLen
	case b < 0xf8: // short list
		offset, length, isList = 1, uint64(b-0xc0), true
	default: // long list
		lenOfLen := uint64(b - 0xf7)
		if size < 1+lenOfLen {
			return 0, 0, false, fmt.Errorf("expected %d length bytes, got: %d", lenOfLen, size-1)
		}
		length, err = readSize(data[1:], byte(lenOfLen))
		if err != nil {
			return 0, 0, false, err
		}
		offset = 1 + lenOfLen
		isList = true
	}
	if length > size || offset > size-length {
		return 0, 0, false, fmt.Errorf("expected %d payload bytes, got: %d", length, size-offset)
	}
	return offset, length, isList, nil
}

func readSize(b []byte, slen byte) (uint64, error) {
	if int(slen) > len(b) {
		return 0, fmt.Errorf("expected %d bytes, got: %d", slen, len(b))
	}
	var s uint64
	for i := byte(0); i < slen; i++ {
		s = s<<8 | uint64(b[i])
	}
	return s, nil
}

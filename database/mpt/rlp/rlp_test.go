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
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestEncoding_EncodeStrings(t *testing.T) {
	tests := []struct {
		item String
		rlp  []byte
	}{
		{String{}, []byte{0x80}},
		{String{Str: []byte{}}, []byte{0x80}},
		{String{Str: []byte{0x01}}, []byte{0x01}},
		{String{Str: []byte{0x7f}}, []byte{0x7f}},
		{String{Str: []byte{0x80}}, []byte{0x81, 0x80}},
		{String{Str: []byte("dog")}, []byte{0x83, 'd', 'o', 'g'}},
		{
			String{Str: []byte(strings.Repeat("a", 55))},
			append([]byte{0xb7}, bytes.Repeat([]byte{'a'}, 55)...),
		},
		{
			String{Str: []byte(strings.Repeat("a", 56))},
			append([]byte{0xb8, 56}, bytes.Repeat([]byte{'a'}, 56)...),
		},
	}
	for _, test := range tests {
		if got, want := Encode(test.item), test.rlp; !bytes.Equal(got, want) {
			t.Errorf("invalid encoding of %v, got %x, wanted %x", test.item, got, want)
		}
		if got, want := test.item.getEncodedLength(), len(test.rlp); got != want {
			t.Errorf("invalid encoded length of %v, got %d, wanted %d", test.item, got, want)
		}
	}
}

func TestEncoding_EncodeLists(t *testing.T) {
	tests := []struct {
		item List
		rlp  []byte
	}{
		{List{}, []byte{0xc0}},
		{
			List{Items: []Item{String{Str: []byte{0x01}}, String{Str: []byte{0x02}}}},
			[]byte{0xc2, 0x01, 0x02},
		},
		{
			List{Items: []Item{String{Str: []byte("cat")}, String{Str: []byte("dog")}}},
			[]byte{0xc8, 0x83, 'c', 'a', 't', 0x83, 'd', 'o', 'g'},
		},
		{
			List{Items: []Item{List{}, List{Items: []Item{List{}}}}},
			[]byte{0xc3, 0xc0, 0xc1, 0xc0},
		},
	}
	for _, test := range tests {
		if got, want := Encode(test.item), test.rlp; !bytes.Equal(got, want) {
			t.Errorf("invalid encoding of %v, got %x, wanted %x", test.item, got, want)
		}
	}
}

func TestEncoding_EncodeLongList(t *testing.T) {
	// 14 four-byte encodings sum up to 56 payload bytes, forcing the
	// long-list header format.
	items := make([]Item, 14)
	for i := range items {
		items[i] = String{Str: []byte("abc")}
	}
	want := []byte{0xf8, 56}
	for range items {
		want = append(want, 0x83, 'a', 'b', 'c')
	}
	if got := Encode(List{Items: items}); !bytes.Equal(got, want) {
		t.Errorf("invalid encoding, got %x, wanted %x", got, want)
	}
}

func TestEncoding_EncodedEmbedsRawData(t *testing.T) {
	inner := Encode(List{Items: []Item{String{Str: []byte("cat")}}})
	item := List{Items: []Item{Encoded{Data: inner}, String{Str: []byte{0x01}}}}
	want := append([]byte{byte(0xc0 + len(inner) + 1)}, inner...)
	want = append(want, 0x01)
	if got := Encode(item); !bytes.Equal(got, want) {
		t.Errorf("invalid encoding, got %x, wanted %x", got, want)
	}
}

func TestDecode_RestoresEncodedItems(t *testing.T) {
	tests := []Item{
		String{Str: []byte{}},
		String{Str: []byte{0x01}},
		String{Str: []byte("dog")},
		String{Str: []byte(strings.Repeat("x", 100))},
		List{Items: []Item{}},
		List{Items: []Item{String{Str: []byte{0x01}}, String{Str: []byte{0x02}}}},
		List{Items: []Item{
			String{Str: []byte("cat")},
			List{Items: []Item{String{Str: []byte("dog")}}},
		}},
	}
	for _, test := range tests {
		encoded := Encode(test)
		restored, err := Decode(encoded)
		if err != nil {
			t.Fatalf("failed to decode %x: %v", encoded, err)
		}
		if got, want := Encode(restored), encoded; !bytes.Equal(got, want) {
			t.Errorf("decoding is not the inverse of encoding, got %x, wanted %x", got, want)
		}
	}
}

func TestDecode_ReportsMalformedInput(t *testing.T) {
	tests := [][]byte{
		{},                     // empty input
		{0x81},                 // truncated short string
		{0xb8},                 // missing length byte
		{0xb8, 0x05, 0x01},     // truncated long string
		{0xc8, 0x01},           // truncated list
		{0xf8, 0x02, 0x01},     // truncated long list
		{0xc2, 0x81},           // truncated nested string
		{0x01, 0x02},           // trailing data
		{0xbb, 0xff, 0xff, 0xff, 0xff}, // excessive length
	}
	for _, test := range tests {
		if _, err := Decode(test); err == nil {
			t.Errorf("expected decoding of %x to fail", test)
		}
	}
}

func TestSplit_StringsAndLists(t *testing.T) {
	data := Encode(List{Items: []Item{
		String{Str: []byte("cat")},
		List{Items: []Item{String{Str: []byte{0x01}}}},
		String{Str: []byte{}},
	}})

	payload, rest, err := SplitList(data)
	if err != nil {
		t.Fatalf("failed to split list: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected trailing data: %x", rest)
	}

	count, err := CountItems(payload)
	if err != nil {
		t.Fatalf("failed to count items: %v", err)
	}
	if count != 3 {
		t.Fatalf("invalid item count, got %d, wanted 3", count)
	}

	content, payload, err := SplitString(payload)
	if err != nil {
		t.Fatalf("failed to split string: %v", err)
	}
	if !bytes.Equal(content, []byte("cat")) {
		t.Errorf("invalid string content, got %x, wanted 'cat'", content)
	}

	raw, payload, err := SplitRaw(payload)
	if err != nil {
		t.Fatalf("failed to split raw item: %v", err)
	}
	if !IsList(raw) {
		t.Errorf("expected nested item %x to be a list", raw)
	}

	content, payload, err = SplitString(payload)
	if err != nil {
		t.Fatalf("failed to split string: %v", err)
	}
	if len(content) != 0 || len(payload) != 0 {
		t.Errorf("expected empty final string, got %x with rest %x", content, payload)
	}
}

func TestSplit_TypeMismatchIsReported(t *testing.T) {
	if _, _, err := SplitString([]byte{0xc0}); err == nil {
		t.Errorf("expected splitting a list as string to fail")
	}
	if _, _, err := SplitList([]byte{0x80}); err == nil {
		t.Errorf("expected splitting a string as list to fail")
	}
}

func TestIsEmptyString(t *testing.T) {
	if !IsEmptyString([]byte{0x80}) {
		t.Errorf("0x80 should be recognized as the empty string")
	}
	for _, data := range [][]byte{{}, {0x00}, {0xc0}, {0x80, 0x00}} {
		if IsEmptyString(data) {
			t.Errorf("%x should not be recognized as the empty string", data)
		}
	}
}

func TestSplit_SingleByteItems(t *testing.T) {
	// Single-byte items inside a list carry no length prefix.
	payload, _, err := SplitList([]byte{0xc2, 0x01, 0x02})
	if err != nil {
		t.Fatalf("failed to split list: %v", err)
	}
	for i, want := range []byte{0x01, 0x02} {
		var content []byte
		content, payload, err = SplitString(payload)
		if err != nil {
			t.Fatalf("failed to split item %d: %v", i, err)
		}
		if len(content) != 1 || content[0] != want {
			t.Errorf("invalid item %d, got %x, wanted %x", i, content, want)
		}
	}
}

func ExampleEncode() {
	fmt.Printf("%x\n", Encode(List{Items: []Item{
		String{Str: []byte("cat")},
		String{Str: []byte("dog")},
	}}))
	// Output: c88363617483646f67
}

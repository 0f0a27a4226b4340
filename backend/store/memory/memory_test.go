// Copyright (c) 2025 Patricia DB Authors
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at patricia-db.org/bsl11.
//
// Change Date: 2029-1-1
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/patricia-db/patricia/common"
	"github.com/patricia-db/patricia/database/mpt"
)

func TestStore_StoredEntriesCanBeRetrieved(t *testing.T) {
	store := NewStore()
	data := []byte("some node encoding")
	hash := common.Keccak256(data)
	if err := store.PutBatch([]mpt.Entry{{Hash: hash, Data: data}}); err != nil {
		t.Fatalf("failed to store entry: %v", err)
	}
	restored, err := store.Get(hash)
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if !bytes.Equal(restored, data) {
		t.Errorf("invalid data, got %x, wanted %x", restored, data)
	}
	if got, want := store.Size(), 1; got != want {
		t.Errorf("invalid size, got %d, wanted %d", got, want)
	}
}

func TestStore_MissingHashIsReported(t *testing.T) {
	store := NewStore()
	if _, err := store.Get(common.Keccak256([]byte("missing"))); !errors.Is(err, mpt.ErrNotFound) {
		t.Errorf("expected %v, got %v", mpt.ErrNotFound, err)
	}
}

func TestStore_RetrievedDataIsIsolated(t *testing.T) {
	store := NewStore()
	data := []byte("some node encoding")
	hash := common.Keccak256(data)
	if err := store.PutBatch([]mpt.Entry{{Hash: hash, Data: data}}); err != nil {
		t.Fatalf("failed to store entry: %v", err)
	}

	// Neither modifying the input nor the output may affect stored data.
	data[0] = 'x'
	first, err := store.Get(hash)
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	first[1] = 'y'
	second, err := store.Get(hash)
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if !bytes.Equal(second, []byte("some node encoding")) {
		t.Errorf("stored data was modified, got %x", second)
	}
}

func TestStore_IsSafeForConcurrentUse(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				data := []byte(fmt.Sprintf("node-%d-%d", i, j))
				hash := common.Keccak256(data)
				if err := store.PutBatch([]mpt.Entry{{Hash: hash, Data: data}}); err != nil {
					t.Errorf("failed to store entry: %v", err)
				}
				if _, err := store.Get(hash); err != nil {
					t.Errorf("failed to get entry: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestStore_SupportsTrieCommits(t *testing.T) {
	store := NewStore()
	trie := mpt.NewEmptyTrie(store)
	data := map[string]string{
		"doe":          "reindeer",
		"dog":          "puppy",
		"dogglesworth": "cat",
	}
	for key, value := range data {
		if err := trie.Set([]byte(key), []byte(value)); err != nil {
			t.Fatalf("failed to set %s: %v", key, err)
		}
	}
	root, err := trie.Commit()
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	reopened, err := mpt.NewTrie(store, root)
	if err != nil {
		t.Fatalf("failed to reopen trie: %v", err)
	}
	for key, want := range data {
		value, exists, err := reopened.Get([]byte(key))
		if err != nil || !exists {
			t.Fatalf("failed to get %s: %v", key, err)
		}
		if !bytes.Equal(value, []byte(want)) {
			t.Errorf("invalid value for %s, got %s, wanted %s", key, value, want)
		}
	}
}

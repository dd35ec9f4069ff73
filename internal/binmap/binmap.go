// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package binmap implements the sparse 64-bit-key -> 64-bit-value map that
// backs grid.Index's cell lookup. Grid construction inserts one entry per
// non-empty cell (packed cell key -> position in the dense BinInfo array);
// queries then look cells up by key.
//
// It is a vanilla open-addressing, linear-probing hash table: a 64-bit
// hash picks the initial slot, and collisions resolve by scanning forward.
// The table grows by doubling, since the grid builder does not know the
// final non-empty cell count until bucketing finishes.
package binmap

import farm "github.com/dgryski/go-farm"

// emptySentinel marks an unused slot. Keys are stored internally as key+1 so
// that a real key of 0 never collides with the sentinel.
const emptySentinel = 0

// minCapacity is the smallest table size Map ever allocates, already a
// power of two.
const minCapacity = 16

// maxLoadNum/maxLoadDen bound the load factor at 50%: the table doubles
// once occupancy would exceed half its capacity.
const (
	maxLoadNum = 1
	maxLoadDen = 2
)

// Map is a sparse map from packed cell key to a caller-defined 64-bit value
// (grid.Index uses it to store the position of a cell's BinInfo). The zero
// value is ready to use.
type Map struct {
	keys   []uint64 // key+1, or emptySentinel
	values []uint64
	count  int
}

// hash64 mixes a packed cell key into a well-distributed 64-bit value.
// Grid cell keys are small and highly clustered (adjacent cells differ by
// 1, width, or slabSize), so a plain multiplicative hash is not enough on
// its own; farm.Hash64WithSeed gives full avalanche.
func hash64(key uint64) uint64 {
	return farm.Hash64WithSeed(nil, key)
}

// Put inserts key -> value, replacing any existing value for key
// (last-write-wins).
func (m *Map) Put(key, value uint64) {
	if len(m.keys) == 0 {
		m.init(minCapacity)
	} else if (m.count+1)*maxLoadDen > len(m.keys)*maxLoadNum {
		m.grow()
	}
	m.insert(key, value)
}

// Get returns the value stored for key and true, or (0, false) on a miss.
func (m *Map) Get(key uint64) (uint64, bool) {
	if len(m.keys) == 0 {
		return 0, false
	}
	mask := uint64(len(m.keys) - 1)
	i := hash64(key) & mask
	wantKey := key + 1
	for {
		k := m.keys[i]
		if k == emptySentinel {
			return 0, false
		}
		if k == wantKey {
			return m.values[i], true
		}
		i = (i + 1) & mask
	}
}

// Len returns the number of distinct keys stored.
func (m *Map) Len() int { return m.count }

func (m *Map) init(capacity int) {
	m.keys = make([]uint64, capacity)
	m.values = make([]uint64, capacity)
}

func (m *Map) grow() {
	oldKeys, oldValues := m.keys, m.values
	m.init(len(oldKeys) * 2)
	m.count = 0
	for i, k := range oldKeys {
		if k != emptySentinel {
			m.insert(k-1, oldValues[i])
		}
	}
}

// insert places key->value into the table, which must have room.
func (m *Map) insert(key, value uint64) {
	mask := uint64(len(m.keys) - 1)
	i := hash64(key) & mask
	wantKey := key + 1
	for {
		k := m.keys[i]
		if k == emptySentinel {
			m.keys[i] = wantKey
			m.values[i] = value
			m.count++
			return
		}
		if k == wantKey {
			m.values[i] = value
			return
		}
		i = (i + 1) & mask
	}
}

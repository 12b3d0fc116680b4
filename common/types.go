// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package common carries the small set of value types shared across the
// sync protocol: a block/extrinsic content hash and a peer session id.
// Everything else (accounts, balances, state) belongs to Chain's
// internals and is out of scope here.
package common

import (
	"encoding/hex"
	"fmt"
)

// HashLength is the byte length of a Hash.
const HashLength = 32

// Hash is a content-addressed 32-byte identifier for a block, header or
// extrinsic.
type Hash [HashLength]byte

// BytesToHash sets the rightmost HashLength bytes of b into a Hash,
// truncating from the left if b is longer.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// MarshalText implements encoding.TextMarshaler so Hash round-trips
// through the JSON-based wire codec unchanged.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	s := string(text)
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hash %q: %w", text, err)
	}
	*h = BytesToHash(b)
	return nil
}

// PeerID identifies a connected remote node. Its concrete form (node
// key, multiaddr, session id, ...) is owned by the transport; the
// protocol only ever compares and maps on it.
type PeerID string

func (p PeerID) String() string { return string(p) }

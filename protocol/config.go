// Copyright 2017 The go-ethereum Authors
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

package protocol

import (
	"os"
	"time"

	"github.com/naoina/toml"
)

// Protocol tunables (spec §6 "Tunables").
const (
	CurrentVersion       = uint32(1)
	MaxBlockDataResponse = 128
	DefaultRequestTimeout = 40 * time.Second

	// headerCacheSize bounds BlockServer's resolved-header LRU.
	headerCacheSize = 4096

	// maxKnownExtrinsics/maxKnownBlocks bound each peer's gossip dedup
	// sets, resolving the Design Notes' "per-peer unbounded sets" open
	// question the way the teacher's own eth/peer.go does: an arbitrary
	// existing entry is evicted before insert, so the entry just
	// inserted is never the one evicted (see peer.go markBlock and
	// markExtrinsic).
	maxKnownExtrinsics = 32768
	maxKnownBlocks      = 1024
)

// Config holds the protocol's runtime tunables, toml-tagged the way
// the teacher's eth.Config is (eth/config.go).
type Config struct {
	ProtocolVersion      uint32        `toml:",omitempty"`
	RequestTimeout       time.Duration `toml:",omitempty"`
	MaxBlockDataResponse int           `toml:",omitempty"`
}

// DefaultConfig mirrors spec §6's tunables.
var DefaultConfig = Config{
	ProtocolVersion:      CurrentVersion,
	RequestTimeout:       DefaultRequestTimeout,
	MaxBlockDataResponse: MaxBlockDataResponse,
}

// LoadConfig reads a TOML file into a copy of DefaultConfig, leaving
// unspecified fields at their default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

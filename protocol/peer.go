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

package protocol

import (
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set"

	"github.com/hashkey-chain/chainsync/common"
)

// Peer is the core's view of one handshaken remote: its advertised
// head, any outstanding BlockRequest, and its gossip dedup sets.
type Peer struct {
	ID      common.PeerID
	Version uint32
	Roles   uint32

	BestHash   common.Hash
	BestNumber uint64

	// Request is the single in-flight BlockRequest this peer owes a
	// response for, or nil. RequestSentAt is when it was stamped and
	// sent; Tick uses it to detect timeout (spec §4.D scenario 6).
	Request      *BlockRequest
	RequestSentAt time.Time

	nextRequestID uint64

	knownBlocks     mapset.Set
	knownExtrinsics mapset.Set
}

func newPeer(id common.PeerID, version, roles uint32) *Peer {
	return &Peer{
		ID:              id,
		Version:         version,
		Roles:           roles,
		knownBlocks:     mapset.NewSet(),
		knownExtrinsics: mapset.NewSet(),
	}
}

// markBlock records hash as known to this peer, first evicting an
// arbitrary existing entry (Set.Pop) if the set is already at capacity. Eviction never
// touches the entry just inserted (invariant 5), since Pop runs
// before Add.
func (p *Peer) markBlock(hash common.Hash) {
	for p.knownBlocks.Cardinality() >= maxKnownBlocks {
		p.knownBlocks.Pop()
	}
	p.knownBlocks.Add(hash)
}

func (p *Peer) knowsBlock(hash common.Hash) bool {
	return p.knownBlocks.Contains(hash)
}

// markExtrinsic records hash as known to this peer under the same
// bounded-eviction discipline as markBlock (invariant 6).
func (p *Peer) markExtrinsic(hash common.Hash) {
	for p.knownExtrinsics.Cardinality() >= maxKnownExtrinsics {
		p.knownExtrinsics.Pop()
	}
	p.knownExtrinsics.Add(hash)
}

func (p *Peer) knowsExtrinsic(hash common.Hash) bool {
	return p.knownExtrinsics.Contains(hash)
}

// nextID returns a monotonically increasing request id, wrapping at
// the uint64 boundary (invariant 2 — ids are never reused while a
// request is outstanding, but wraparound itself is not a correctness
// requirement given the address space).
func (p *Peer) nextID() uint64 {
	id := p.nextRequestID
	p.nextRequestID++
	return id
}

// PeerTable is the single-lock, multi-reader/single-writer registry of
// handshaken peers (spec §4.A). All mutation of a Peer's fields must
// go through Mutate/ForEachMut so it is serialized with table
// membership changes — the same lock guards both, matching the
// teacher's peerSet (eth/peer.go).
type PeerTable struct {
	mu    sync.RWMutex
	peers map[common.PeerID]*Peer
}

// NewPeerTable builds an empty table.
func NewPeerTable() *PeerTable {
	return &PeerTable{peers: make(map[common.PeerID]*Peer)}
}

// Insert adds a newly handshaken peer. Returns false if id is already
// present (caller error — handshake.go checks Has first).
func (t *PeerTable) Insert(id common.PeerID, version, roles uint32) (*Peer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.peers[id]; ok {
		return nil, false
	}
	p := newPeer(id, version, roles)
	t.peers[id] = p
	return p, true
}

// Remove drops a peer, returning whether it was present.
func (t *PeerTable) Remove(id common.PeerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.peers[id]; !ok {
		return false
	}
	delete(t.peers, id)
	return true
}

// Has reports table membership.
func (t *PeerTable) Has(id common.PeerID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.peers[id]
	return ok
}

// Len returns the number of handshaken peers.
func (t *PeerTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.peers)
}

// View runs fn with a read lock held, for callers that only read one
// peer's fields.
func (t *PeerTable) View(id common.PeerID, fn func(*Peer)) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.peers[id]
	if !ok {
		return false
	}
	fn(p)
	return true
}

// Mutate runs fn with a write lock held, for callers that change a
// peer's fields (known-sets, outstanding request, best hash/number).
func (t *PeerTable) Mutate(id common.PeerID, fn func(*Peer)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.peers[id]
	if !ok {
		return false
	}
	fn(p)
	return true
}

// ForEachMut runs fn once per peer under a single write lock — used
// by broadcast paths (PropagateExtrinsics, OnBlockImported) that mark
// every peer's dedup set in one pass rather than re-acquiring the lock
// per peer.
func (t *PeerTable) ForEachMut(fn func(*Peer)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.peers {
		fn(p)
	}
}

// Snapshot returns the current peer ids, safe to range over without
// holding the table lock.
func (t *PeerTable) Snapshot() []common.PeerID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]common.PeerID, 0, len(t.peers))
	for id := range t.peers {
		ids = append(ids, id)
	}
	return ids
}

// Clear drops every tracked peer, for abort()-style recovery (spec
// §4.H).
func (t *PeerTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers = make(map[common.PeerID]*Peer)
}

// HandshakingTable tracks peers that have connected but not yet
// completed Status exchange, keyed by peer id and holding the time the
// session began (for Tick's handshake timeout in protocol.go). A separate lock from PeerTable,
// per the required lock order Specialization → Sync → Consensus →
// PeerTable → HandshakingTable (spec §8).
type HandshakingTable struct {
	mu      sync.RWMutex
	started map[common.PeerID]time.Time
}

// NewHandshakingTable builds an empty table.
func NewHandshakingTable() *HandshakingTable {
	return &HandshakingTable{started: make(map[common.PeerID]time.Time)}
}

// Insert records a new in-progress handshake, returning false if one
// is already tracked for id.
func (t *HandshakingTable) Insert(id common.PeerID, at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.started[id]; ok {
		return false
	}
	t.started[id] = at
	return true
}

// Remove drops a tracked handshake, returning whether it was present.
func (t *HandshakingTable) Remove(id common.PeerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.started[id]; !ok {
		return false
	}
	delete(t.started, id)
	return true
}

// Has reports whether id has an in-progress handshake.
func (t *HandshakingTable) Has(id common.PeerID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.started[id]
	return ok
}

// Len returns the number of in-progress handshakes.
func (t *HandshakingTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.started)
}

// Snapshot returns the current handshaking ids together with the time
// each session began, safe to range over without holding the table
// lock. Used by Tick to find sessions that never sent Status (spec
// §4.H).
func (t *HandshakingTable) Snapshot() map[common.PeerID]time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[common.PeerID]time.Time, len(t.started))
	for id, at := range t.started {
		out[id] = at
	}
	return out
}

// Clear drops every tracked handshake, for abort()-style recovery
// (spec §4.H).
func (t *HandshakingTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = make(map[common.PeerID]time.Time)
}

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

	"github.com/hashkey-chain/chainsync/common"
)

// fakeChain is an in-memory Chain backed by a linear header list
// indexed by number, with hash lookup by scan — enough depth for
// tests, not a real chain implementation.
type fakeChain struct {
	genesis common.Hash
	headers []*Header // index == Number
	bodies  map[common.Hash]*Body
	justs   map[common.Hash]*Justification
}

func newFakeChain(length int) *fakeChain {
	c := &fakeChain{
		bodies: make(map[common.Hash]*Body),
		justs:  make(map[common.Hash]*Justification),
	}
	var parent common.Hash
	for i := 0; i < length; i++ {
		h := common.BytesToHash([]byte{byte(i + 1)})
		c.headers = append(c.headers, &Header{
			Hash:       h,
			ParentHash: parent,
			Number:     uint64(i),
		})
		parent = h
	}
	if length > 0 {
		c.genesis = c.headers[0].Hash
	}
	return c
}

func (c *fakeChain) Info() (ChainInfo, error) {
	best := c.headers[len(c.headers)-1]
	return ChainInfo{GenesisHash: c.genesis, BestHash: best.Hash, BestNumber: best.Number}, nil
}

func (c *fakeChain) Header(id BlockID) *Header {
	if id.IsHash {
		for _, h := range c.headers {
			if h.Hash == id.Hash {
				return h
			}
		}
		return nil
	}
	if int(id.Number) >= len(c.headers) {
		return nil
	}
	return c.headers[id.Number]
}

func (c *fakeChain) Body(id BlockID) *Body                 { return c.bodies[c.Header(id).Hash] }
func (c *fakeChain) Justification(id BlockID) *Justification { return c.justs[c.Header(id).Hash] }

// fakeIO records every call made through SyncIO for assertion.
type fakeIO struct {
	mu          sync.Mutex
	sent        map[common.PeerID][][]byte
	disabled    map[common.PeerID]bool
	disconnected map[common.PeerID]bool
	expired     map[common.PeerID]bool
}

func newFakeIO() *fakeIO {
	return &fakeIO{
		sent:         make(map[common.PeerID][][]byte),
		disabled:     make(map[common.PeerID]bool),
		disconnected: make(map[common.PeerID]bool),
		expired:      make(map[common.PeerID]bool),
	}
}

func (f *fakeIO) Send(peer common.PeerID, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[peer] = append(f.sent[peer], data)
	return nil
}
func (f *fakeIO) DisconnectPeer(peer common.PeerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected[peer] = true
}
func (f *fakeIO) DisablePeer(peer common.PeerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled[peer] = true
}
func (f *fakeIO) PeerInfo(peer common.PeerID) string { return string(peer) }
func (f *fakeIO) IsExpired(peer common.PeerID) bool  { return f.expired[peer] }

func (f *fakeIO) messagesTo(peer common.PeerID) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[peer]
}

// fakeSync is a no-op ChainSync that records calls it receives.
type fakeSync struct {
	mu        sync.Mutex
	state     SyncState
	newPeers  []common.PeerID
	responses []*BlockResponse
	announces []*BlockAnnounce
	resets    int
}

func (s *fakeSync) State() SyncState { return s.state }
func (s *fakeSync) NewPeer(peer common.PeerID, bestHash common.Hash, bestNumber uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newPeers = append(s.newPeers, peer)
}
func (s *fakeSync) PeerDisconnected(peer common.PeerID) {}
func (s *fakeSync) OnBlockResponse(peer common.PeerID, req *BlockRequest, resp *BlockResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, resp)
}
func (s *fakeSync) OnBlockAnnounce(peer common.PeerID, ann *BlockAnnounce) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announces = append(s.announces, ann)
}
func (s *fakeSync) UpdateChainInfo(hash common.Hash, number uint64) {}
func (s *fakeSync) Reset()                                          { s.resets++ }

// fakeTxPool is a trivial in-memory pool: Import always succeeds and
// hashes via hashMessage, Transactions returns everything imported.
type fakeTxPool struct {
	mu  sync.Mutex
	txs []PooledTx
}

func (p *fakeTxPool) Import(tx []byte) (common.Hash, bool) {
	h := hashMessage(tx)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.txs {
		if t.Hash == h {
			return h, false
		}
	}
	p.txs = append(p.txs, PooledTx{Hash: h, Data: tx})
	return h, true
}

func (p *fakeTxPool) Transactions() []PooledTx {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PooledTx, len(p.txs))
	copy(out, p.txs)
	return out
}

func newTestDeps(chain *fakeChain) (*fakeIO, *fakeSync, Deps) {
	io := newFakeIO()
	sy := &fakeSync{}
	return io, sy, Deps{Chain: chain, IO: io, Sync: sy, Roles: 1}
}

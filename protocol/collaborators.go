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

import "github.com/hashkey-chain/chainsync/common"

// ChainInfo is a snapshot of the local chain's identity and head.
type ChainInfo struct {
	GenesisHash common.Hash
	BestHash    common.Hash
	BestNumber  uint64
}

// Chain is read-only access to headers, bodies and justifications by
// block identifier, plus a current chain-info snapshot. Chain is owned
// and kept up to date by code outside this package; the protocol never
// mutates it.
type Chain interface {
	Info() (ChainInfo, error)
	Header(id BlockID) *Header
	Body(id BlockID) *Body
	Justification(id BlockID) *Justification
}

// SyncIO is the raw transport: packet send, disconnect, disable, and
// session introspection.
type SyncIO interface {
	Send(peer common.PeerID, data []byte) error
	DisconnectPeer(peer common.PeerID)
	DisablePeer(peer common.PeerID)
	PeerInfo(peer common.PeerID) string
	IsExpired(peer common.PeerID) bool
}

// SyncState reports whether a block-download campaign is in progress.
type SyncState int

const (
	SyncStateIdle SyncState = iota
	SyncStateDownloading
)

func (s SyncState) String() string {
	if s == SyncStateIdle {
		return "idle"
	}
	return "downloading"
}

// ChainSync is the block-download state machine. The core forwards
// block responses and announcements to it; it never forwards to the
// core.
type ChainSync interface {
	State() SyncState
	NewPeer(peer common.PeerID, bestHash common.Hash, bestNumber uint64)
	PeerDisconnected(peer common.PeerID)
	OnBlockResponse(peer common.PeerID, req *BlockRequest, resp *BlockResponse)
	OnBlockAnnounce(peer common.PeerID, ann *BlockAnnounce)
	UpdateChainInfo(hash common.Hash, number uint64)
	Reset()
}

// HandlerContext is the capability surface handed to Consensus and
// Specialization: send/disable/disconnect, plus read-only chain access.
// *Context implements this.
type HandlerContext interface {
	Send(peer common.PeerID, data []byte)
	DisablePeer(peer common.PeerID)
	DisconnectPeer(peer common.PeerID)
	Client() Chain
}

// Consensus is the BFT-message plumbing. Exclusive access: the core
// never interleaves its own locking with Consensus's internal state.
type Consensus interface {
	NewPeer(peer common.PeerID, roles uint32)
	PeerDisconnected(peer common.PeerID)
	OnMessage(ctx HandlerContext, peer common.PeerID, data []byte, contentHash common.Hash)
	CollectGarbage()
	GCState(hash common.Hash, number uint64)
	Restart()
}

// Specialization is the application-specific opaque message channel.
type Specialization interface {
	Status() []byte
	OnMessage(ctx HandlerContext, peer common.PeerID, data []byte)
}

// PooledTx is one propagatable transaction as enumerated by TransactionPool.
type PooledTx struct {
	Hash common.Hash
	Data []byte
}

// TransactionPool imports raw extrinsics and enumerates currently
// propagatable ones. Concurrent by its own contract.
type TransactionPool interface {
	Import(tx []byte) (common.Hash, bool)
	Transactions() []PooledTx
}

// TransactionStat is the reserved per-transaction propagation record;
// see spec §3 — the core returns an empty map today.
type TransactionStat struct {
	FirstSeenBlock uint64
	Propagations   map[common.PeerID]uint64
}

// ProtocolStatus is a sync status snapshot plus peer counters.
type ProtocolStatus struct {
	SyncState        SyncState
	TotalPeers       int
	PeersWithRequest int
}

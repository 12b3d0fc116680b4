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
	"golang.org/x/crypto/blake2b"

	"github.com/hashkey-chain/chainsync/common"
)

// hashMessage computes the content hash used to dedup BFT messages,
// mirroring spec §4.D's "hash_message" helper.
func hashMessage(data []byte) common.Hash {
	sum := blake2b.Sum256(data)
	return common.BytesToHash(sum[:])
}

// onExtrinsics handles an inbound Extrinsics batch: while a download
// campaign is in progress, the pool is not a reliable source of truth
// for what's already known, so imports are skipped entirely (spec
// §4.D: gossip is gated on SyncStateIdle).
func (pr *Protocol) onExtrinsics(ctx *Context, peer common.PeerID, batch *Extrinsics) {
	if pr.sync.State() != SyncStateIdle {
		return
	}
	if pr.txpool == nil {
		return
	}
	for _, raw := range batch.Items {
		hash, accepted := pr.txpool.Import(raw)
		if !accepted {
			continue
		}
		pr.peers.Mutate(peer, func(p *Peer) { p.markExtrinsic(hash) })
	}
}

// PropagateExtrinsics broadcasts every currently propagatable
// transaction to every peer that hasn't already seen it, gated on
// SyncStateIdle for the same reason as onExtrinsics. Idempotent: a
// peer that already knows a hash is skipped, so repeated calls with
// an unchanged pool send nothing further.
func (pr *Protocol) PropagateExtrinsics(ctx *Context) {
	if pr.sync.State() != SyncStateIdle || pr.txpool == nil {
		return
	}
	txs := pr.txpool.Transactions()
	if len(txs) == 0 {
		return
	}
	pr.peers.ForEachMut(func(p *Peer) {
		var fresh [][]byte
		for _, tx := range txs {
			if p.knowsExtrinsic(tx.Hash) {
				continue
			}
			p.markExtrinsic(tx.Hash)
			fresh = append(fresh, tx.Data)
		}
		if len(fresh) > 0 {
			ctx.SendMessage(p.ID, KindExtrinsics, &Extrinsics{Items: fresh})
		}
	})
}

// onBlockAnnounce records the announced hash as known to the sender
// and forwards it to ChainSync (spec §4.D). ChainSync, not this
// package, decides whether to request the block.
func (pr *Protocol) onBlockAnnounce(peer common.PeerID, ann *BlockAnnounce) {
	pr.peers.Mutate(peer, func(p *Peer) { p.markBlock(ann.Hash) })
	pr.sync.OnBlockAnnounce(peer, ann)
}

// OnBlockImported announces a newly imported local block to every
// peer that hasn't already seen it, then lets Consensus drop any
// now-superseded garbage state. Called by code outside this package
// whenever Chain extends its best block.
func (pr *Protocol) OnBlockImported(hash common.Hash, number uint64, header *Header) {
	ctx := NewContext(pr.io, pr.chain)
	pr.peers.ForEachMut(func(p *Peer) {
		if p.knowsBlock(hash) {
			return
		}
		p.markBlock(hash)
		ctx.SendMessage(p.ID, KindBlockAnnounce, &BlockAnnounce{Hash: hash, Header: header})
	})
	ctx.Flush()

	if pr.consensus != nil {
		pr.consensus.GCState(hash, number)
	}
}

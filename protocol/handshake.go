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
	"time"

	"github.com/hashkey-chain/chainsync/common"
)

// onPeerConnected records peer as handshaking and buffers an outbound
// Status so the remote knows our identity too (spec §4.F scenario 1).
func (pr *Protocol) onPeerConnected(ctx *Context, peer common.PeerID, now time.Time) {
	if !pr.handshaking.Insert(peer, now) {
		pr.log.Warn("duplicate connect notification", "peer", peer)
		return
	}
	info, err := pr.chain.Info()
	if err != nil {
		pr.log.Error("chain info unavailable, disabling new peer", "peer", peer, "err", err)
		ctx.DisablePeer(peer)
		return
	}
	status := Status{
		Version:     pr.cfg.ProtocolVersion,
		GenesisHash: info.GenesisHash,
		Roles:       pr.roles,
		BestNumber:  info.BestNumber,
		BestHash:    info.BestHash,
	}
	if pr.special != nil {
		status.Specialization = pr.special.Status()
	}
	ctx.SendMessage(peer, KindStatus, &status)
}

// onStatus processes an inbound Status against peer's handshake state
// (spec §4.F). Exactly one of: silent drop (expired session),
// trace-drop (duplicate on an already-active peer), disable
// (genesis/version mismatch), or promotion to the active PeerTable.
func (pr *Protocol) onStatus(ctx *Context, peer common.PeerID, status *Status) {
	if pr.io.IsExpired(peer) {
		pr.log.Trace("status from expired session, dropping", "peer", peer)
		return
	}
	if pr.peers.Has(peer) {
		pr.log.Trace("duplicate status on active peer, dropping", "peer", peer)
		return
	}
	if !pr.handshaking.Has(peer) {
		pr.log.Trace("status from unknown session, dropping", "peer", peer)
		return
	}

	info, err := pr.chain.Info()
	if err != nil {
		pr.log.Error("chain info unavailable, disabling peer", "peer", peer, "err", err)
		pr.handshaking.Remove(peer)
		ctx.DisablePeer(peer)
		return
	}
	if status.GenesisHash != info.GenesisHash {
		pr.log.Debug("genesis mismatch, disabling peer", "peer", peer, "remote", status.GenesisHash, "local", info.GenesisHash)
		pr.handshaking.Remove(peer)
		ctx.DisablePeer(peer)
		return
	}
	if status.Version != pr.cfg.ProtocolVersion {
		pr.log.Debug("version mismatch, disabling peer", "peer", peer, "remote", status.Version, "local", pr.cfg.ProtocolVersion)
		pr.handshaking.Remove(peer)
		ctx.DisablePeer(peer)
		return
	}

	pr.handshaking.Remove(peer)
	p, ok := pr.peers.Insert(peer, status.Version, status.Roles)
	if !ok {
		pr.log.Warn("peer appeared mid-handshake, disabling", "peer", peer)
		ctx.DisablePeer(peer)
		return
	}
	p.BestHash = status.BestHash
	p.BestNumber = status.BestNumber

	pr.sync.NewPeer(peer, status.BestHash, status.BestNumber)
	if pr.consensus != nil {
		pr.consensus.NewPeer(peer, status.Roles)
	}
	pr.log.Debug("peer handshake complete", "peer", peer, "best", status.BestNumber)
}

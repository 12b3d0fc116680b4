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

// Package protocol implements the chain-sync wire protocol: peer
// handshake, block request/response routing, block-announcement and
// extrinsic gossip, and an opaque pass-through for consensus and
// application-specific messages. It owns no chain state of its own;
// Chain, ChainSync, Consensus, Specialization and TransactionPool are
// all supplied by the embedder.
package protocol

import (
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/hashkey-chain/chainsync/common"
	"github.com/hashkey-chain/chainsync/log"
)

// Protocol is the dispatch core described by spec §4.G: it owns the
// PeerTable and HandshakingTable, routes inbound frames to the right
// handler, and drives periodic maintenance (request and handshake
// timeouts, consensus garbage collection).
//
// Lock order, when more than one is needed in a single call, is fixed
// at Specialization → Sync → Consensus → PeerTable → HandshakingTable
// (spec §8); no method in this package acquires them out of order.
type Protocol struct {
	cfg   Config
	roles uint32

	chain     Chain
	io        SyncIO
	sync      ChainSync
	consensus Consensus
	special   Specialization
	txpool    TransactionPool

	peers       *PeerTable
	handshaking *HandshakingTable
	blocks      *BlockServer

	log log.Logger
}

// Deps bundles the collaborators NewProtocol wires together, so the
// constructor signature stays stable as the set of optional
// collaborators grows.
type Deps struct {
	Chain     Chain
	IO        SyncIO
	Sync      ChainSync
	Consensus Consensus   // optional
	Special   Specialization // optional
	TxPool    TransactionPool // optional
	Roles     uint32
}

// NewProtocol builds a Protocol ready to accept connections. It fails
// only if the supplied Chain cannot report its own identity, which
// every other operation depends on.
func NewProtocol(cfg Config, deps Deps) (*Protocol, error) {
	if _, err := deps.Chain.Info(); err != nil {
		return nil, errors.Wrap(err, "protocol: initial chain info")
	}
	pr := &Protocol{
		cfg:         cfg,
		roles:       deps.Roles,
		chain:       deps.Chain,
		io:          deps.IO,
		sync:        deps.Sync,
		consensus:   deps.Consensus,
		special:     deps.Special,
		txpool:      deps.TxPool,
		peers:       NewPeerTable(),
		handshaking: NewHandshakingTable(),
		blocks:      NewBlockServer(deps.Chain, cfg),
		log:         log.New("module", "protocol"),
	}
	return pr, nil
}

// OnPeerConnected registers a newly connected remote as handshaking
// and sends it our Status.
func (pr *Protocol) OnPeerConnected(peer common.PeerID) {
	ctx := NewContext(pr.io, pr.chain)
	pr.onPeerConnected(ctx, peer, time.Now())
	ctx.Flush()
}

// OnPeerDisconnected tears down all state held for peer, whichever
// table it was in (spec §4.A: disconnect is valid at any handshake
// stage).
func (pr *Protocol) OnPeerDisconnected(peer common.PeerID) {
	pr.handshaking.Remove(peer)
	if pr.peers.Remove(peer) {
		pr.sync.PeerDisconnected(peer)
		if pr.consensus != nil {
			pr.consensus.PeerDisconnected(peer)
		}
	}
}

// HandlePacket decodes and dispatches one inbound frame from peer. A
// panic inside a handler (a bug in a collaborator, not a remote
// fault) is recovered, logged, and turned into a disabled peer rather
// than crashing the node — mirroring the teacher's handle() guarding
// handleMsg in eth/handler.go.
func (pr *Protocol) HandlePacket(peer common.PeerID, frame []byte) (err error) {
	ctx := NewContext(pr.io, pr.chain)
	defer func() {
		if r := recover(); r != nil {
			pr.log.Error("recovered panic handling packet", "peer", peer, "panic", r)
			ctx.DisablePeer(peer)
			err = fmt.Errorf("protocol: panic handling packet from %s: %v", peer, r)
		}
		ctx.Flush()
	}()

	kind, body, err := DecodeFrame(frame)
	if err != nil {
		pr.log.Debug("malformed frame, disabling peer", "peer", peer, "err", err)
		pr.log.Trace("undecodable frame dump", "peer", peer, "frame", spew.Sdump(frame))
		ctx.DisablePeer(peer)
		return err
	}

	switch kind {
	case KindStatus:
		var msg Status
		if err := decodeBody(kind, body, &msg); err != nil {
			ctx.DisablePeer(peer)
			return err
		}
		pr.onStatus(ctx, peer, &msg)

	case KindBlockRequest:
		var msg BlockRequest
		if err := decodeBody(kind, body, &msg); err != nil {
			ctx.DisablePeer(peer)
			return err
		}
		resp, err := pr.blocks.Serve(&msg)
		if err != nil {
			pr.log.Debug("refusing block request, disabling peer", "peer", peer, "err", err)
			ctx.DisablePeer(peer)
			return err
		}
		ctx.SendMessage(peer, KindBlockResponse, resp)

	case KindBlockResponse:
		var msg BlockResponse
		if err := decodeBody(kind, body, &msg); err != nil {
			ctx.DisablePeer(peer)
			return err
		}
		pr.onBlockResponse(ctx, peer, &msg)

	case KindBlockAnnounce:
		var msg BlockAnnounce
		if err := decodeBody(kind, body, &msg); err != nil {
			ctx.DisablePeer(peer)
			return err
		}
		pr.onBlockAnnounce(peer, &msg)

	case KindBftMessage:
		var msg BftMessage
		if err := decodeBody(kind, body, &msg); err != nil {
			ctx.DisablePeer(peer)
			return err
		}
		if pr.consensus != nil {
			pr.consensus.OnMessage(ctx, peer, msg.Data, hashMessage(msg.Data))
		}

	case KindExtrinsics:
		var msg Extrinsics
		if err := decodeBody(kind, body, &msg); err != nil {
			ctx.DisablePeer(peer)
			return err
		}
		pr.onExtrinsics(ctx, peer, &msg)

	case KindChainSpecific:
		var msg ChainSpecific
		if err := decodeBody(kind, body, &msg); err != nil {
			ctx.DisablePeer(peer)
			return err
		}
		if pr.special != nil {
			pr.special.OnMessage(ctx, peer, msg.Data)
		}

	default:
		pr.log.Debug("unknown message kind, disabling peer", "peer", peer, "kind", kind)
		ctx.DisablePeer(peer)
		return fmt.Errorf("%w: unknown kind %s", errCodec, kind)
	}
	return nil
}

// onBlockResponse correlates an inbound response against the
// sender's outstanding request before handing it to ChainSync
// (invariant 3: a response is only ever interpreted against the
// request it actually answers). A response from a peer that is not in
// the PeerTable disables that peer.
func (pr *Protocol) onBlockResponse(ctx *Context, peer common.PeerID, resp *BlockResponse) {
	var (
		result routeResult
		req    *BlockRequest
	)
	known := pr.peers.Mutate(peer, func(p *Peer) {
		result, req = correlateResponse(p, resp)
	})
	if !known {
		pr.log.Debug("block response from unknown peer, disabling", "peer", peer)
		ctx.DisablePeer(peer)
		return
	}
	switch result {
	case routeMatched:
		pr.sync.OnBlockResponse(peer, req, resp)
	case routeNoOutstanding:
		pr.log.Trace("unsolicited block response, dropping", "peer", peer)
	case routeStaleMismatch:
		pr.log.Trace("stale/mismatched block response, dropping", "peer", peer, "id", resp.ID)
	}
}

// RequestBlocks issues a BlockRequest to peer, stamping it with the
// peer's next request id at send time.
func (pr *Protocol) RequestBlocks(peer common.PeerID, req *BlockRequest) bool {
	ctx := NewContext(pr.io, pr.chain)
	ok := pr.peers.Mutate(peer, func(p *Peer) {
		stampRequest(p, req, time.Now())
		ctx.SendMessage(peer, KindBlockRequest, req)
	})
	ctx.Flush()
	return ok
}

// Tick runs periodic maintenance: any active peer whose outstanding
// request has outlived cfg.RequestTimeout, and any handshaking peer
// that never completed Status exchange within the same window, is
// torn down. Victims are collected under the table locks and acted on
// afterward, so the disconnect I/O never runs while a lock is held
// (spec §8's two-phase collect-then-act rule, mirroring
// Context/ActionBuffer). Tearing down a victim goes through the same
// OnPeerDisconnected path a transport-reported disconnect uses, so
// Sync/Consensus are notified and the peer can't be flagged again on
// the next tick (spec §4.H).
func (pr *Protocol) Tick(now time.Time) {
	var victims []common.PeerID
	for _, id := range pr.peers.Snapshot() {
		pr.peers.View(id, func(p *Peer) {
			if p.Request != nil && now.Sub(p.RequestSentAt) > pr.cfg.RequestTimeout {
				victims = append(victims, id)
			}
		})
	}
	for id, startedAt := range pr.handshaking.Snapshot() {
		if now.Sub(startedAt) > pr.cfg.RequestTimeout {
			victims = append(victims, id)
		}
	}
	for _, id := range victims {
		pr.log.Debug("timeout, disconnecting peer", "peer", id)
		pr.io.DisconnectPeer(id)
		pr.OnPeerDisconnected(id)
	}

	if pr.consensus != nil {
		pr.consensus.CollectGarbage()
	}
}

// Restart is the abort() of spec §4.H: it clears Sync, the PeerTable
// and the HandshakingTable, and restarts Consensus, for recovery after
// a local fault.
func (pr *Protocol) Restart() {
	pr.sync.Reset()
	pr.peers.Clear()
	pr.handshaking.Clear()
	if pr.consensus != nil {
		pr.consensus.Restart()
	}
}

// Status reports a snapshot of sync state and peer counters (spec §3).
func (pr *Protocol) Status() ProtocolStatus {
	withRequest := 0
	for _, id := range pr.peers.Snapshot() {
		pr.peers.View(id, func(p *Peer) {
			if p.Request != nil {
				withRequest++
			}
		})
	}
	return ProtocolStatus{
		SyncState:        pr.sync.State(),
		TotalPeers:       pr.peers.Len(),
		PeersWithRequest: withRequest,
	}
}

// TransactionStats returns the reserved per-transaction propagation
// record set. Always empty today; see spec §3 and
// collaborators.go's TransactionStat doc.
func (pr *Protocol) TransactionStats() map[common.Hash]TransactionStat {
	return map[common.Hash]TransactionStat{}
}

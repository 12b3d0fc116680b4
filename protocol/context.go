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

// actionKind distinguishes the buffered side effects a Context can
// accumulate while the caller still holds protocol locks.
type actionKind int

const (
	actionSend actionKind = iota
	actionDisablePeer
	actionDisconnectPeer
)

type bufferedAction struct {
	kind actionKind
	peer common.PeerID
	data []byte
}

// Context is the ActionBuffer of spec §4.B / §8: every outbound side
// effect a handler wants to perform is appended here instead of
// executing immediately, so that locks held by the caller (PeerTable,
// HandshakingTable, Consensus, Specialization) are never held across a
// blocking I/O call. Flush runs the buffered actions, in order, once
// the caller has released every lock.
//
// A *Context also implements HandlerContext, the capability surface
// handed to Consensus.OnMessage and Specialization.OnMessage.
type Context struct {
	io      SyncIO
	chain   Chain
	actions []bufferedAction
}

// NewContext builds an empty action buffer bound to the given
// transport and chain view.
func NewContext(io SyncIO, chain Chain) *Context {
	return &Context{io: io, chain: chain}
}

// Send buffers a raw frame to peer.
func (c *Context) Send(peer common.PeerID, data []byte) {
	c.actions = append(c.actions, bufferedAction{kind: actionSend, peer: peer, data: data})
}

// SendMessage encodes kind/v and buffers the resulting frame. Encode
// failure here indicates a bug in the caller (an unsupported Go value
// passed as v), not a remote fault, so it is logged and dropped rather
// than propagated — there is no sensible error return in the
// fire-and-forget ActionBuffer model.
func (c *Context) SendMessage(peer common.PeerID, kind Kind, v interface{}) {
	frame, err := EncodeFrame(kind, v)
	if err != nil {
		pkgLogger.Error("drop outbound message: encode failed", "peer", peer, "kind", kind, "err", err)
		return
	}
	c.Send(peer, frame)
}

// DisablePeer buffers a ban of peer (spec: misbehavior with no good
// faith assumed — protocol violations, codec errors, invariant
// breaches).
func (c *Context) DisablePeer(peer common.PeerID) {
	c.actions = append(c.actions, bufferedAction{kind: actionDisablePeer, peer: peer})
}

// DisconnectPeer buffers a graceful disconnect of peer (no fault
// implied — e.g. voluntary protocol teardown).
func (c *Context) DisconnectPeer(peer common.PeerID) {
	c.actions = append(c.actions, bufferedAction{kind: actionDisconnectPeer, peer: peer})
}

// Client exposes read-only chain access to Consensus/Specialization.
func (c *Context) Client() Chain { return c.chain }

// Flush runs every buffered action against the transport, in the
// order they were recorded, and clears the buffer. Must be called
// with no protocol lock held.
func (c *Context) Flush() {
	for _, a := range c.actions {
		switch a.kind {
		case actionSend:
			if err := c.io.Send(a.peer, a.data); err != nil {
				pkgLogger.Debug("send failed", "peer", a.peer, "err", err)
			}
		case actionDisablePeer:
			c.io.DisablePeer(a.peer)
		case actionDisconnectPeer:
			c.io.DisconnectPeer(a.peer)
		}
	}
	c.actions = c.actions[:0]
}

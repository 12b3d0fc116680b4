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

import "time"

// routeResult classifies an inbound BlockResponse against the peer's
// outstanding request (spec §4.D, invariant 3).
type routeResult int

const (
	// routeMatched: response id equals the peer's outstanding request
	// id. The request slot is cleared and the response is handed to
	// ChainSync.
	routeMatched routeResult = iota
	// routeNoOutstanding: the peer has no outstanding request at all.
	// Treated as unsolicited; response is discarded.
	routeNoOutstanding
	// routeStaleMismatch: the peer has an outstanding request but its
	// id does not match — a stale or duplicate reply. Discarded
	// without clearing the real outstanding request.
	routeStaleMismatch
)

// stampRequest assigns the next request id from the peer's own
// counter and records it as outstanding, just before the request is
// handed to Context for sending (spec §4.D: "stamped inside
// send_message just before emission").
func stampRequest(p *Peer, req *BlockRequest, now time.Time) {
	req.ID = p.nextID()
	p.Request = req
	p.RequestSentAt = now
}

// correlateResponse checks resp against the peer's outstanding
// request. On routeMatched it clears the slot and returns the
// request that was outstanding (needed by ChainSync to interpret the
// response); otherwise it returns nil and leaves peer state untouched.
func correlateResponse(p *Peer, resp *BlockResponse) (routeResult, *BlockRequest) {
	if p.Request == nil {
		return routeNoOutstanding, nil
	}
	if p.Request.ID != resp.ID {
		return routeStaleMismatch, nil
	}
	req := p.Request
	p.Request = nil
	p.RequestSentAt = time.Time{}
	return routeMatched, req
}

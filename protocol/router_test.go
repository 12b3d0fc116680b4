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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStampRequestSetsOutstanding(t *testing.T) {
	p := newPeer("x", 1, 0)
	req := &BlockRequest{From: BlockIDFromNumber(0)}
	now := time.Now()

	stampRequest(p, req, now)

	assert.Equal(t, uint64(0), req.ID)
	assert.Same(t, req, p.Request)
	assert.Equal(t, now, p.RequestSentAt)
}

// TestCorrelateResponseMatched is invariant 3: a response whose id
// matches the outstanding request clears the slot and is reported matched.
func TestCorrelateResponseMatched(t *testing.T) {
	p := newPeer("x", 1, 0)
	req := &BlockRequest{From: BlockIDFromNumber(0)}
	stampRequest(p, req, time.Now())

	result, got := correlateResponse(p, &BlockResponse{ID: req.ID})

	assert.Equal(t, routeMatched, result)
	assert.Same(t, req, got)
	assert.Nil(t, p.Request, "outstanding request must be cleared on match")
	assert.True(t, p.RequestSentAt.IsZero(), "invariant 1: request_timestamp must clear alongside block_request")
}

func TestCorrelateResponseNoOutstanding(t *testing.T) {
	p := newPeer("x", 1, 0)
	result, got := correlateResponse(p, &BlockResponse{ID: 7})
	assert.Equal(t, routeNoOutstanding, result)
	assert.Nil(t, got)
}

// TestCorrelateResponseStaleMismatch covers a duplicate/stale reply
// carrying an id that doesn't match the current outstanding request:
// it must be dropped without disturbing the real outstanding request.
func TestCorrelateResponseStaleMismatch(t *testing.T) {
	p := newPeer("x", 1, 0)
	req := &BlockRequest{From: BlockIDFromNumber(0)}
	stampRequest(p, req, time.Now())

	result, got := correlateResponse(p, &BlockResponse{ID: req.ID + 1})

	assert.Equal(t, routeStaleMismatch, result)
	assert.Nil(t, got)
	assert.Same(t, req, p.Request, "mismatched response must not clear the real outstanding request")
}

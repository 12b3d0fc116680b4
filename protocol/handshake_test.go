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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashkey-chain/chainsync/common"
)

// TestHandshakeSuccess covers scenario 1: a fresh peer sends a
// Status matching our genesis/version and is promoted to the active
// PeerTable, with Sync.NewPeer notified.
func TestHandshakeSuccess(t *testing.T) {
	chain := newFakeChain(5)
	io, sy, deps := newTestDeps(chain)
	pr, err := NewProtocol(DefaultConfig, deps)
	require.NoError(t, err)

	pr.OnPeerConnected("p1")
	assert.Len(t, io.messagesTo("p1"), 1, "should have sent our Status")

	info, _ := chain.Info()
	err = pr.HandlePacket("p1", mustEncode(t, KindStatus, &Status{
		Version:     CurrentVersion,
		GenesisHash: info.GenesisHash,
		BestHash:    info.BestHash,
		BestNumber:  info.BestNumber,
	}))
	require.NoError(t, err)

	assert.True(t, pr.peers.Has("p1"))
	assert.False(t, pr.handshaking.Has("p1"))
	assert.False(t, io.disabled["p1"])
	assert.Contains(t, sy.newPeers, common.PeerID("p1"))
}

// TestHandshakeGenesisMismatchDisablesPeer covers scenario 2.
func TestHandshakeGenesisMismatchDisablesPeer(t *testing.T) {
	chain := newFakeChain(5)
	io, _, deps := newTestDeps(chain)
	pr, err := NewProtocol(DefaultConfig, deps)
	require.NoError(t, err)

	pr.OnPeerConnected("p1")
	err = pr.HandlePacket("p1", mustEncode(t, KindStatus, &Status{
		Version:     CurrentVersion,
		GenesisHash: common.BytesToHash([]byte("not our genesis")),
	}))
	require.NoError(t, err)

	assert.False(t, pr.peers.Has("p1"))
	assert.True(t, io.disabled["p1"])
}

func TestHandshakeVersionMismatchDisablesPeer(t *testing.T) {
	chain := newFakeChain(5)
	io, _, deps := newTestDeps(chain)
	pr, err := NewProtocol(DefaultConfig, deps)
	require.NoError(t, err)

	pr.OnPeerConnected("p1")
	info, _ := chain.Info()
	err = pr.HandlePacket("p1", mustEncode(t, KindStatus, &Status{
		Version:     CurrentVersion + 1,
		GenesisHash: info.GenesisHash,
	}))
	require.NoError(t, err)

	assert.False(t, pr.peers.Has("p1"))
	assert.True(t, io.disabled["p1"])
}

// TestHandshakeDuplicateStatusOnActivePeerIsDropped: once a peer is
// active, a second Status is silently ignored rather than
// re-processed or disabling the peer.
func TestHandshakeDuplicateStatusOnActivePeerIsDropped(t *testing.T) {
	chain := newFakeChain(5)
	io, _, deps := newTestDeps(chain)
	pr, err := NewProtocol(DefaultConfig, deps)
	require.NoError(t, err)

	pr.OnPeerConnected("p1")
	info, _ := chain.Info()
	status := &Status{Version: CurrentVersion, GenesisHash: info.GenesisHash}
	require.NoError(t, pr.HandlePacket("p1", mustEncode(t, KindStatus, status)))
	require.True(t, pr.peers.Has("p1"))

	require.NoError(t, pr.HandlePacket("p1", mustEncode(t, KindStatus, status)))
	assert.False(t, io.disabled["p1"], "duplicate status must not disable the peer")
}

func mustEncode(t *testing.T, kind Kind, v interface{}) []byte {
	t.Helper()
	frame, err := EncodeFrame(kind, v)
	require.NoError(t, err)
	return frame
}

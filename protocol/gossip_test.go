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

func connectAndHandshake(t *testing.T, pr *Protocol, chain *fakeChain, peer common.PeerID) {
	t.Helper()
	pr.OnPeerConnected(peer)
	info, _ := chain.Info()
	require.NoError(t, pr.HandlePacket(peer, mustEncode(t, KindStatus, &Status{
		Version:     CurrentVersion,
		GenesisHash: info.GenesisHash,
	})))
}

// TestPropagateExtrinsicsIsIdempotent: calling it twice in a row with
// an unchanged pool sends the batch once and nothing the second time,
// since every peer already knows every hash after the first call.
func TestPropagateExtrinsicsIsIdempotent(t *testing.T) {
	chain := newFakeChain(3)
	io, _, deps := newTestDeps(chain)
	pool := &fakeTxPool{}
	deps.TxPool = pool
	pr, err := NewProtocol(DefaultConfig, deps)
	require.NoError(t, err)

	connectAndHandshake(t, pr, chain, "p1")
	pool.Import([]byte("tx-1"))

	ctx := NewContext(io, chain)
	pr.PropagateExtrinsics(ctx)
	ctx.Flush()
	assert.Len(t, io.messagesTo("p1"), 2, "status + one extrinsics batch")

	pr.PropagateExtrinsics(ctx)
	ctx.Flush()
	assert.Len(t, io.messagesTo("p1"), 2, "second call must send nothing new")
}

// TestOnExtrinsicsSkipsMarkingRejectedImport covers spec §4.G: a hash
// the pool rejects (Import returns false) must not be recorded as
// known to the sending peer, since a reject means the pool already
// had it and the sender isn't the one who taught us about it.
func TestOnExtrinsicsSkipsMarkingRejectedImport(t *testing.T) {
	chain := newFakeChain(3)
	io, _, deps := newTestDeps(chain)
	pool := &fakeTxPool{}
	deps.TxPool = pool
	pr, err := NewProtocol(DefaultConfig, deps)
	require.NoError(t, err)

	connectAndHandshake(t, pr, chain, "p1")
	tx := []byte("tx-1")
	hash, accepted := pool.Import(tx)
	require.True(t, accepted, "first import must be accepted")

	ctx := NewContext(io, chain)
	pr.onExtrinsics(ctx, "p1", &Extrinsics{Items: [][]byte{tx}})
	ctx.Flush()

	pr.peers.View("p1", func(p *Peer) {
		assert.False(t, p.knowsExtrinsic(hash), "rejected re-import must not mark the hash known")
	})
}

// TestPropagateExtrinsicsGatedOnSyncState: while a download campaign
// is in progress, nothing is sent.
func TestPropagateExtrinsicsGatedOnSyncState(t *testing.T) {
	chain := newFakeChain(3)
	io, sy, deps := newTestDeps(chain)
	pool := &fakeTxPool{}
	deps.TxPool = pool
	pr, err := NewProtocol(DefaultConfig, deps)
	require.NoError(t, err)

	connectAndHandshake(t, pr, chain, "p1")
	pool.Import([]byte("tx-1"))
	sy.state = SyncStateDownloading

	ctx := NewContext(io, chain)
	pr.PropagateExtrinsics(ctx)
	ctx.Flush()
	assert.Len(t, io.messagesTo("p1"), 1, "only the handshake Status, gossip suppressed mid-sync")
}

// TestOnBlockImportedSkipsPeersThatAlreadyKnow covers invariant 5 from
// the announce side: a peer that already saw the hash (e.g. via
// announce) is not sent it again.
func TestOnBlockImportedSkipsPeersThatAlreadyKnow(t *testing.T) {
	chain := newFakeChain(3)
	io, _, deps := newTestDeps(chain)
	pr, err := NewProtocol(DefaultConfig, deps)
	require.NoError(t, err)

	connectAndHandshake(t, pr, chain, "p1")
	hash := chain.headers[1].Hash
	pr.peers.Mutate("p1", func(p *Peer) { p.markBlock(hash) })

	pr.OnBlockImported(hash, 1, chain.headers[1])
	assert.Len(t, io.messagesTo("p1"), 1, "only the handshake Status; announce suppressed")
}

func TestOnBlockImportedAnnouncesNewHash(t *testing.T) {
	chain := newFakeChain(3)
	io, _, deps := newTestDeps(chain)
	pr, err := NewProtocol(DefaultConfig, deps)
	require.NoError(t, err)

	connectAndHandshake(t, pr, chain, "p1")
	hash := chain.headers[2].Hash

	pr.OnBlockImported(hash, 2, chain.headers[2])
	assert.Len(t, io.messagesTo("p1"), 2, "status + announce")
}

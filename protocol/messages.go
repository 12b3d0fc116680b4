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

// Direction is the traversal order of a BlockRequest.
type Direction uint8

const (
	Ascending Direction = iota
	Descending
)

// Fields is a bitmask of the block attributes a BlockRequest asks for.
// Receipt and MessageQueue are reserved for future extension; serving
// them is a protocol error (see BlockServer).
type Fields uint8

const (
	FieldHeader Fields = 1 << iota
	FieldBody
	FieldReceipt
	FieldMessageQueue
	FieldJustification
)

// Has reports whether the mask requests the given field.
func (f Fields) Has(want Fields) bool { return f&want != 0 }

// BlockID resolves to at most one header: either by hash or by number.
type BlockID struct {
	Hash   common.Hash
	Number uint64
	IsHash bool
}

// BlockIDFromHash builds a hash-addressed BlockID.
func BlockIDFromHash(h common.Hash) BlockID { return BlockID{Hash: h, IsHash: true} }

// BlockIDFromNumber builds a number-addressed BlockID.
func BlockIDFromNumber(n uint64) BlockID { return BlockID{Number: n} }

// Header is the opaque, chain-specific block header. The protocol only
// ever needs its identity (Hash/ParentHash/Number) to walk the chain;
// Raw carries whatever encoding Chain produces and is passed through
// unexamined.
type Header struct {
	Hash       common.Hash
	ParentHash common.Hash
	Number     uint64
	Raw        []byte
}

// Body is the opaque list of extrinsics belonging to a block.
type Body struct {
	Raw []byte
}

// Justification is opaque consensus evidence attached to a finalized block.
type Justification struct {
	Raw []byte
}

// Status is exchanged on connection and on receipt from a remote peer;
// see spec §4.F / §6.
type Status struct {
	Version        uint32
	GenesisHash    common.Hash
	Roles          uint32
	BestNumber     uint64
	BestHash       common.Hash
	AuthorityID    []byte `json:",omitempty"`
	AuthoritySig   []byte `json:",omitempty"`
	Specialization []byte `json:",omitempty"`
}

// BlockRequest is an outbound block request. ID is assigned by
// RequestRouter just before emission (see router.go's stampRequest,
// called from Protocol.RequestBlocks), not by the caller.
type BlockRequest struct {
	ID        uint64
	From      BlockID
	To        *BlockID `json:",omitempty"`
	Direction Direction
	Max       *uint32 `json:",omitempty"`
	Fields    Fields
}

// BlockData is one response element: a hash plus whichever of
// header/body/justification the request asked for.
type BlockData struct {
	Hash          common.Hash
	Header        *Header        `json:",omitempty"`
	Body          *Body          `json:",omitempty"`
	Justification *Justification `json:",omitempty"`
}

// BlockResponse echoes the originating request's id.
type BlockResponse struct {
	ID     uint64
	Blocks []BlockData
}

// BlockAnnounce is a lightweight notification that the sender considers
// Header its current best.
type BlockAnnounce struct {
	Hash   common.Hash
	Header *Header
}

// BftMessage carries an opaque consensus packet. Its content hash
// (blake2-256, see hashMessage) is computed on receipt, not carried on
// the wire.
type BftMessage struct {
	Data []byte
}

// Extrinsics carries a batch of raw, externally submitted transactions.
type Extrinsics struct {
	Items [][]byte
}

// ChainSpecific carries an opaque application-specific payload.
type ChainSpecific struct {
	Data []byte
}

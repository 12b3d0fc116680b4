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
	lru "github.com/hashicorp/golang-lru"

	"github.com/hashkey-chain/chainsync/common"
)

// blockKey is the cache key for a resolved header: the request's
// BlockID collapsed to a single comparable value (hash requests key
// on the hash, number requests key on the number with a disjoint
// zero-value hash so the two address spaces never collide).
type blockKey struct {
	hash   common.Hash
	number uint64
	isHash bool
}

func keyOf(id BlockID) blockKey {
	return blockKey{hash: id.Hash, number: id.Number, isHash: id.IsHash}
}

// BlockServer answers BlockRequest messages against Chain, walking
// Ascending or Descending from the requested starting point and
// caching resolved headers (grounded on the teacher's
// core/state/database.go codeSizeCache use of hashicorp/golang-lru).
type BlockServer struct {
	chain      Chain
	cache      *lru.Cache
	maxResponse int
}

// NewBlockServer builds a server with a headerCacheSize-entry header
// cache, capping responses at cfg.MaxBlockDataResponse.
func NewBlockServer(chain Chain, cfg Config) *BlockServer {
	cache, err := lru.New(headerCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// headerCacheSize never is.
		panic(err)
	}
	return &BlockServer{chain: chain, cache: cache, maxResponse: cfg.MaxBlockDataResponse}
}

func (s *BlockServer) resolveHeader(id BlockID) *Header {
	key := keyOf(id)
	if v, ok := s.cache.Get(key); ok {
		return v.(*Header)
	}
	h := s.chain.Header(id)
	if h != nil {
		s.cache.Add(key, h)
	}
	return h
}

// Serve answers req, walking at most req.Fields worth of data per
// block and stopping at genesis, at an unresolvable header, or after
// the server's configured response cap (whichever first), per spec
// §4.E. The Receipt and MessageQueue fields are reserved and
// unimplemented: requesting either is a protocol violation, reported
// as errUnsupportedField so the caller disables the peer.
func (s *BlockServer) Serve(req *BlockRequest) (*BlockResponse, error) {
	if req.Fields.Has(FieldReceipt) || req.Fields.Has(FieldMessageQueue) {
		return nil, errUnsupportedField
	}

	max := s.maxResponse
	if req.Max != nil && int(*req.Max) < max {
		max = int(*req.Max)
	}

	resp := &BlockResponse{ID: req.ID}
	cur := req.From
	for len(resp.Blocks) < max {
		header := s.resolveHeader(cur)
		if header == nil {
			break
		}
		resp.Blocks = append(resp.Blocks, s.collect(cur, header, req.Fields))

		if req.To != nil && reachedBound(header, *req.To) {
			break
		}
		if header.Number == 0 {
			break // genesis
		}

		switch req.Direction {
		case Descending:
			cur = BlockIDFromHash(header.ParentHash)
		default:
			cur = BlockIDFromNumber(header.Number + 1)
		}
	}
	return resp, nil
}

// reachedBound reports whether header matches the requested stopping
// point, by hash or by number depending on how the caller addressed it.
func reachedBound(header *Header, to BlockID) bool {
	if to.IsHash {
		return header.Hash == to.Hash
	}
	return header.Number == to.Number
}

func (s *BlockServer) collect(id BlockID, header *Header, fields Fields) BlockData {
	data := BlockData{Hash: header.Hash}
	if fields.Has(FieldHeader) {
		data.Header = header
	}
	if fields.Has(FieldBody) {
		data.Body = s.chain.Body(id)
	}
	if fields.Has(FieldJustification) {
		data.Justification = s.chain.Justification(id)
	}
	return data
}

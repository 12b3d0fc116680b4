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
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
)

// Kind tags the message union on the wire. Framing is
// [1 kind byte][snappy-compressed JSON body] — self-describing and
// lossless/round-trippable, as required by spec §6.
type Kind byte

const (
	KindStatus Kind = iota + 1
	KindBlockRequest
	KindBlockResponse
	KindBlockAnnounce
	KindBftMessage
	KindExtrinsics
	KindChainSpecific
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "Status"
	case KindBlockRequest:
		return "BlockRequest"
	case KindBlockResponse:
		return "BlockResponse"
	case KindBlockAnnounce:
		return "BlockAnnounce"
	case KindBftMessage:
		return "BftMessage"
	case KindExtrinsics:
		return "Extrinsics"
	case KindChainSpecific:
		return "ChainSpecific"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// EncodeFrame marshals v as the JSON body for kind, compresses it, and
// prefixes the kind byte. Encode failure is impossible by construction
// for the supported message variants (spec §4.C): all of them are
// plain structs of JSON-marshalable fields.
func EncodeFrame(kind Kind, v interface{}) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal %s: %v", errCodec, kind, err)
	}
	compressed := snappy.Encode(nil, body)
	frame := make([]byte, 1+len(compressed))
	frame[0] = byte(kind)
	copy(frame[1:], compressed)
	return frame, nil
}

// DecodeFrame splits a frame into its kind and decompressed JSON body.
// Any malformed input (empty frame, corrupt snappy block) is reported
// as errCodec.
func DecodeFrame(frame []byte) (Kind, []byte, error) {
	if len(frame) < 1 {
		return 0, nil, fmt.Errorf("%w: empty frame", errCodec)
	}
	kind := Kind(frame[0])
	body, err := snappy.Decode(nil, frame[1:])
	if err != nil {
		return 0, nil, fmt.Errorf("%w: snappy: %v", errCodec, err)
	}
	return kind, body, nil
}

// decodeBody unmarshals a decoded frame body into v, wrapping any
// failure as errCodec.
func decodeBody(kind Kind, body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: unmarshal %s: %v", errCodec, kind, err)
	}
	return nil
}

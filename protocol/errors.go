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

import "errors"

// errCodec marks a malformed inbound frame — always peer-disable.
var errCodec = errors.New("protocol: codec error")

// errUnsupportedField marks a BlockRequest asking for Receipt or
// MessageQueue fields, reserved and unimplemented — refuse with
// disable, per spec §9.
var errUnsupportedField = errors.New("protocol: unsupported field mask (receipt/message-queue)")

// Copyright 2023 The go-meridian Authors
// This file is part of the go-meridian library.
//
// The go-meridian library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-meridian library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-meridian library. If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"sync"

	"github.com/meridianchain/go-meridian/common"
	"github.com/meridianchain/go-meridian/crypto"
)

// hasherPool holds KeccakState hashers for rlpHash.
var hasherPool = sync.Pool{
	New: func() interface{} { return crypto.NewKeccakState() },
}

// rlpHash computes the keccak256 hash of a pre-encoded payload.
func rlpHash(enc []byte) (h common.Hash) {
	sha := hasherPool.Get().(crypto.KeccakState)
	defer hasherPool.Put(sha)
	sha.Reset()
	sha.Write(enc)
	sha.Read(h[:])
	return h
}

// prefixedRlpHash computes the keccak256 hash of the type prefix followed by
// the encoded payload. It's used for typed transactions.
func prefixedRlpHash(prefix byte, enc []byte) (h common.Hash) {
	sha := hasherPool.Get().(crypto.KeccakState)
	defer hasherPool.Put(sha)
	sha.Reset()
	sha.Write([]byte{prefix})
	sha.Write(enc)
	sha.Read(h[:])
	return h
}

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
	"errors"
	"math/big"

	"github.com/meridianchain/go-meridian/common"
	"github.com/meridianchain/go-meridian/rlp"
)

// Field-level RLP helpers shared by the transaction payload codecs.

var (
	errInvalidAddressLen = errors.New("rlp: invalid address field length")
	errInvalidHashLen    = errors.New("rlp: invalid hash field length")
)

// writeTxTo encodes an optional recipient. Contract creations encode as the
// empty string.
func writeTxTo(w rlp.EncoderBuffer, to *common.Address) {
	if to == nil {
		w.WriteBytes([]byte{})
	} else {
		w.WriteBytes(to[:])
	}
}

// splitTxTo decodes an optional recipient field. An empty string yields a nil
// address, anything other than 0 or 20 bytes is rejected.
func splitTxTo(b []byte) (*common.Address, []byte, error) {
	content, rest, err := rlp.SplitString(b)
	if err != nil {
		return nil, nil, err
	}
	switch len(content) {
	case 0:
		return nil, rest, nil
	case common.AddressLength:
		addr := common.BytesToAddress(content)
		return &addr, rest, nil
	default:
		return nil, nil, errInvalidAddressLen
	}
}

// splitTxAddress decodes a mandatory 20-byte address field.
func splitTxAddress(b []byte) (common.Address, []byte, error) {
	content, rest, err := rlp.SplitString(b)
	if err != nil {
		return common.Address{}, nil, err
	}
	if len(content) != common.AddressLength {
		return common.Address{}, nil, errInvalidAddressLen
	}
	return common.BytesToAddress(content), rest, nil
}

// splitTxHash decodes a mandatory 32-byte hash field.
func splitTxHash(b []byte) (common.Hash, []byte, error) {
	content, rest, err := rlp.SplitString(b)
	if err != nil {
		return common.Hash{}, nil, err
	}
	if len(content) != common.HashLength {
		return common.Hash{}, nil, errInvalidHashLen
	}
	return common.BytesToHash(content), rest, nil
}

// splitTxData decodes the calldata field, copying it out of the input buffer.
func splitTxData(b []byte) ([]byte, []byte, error) {
	content, rest, err := rlp.SplitString(b)
	if err != nil {
		return nil, nil, err
	}
	return common.CopyBytes(content), rest, nil
}

// writeAccessList encodes an access list as a nested list of
// [address, [slot...]] tuples.
func writeAccessList(w rlp.EncoderBuffer, list AccessList) {
	outerList := w.List()
	for _, tuple := range list {
		tupleList := w.List()
		w.WriteBytes(tuple.Address[:])
		slotList := w.List()
		for _, slot := range tuple.StorageKeys {
			w.WriteBytes(slot[:])
		}
		w.ListEnd(slotList)
		w.ListEnd(tupleList)
	}
	w.ListEnd(outerList)
}

// splitAccessList decodes the access list field. Tuple shape is enforced:
// every element must be a two-item list of a 20-byte address and a list of
// 32-byte storage slots.
func splitAccessList(b []byte) (AccessList, []byte, error) {
	content, rest, err := rlp.SplitList(b)
	if err != nil {
		return nil, nil, err
	}
	var list AccessList
	for len(content) > 0 {
		var tupleContent []byte
		tupleContent, content, err = rlp.SplitList(content)
		if err != nil {
			return nil, nil, err
		}
		var tuple AccessTuple
		tuple.Address, tupleContent, err = splitTxAddress(tupleContent)
		if err != nil {
			return nil, nil, err
		}
		var slotContent []byte
		slotContent, tupleContent, err = rlp.SplitList(tupleContent)
		if err != nil {
			return nil, nil, err
		}
		if len(tupleContent) > 0 {
			return nil, nil, rlp.ErrTrailingBytes
		}
		tuple.StorageKeys = []common.Hash{}
		for len(slotContent) > 0 {
			var slot common.Hash
			slot, slotContent, err = splitTxHash(slotContent)
			if err != nil {
				return nil, nil, err
			}
			tuple.StorageKeys = append(tuple.StorageKeys, slot)
		}
		list = append(list, tuple)
	}
	return list, rest, nil
}

// writeSignature encodes the trailing v, r, s fields.
func writeSignature(w rlp.EncoderBuffer, v, r, s *big.Int) {
	w.WriteBigInt(v)
	w.WriteBigInt(r)
	w.WriteBigInt(s)
}

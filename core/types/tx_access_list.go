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
	"bytes"
	"math/big"

	"github.com/meridianchain/go-meridian/common"
	"github.com/meridianchain/go-meridian/rlp"
)

// AccessList is an EIP-2930 access list.
type AccessList []AccessTuple

// AccessTuple is the element type of an access list.
type AccessTuple struct {
	Address     common.Address `json:"address"     gencodec:"required"`
	StorageKeys []common.Hash  `json:"storageKeys" gencodec:"required"`
}

// StorageKeys returns the total number of storage keys in the access list.
func (al AccessList) StorageKeys() int {
	sum := 0
	for _, tuple := range al {
		sum += len(tuple.StorageKeys)
	}
	return sum
}

// AccessListTx is the data of EIP-2930 access list transactions.
type AccessListTx struct {
	ChainID    *big.Int        // destination chain ID
	Nonce      uint64          // nonce of sender account
	GasPrice   *big.Int        // wei per gas
	Gas        uint64          // gas limit
	To         *common.Address // nil means contract creation
	Value      *big.Int        // wei amount
	Data       []byte          // contract invocation input data
	AccessList AccessList      // EIP-2930 access list
	V, R, S    *big.Int        // signature values
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *AccessListTx) copy() TxData {
	cpy := &AccessListTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are copied below.
		AccessList: make(AccessList, len(tx.AccessList)),
		Value:      new(big.Int),
		ChainID:    new(big.Int),
		GasPrice:   new(big.Int),
		V:          new(big.Int),
		R:          new(big.Int),
		S:          new(big.Int),
	}
	copy(cpy.AccessList, tx.AccessList)
	if tx.Value != nil {
		cpy.Value.Set(tx.Value)
	}
	if tx.ChainID != nil {
		cpy.ChainID.Set(tx.ChainID)
	}
	if tx.GasPrice != nil {
		cpy.GasPrice.Set(tx.GasPrice)
	}
	if tx.V != nil {
		cpy.V.Set(tx.V)
	}
	if tx.R != nil {
		cpy.R.Set(tx.R)
	}
	if tx.S != nil {
		cpy.S.Set(tx.S)
	}
	return cpy
}

// accessors for innerTx.
func (tx *AccessListTx) txType() byte           { return AccessListTxType }
func (tx *AccessListTx) chainID() *big.Int      { return tx.ChainID }
func (tx *AccessListTx) accessList() AccessList { return tx.AccessList }
func (tx *AccessListTx) data() []byte           { return tx.Data }
func (tx *AccessListTx) gas() uint64            { return tx.Gas }
func (tx *AccessListTx) gasPrice() *big.Int     { return tx.GasPrice }
func (tx *AccessListTx) gasTipCap() *big.Int    { return tx.GasPrice }
func (tx *AccessListTx) gasFeeCap() *big.Int    { return tx.GasPrice }
func (tx *AccessListTx) value() *big.Int        { return tx.Value }
func (tx *AccessListTx) nonce() uint64          { return tx.Nonce }
func (tx *AccessListTx) to() *common.Address    { return tx.To }

func (tx *AccessListTx) effectiveGasPrice(dst *big.Int, baseFee *big.Int) *big.Int {
	return dst.Set(tx.GasPrice)
}

func (tx *AccessListTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *AccessListTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

// sigHash returns keccak256(0x01 || rlp([chainID, nonce, gasPrice, gas, to,
// value, data, accessList])). The chainID argument overrides the field so that
// signers hash with their own chain ID.
func (tx *AccessListTx) sigHash(chainID *big.Int) common.Hash {
	var buf bytes.Buffer
	w := rlp.NewEncoderBuffer(&buf)
	idx := w.List()
	w.WriteBigInt(chainID)
	w.WriteUint64(tx.Nonce)
	w.WriteBigInt(tx.GasPrice)
	w.WriteUint64(tx.Gas)
	writeTxTo(w, tx.To)
	w.WriteBigInt(tx.Value)
	w.WriteBytes(tx.Data)
	writeAccessList(w, tx.AccessList)
	w.ListEnd(idx)
	w.Flush()
	return prefixedRlpHash(AccessListTxType, buf.Bytes())
}

func (tx *AccessListTx) encode(b *bytes.Buffer) error {
	w := rlp.NewEncoderBuffer(b)
	idx := w.List()
	w.WriteBigInt(tx.ChainID)
	w.WriteUint64(tx.Nonce)
	w.WriteBigInt(tx.GasPrice)
	w.WriteUint64(tx.Gas)
	writeTxTo(w, tx.To)
	w.WriteBigInt(tx.Value)
	w.WriteBytes(tx.Data)
	writeAccessList(w, tx.AccessList)
	writeSignature(w, tx.V, tx.R, tx.S)
	w.ListEnd(idx)
	return w.Flush()
}

func (tx *AccessListTx) decode(input []byte) error {
	content, rest, err := rlp.SplitList(input)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return rlp.ErrTrailingBytes
	}
	b := content
	if tx.ChainID, b, err = rlp.SplitBigInt(b); err != nil {
		return err
	}
	if tx.Nonce, b, err = rlp.SplitUint64(b); err != nil {
		return err
	}
	if tx.GasPrice, b, err = rlp.SplitBigInt(b); err != nil {
		return err
	}
	if tx.Gas, b, err = rlp.SplitUint64(b); err != nil {
		return err
	}
	if tx.To, b, err = splitTxTo(b); err != nil {
		return err
	}
	if tx.Value, b, err = rlp.SplitBigInt(b); err != nil {
		return err
	}
	if tx.Data, b, err = splitTxData(b); err != nil {
		return err
	}
	if tx.AccessList, b, err = splitAccessList(b); err != nil {
		return err
	}
	if tx.V, b, err = rlp.SplitBigInt(b); err != nil {
		return err
	}
	if tx.R, b, err = rlp.SplitBigInt(b); err != nil {
		return err
	}
	if tx.S, b, err = rlp.SplitBigInt(b); err != nil {
		return err
	}
	if len(b) > 0 {
		return rlp.ErrTrailingBytes
	}
	return nil
}

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

// DynamicFeeTx is the data of EIP-1559 dynamic fee transactions.
type DynamicFeeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int // maxPriorityFeePerGas
	GasFeeCap  *big.Int // maxFeePerGas
	Gas        uint64
	To         *common.Address // nil means contract creation
	Value      *big.Int
	Data       []byte
	AccessList AccessList

	// Signature values
	V *big.Int
	R *big.Int
	S *big.Int
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *DynamicFeeTx) copy() TxData {
	cpy := &DynamicFeeTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are copied below.
		AccessList: make(AccessList, len(tx.AccessList)),
		Value:      new(big.Int),
		ChainID:    new(big.Int),
		GasTipCap:  new(big.Int),
		GasFeeCap:  new(big.Int),
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
	if tx.GasTipCap != nil {
		cpy.GasTipCap.Set(tx.GasTipCap)
	}
	if tx.GasFeeCap != nil {
		cpy.GasFeeCap.Set(tx.GasFeeCap)
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
func (tx *DynamicFeeTx) txType() byte           { return DynamicFeeTxType }
func (tx *DynamicFeeTx) chainID() *big.Int      { return tx.ChainID }
func (tx *DynamicFeeTx) accessList() AccessList { return tx.AccessList }
func (tx *DynamicFeeTx) data() []byte           { return tx.Data }
func (tx *DynamicFeeTx) gas() uint64            { return tx.Gas }
func (tx *DynamicFeeTx) gasFeeCap() *big.Int    { return tx.GasFeeCap }
func (tx *DynamicFeeTx) gasTipCap() *big.Int    { return tx.GasTipCap }
func (tx *DynamicFeeTx) gasPrice() *big.Int     { return tx.GasFeeCap }
func (tx *DynamicFeeTx) value() *big.Int        { return tx.Value }
func (tx *DynamicFeeTx) nonce() uint64          { return tx.Nonce }
func (tx *DynamicFeeTx) to() *common.Address    { return tx.To }

// effectiveGasPrice returns min(gasFeeCap, baseFee+gasTipCap).
func (tx *DynamicFeeTx) effectiveGasPrice(dst *big.Int, baseFee *big.Int) *big.Int {
	if baseFee == nil {
		return dst.Set(tx.GasFeeCap)
	}
	tip := dst.Sub(tx.GasFeeCap, baseFee)
	if tip.Cmp(tx.GasTipCap) > 0 {
		tip.Set(tx.GasTipCap)
	}
	return tip.Add(tip, baseFee)
}

func (tx *DynamicFeeTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *DynamicFeeTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

// sigHash returns keccak256(0x02 || rlp([chainID, nonce, gasTipCap, gasFeeCap,
// gas, to, value, data, accessList])).
func (tx *DynamicFeeTx) sigHash(chainID *big.Int) common.Hash {
	var buf bytes.Buffer
	w := rlp.NewEncoderBuffer(&buf)
	idx := w.List()
	w.WriteBigInt(chainID)
	w.WriteUint64(tx.Nonce)
	w.WriteBigInt(tx.GasTipCap)
	w.WriteBigInt(tx.GasFeeCap)
	w.WriteUint64(tx.Gas)
	writeTxTo(w, tx.To)
	w.WriteBigInt(tx.Value)
	w.WriteBytes(tx.Data)
	writeAccessList(w, tx.AccessList)
	w.ListEnd(idx)
	w.Flush()
	return prefixedRlpHash(DynamicFeeTxType, buf.Bytes())
}

func (tx *DynamicFeeTx) encode(b *bytes.Buffer) error {
	w := rlp.NewEncoderBuffer(b)
	idx := w.List()
	w.WriteBigInt(tx.ChainID)
	w.WriteUint64(tx.Nonce)
	w.WriteBigInt(tx.GasTipCap)
	w.WriteBigInt(tx.GasFeeCap)
	w.WriteUint64(tx.Gas)
	writeTxTo(w, tx.To)
	w.WriteBigInt(tx.Value)
	w.WriteBytes(tx.Data)
	writeAccessList(w, tx.AccessList)
	writeSignature(w, tx.V, tx.R, tx.S)
	w.ListEnd(idx)
	return w.Flush()
}

func (tx *DynamicFeeTx) decode(input []byte) error {
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
	if tx.GasTipCap, b, err = rlp.SplitBigInt(b); err != nil {
		return err
	}
	if tx.GasFeeCap, b, err = rlp.SplitBigInt(b); err != nil {
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

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

// LegacyTx is the transaction data of the original transaction format.
type LegacyTx struct {
	Nonce    uint64          // nonce of sender account
	GasPrice *big.Int        // wei per gas
	Gas      uint64          // gas limit
	To       *common.Address // nil means contract creation
	Value    *big.Int        // wei amount
	Data     []byte          // contract invocation input data
	V, R, S  *big.Int        // signature values
}

// NewTransaction creates an unsigned legacy transaction.
//
// Deprecated: use NewTx instead.
func NewTransaction(nonce uint64, to common.Address, amount *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) *Transaction {
	return NewTx(&LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
}

// NewContractCreation creates an unsigned legacy transaction with no recipient.
//
// Deprecated: use NewTx instead.
func NewContractCreation(nonce uint64, amount *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) *Transaction {
	return NewTx(&LegacyTx{
		Nonce:    nonce,
		Value:    amount,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *LegacyTx) copy() TxData {
	cpy := &LegacyTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are initialized below.
		Value:    new(big.Int),
		GasPrice: new(big.Int),
		V:        new(big.Int),
		R:        new(big.Int),
		S:        new(big.Int),
	}
	if tx.Value != nil {
		cpy.Value.Set(tx.Value)
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
func (tx *LegacyTx) txType() byte           { return LegacyTxType }
func (tx *LegacyTx) chainID() *big.Int      { return deriveChainId(tx.V) }
func (tx *LegacyTx) accessList() AccessList { return nil }
func (tx *LegacyTx) data() []byte           { return tx.Data }
func (tx *LegacyTx) gas() uint64            { return tx.Gas }
func (tx *LegacyTx) gasPrice() *big.Int     { return tx.GasPrice }
func (tx *LegacyTx) gasTipCap() *big.Int    { return tx.GasPrice }
func (tx *LegacyTx) gasFeeCap() *big.Int    { return tx.GasPrice }
func (tx *LegacyTx) value() *big.Int        { return tx.Value }
func (tx *LegacyTx) nonce() uint64          { return tx.Nonce }
func (tx *LegacyTx) to() *common.Address    { return tx.To }

func (tx *LegacyTx) effectiveGasPrice(dst *big.Int, baseFee *big.Int) *big.Int {
	return dst.Set(tx.GasPrice)
}

func (tx *LegacyTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *LegacyTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.V, tx.R, tx.S = v, r, s
}

// sigHash returns the hash signed by the sender. A nil or zero chainID yields
// the original pre-EIP155 six-field hash, otherwise the chain ID and two zero
// fields are appended per EIP-155.
func (tx *LegacyTx) sigHash(chainID *big.Int) common.Hash {
	var buf bytes.Buffer
	w := rlp.NewEncoderBuffer(&buf)
	idx := w.List()
	w.WriteUint64(tx.Nonce)
	w.WriteBigInt(tx.GasPrice)
	w.WriteUint64(tx.Gas)
	writeTxTo(w, tx.To)
	w.WriteBigInt(tx.Value)
	w.WriteBytes(tx.Data)
	if chainID != nil && chainID.Sign() != 0 {
		w.WriteBigInt(chainID)
		w.WriteUint64(0)
		w.WriteUint64(0)
	}
	w.ListEnd(idx)
	w.Flush()
	return rlpHash(buf.Bytes())
}

func (tx *LegacyTx) encode(b *bytes.Buffer) error {
	w := rlp.NewEncoderBuffer(b)
	idx := w.List()
	w.WriteUint64(tx.Nonce)
	w.WriteBigInt(tx.GasPrice)
	w.WriteUint64(tx.Gas)
	writeTxTo(w, tx.To)
	w.WriteBigInt(tx.Value)
	w.WriteBytes(tx.Data)
	writeSignature(w, tx.V, tx.R, tx.S)
	w.ListEnd(idx)
	return w.Flush()
}

func (tx *LegacyTx) decode(input []byte) error {
	content, rest, err := rlp.SplitList(input)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return rlp.ErrTrailingBytes
	}
	b := content
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

// Copyright 2024 The go-meridian Authors
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
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/meridianchain/go-meridian/common"
	"github.com/meridianchain/go-meridian/crypto/kzg4844"
	"github.com/meridianchain/go-meridian/params"
	"github.com/meridianchain/go-meridian/rlp"
)

var (
	errInvalidBlobLen       = errors.New("rlp: invalid blob field length")
	errInvalidCommitmentLen = errors.New("rlp: invalid commitment field length")
)

// BlobTx represents a blob-carrying transaction.
type BlobTx struct {
	ChainID    *uint256.Int
	Nonce      uint64
	GasTipCap  *uint256.Int // maxPriorityFeePerGas
	GasFeeCap  *uint256.Int // maxFeePerGas
	Gas        uint64
	To         *common.Address // nil is rejected by CheckFields, blob txs cannot create
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList
	BlobFeeCap *uint256.Int // maxFeePerDataGas
	BlobHashes []common.Hash

	// A blob transaction can optionally contain blobs. This field must be set
	// when BlobTx is used to create a transaction for network propagation.
	Sidecar *BlobTxSidecar

	// Signature values
	V *uint256.Int
	R *uint256.Int
	S *uint256.Int
}

// BlobTxSidecar contains the blobs of a blob transaction, their commitments
// and a single aggregate proof covering all of them.
type BlobTxSidecar struct {
	Blobs       []kzg4844.Blob       // Blobs needed by the blob pool
	Commitments []kzg4844.Commitment // Commitments needed by the blob pool
	Proof       kzg4844.Proof        // Aggregate proof over all blobs
}

// BlobHashes computes the blob hashes of the given sidecar.
func (sc *BlobTxSidecar) BlobHashes() []common.Hash {
	hasher := sha256.New()
	h := make([]common.Hash, len(sc.Commitments))
	for i := range sc.Blobs {
		h[i] = blobHash(&sc.Commitments[i], hasher)
	}
	return h
}

func blobHash(commit *kzg4844.Commitment, hasher hash.Hash) common.Hash {
	return common.Hash(kzg4844.CalcBlobHashV1(hasher, commit))
}

// Validate checks the shape of the sidecar against the given versioned hashes
// and verifies the aggregate proof through v. A nil verifier skips the proof
// check, leaving only the structural validation.
func (sc *BlobTxSidecar) Validate(hashes []common.Hash, v kzg4844.Verifier) error {
	if len(sc.Blobs) != len(hashes) {
		return fmt.Errorf("%w: %d blobs for %d versioned hashes", ErrBadWrapper, len(sc.Blobs), len(hashes))
	}
	if len(sc.Commitments) != len(hashes) {
		return fmt.Errorf("%w: %d commitments for %d versioned hashes", ErrBadWrapper, len(sc.Commitments), len(hashes))
	}
	hasher := sha256.New()
	for i, want := range hashes {
		if computed := blobHash(&sc.Commitments[i], hasher); computed != want {
			return fmt.Errorf("%w: commitment %d does not match versioned hash", ErrBadWrapper, i)
		}
	}
	if v == nil {
		return nil
	}
	return v.VerifyAggregate(sc.Blobs, sc.Commitments, sc.Proof)
}

// encodedSize computes the RLP size of the sidecar elements. This is used
// to account for the sidecar in the transaction size.
func (sc *BlobTxSidecar) encodedSize() uint64 {
	var blobs, commitments uint64
	for i := range sc.Blobs {
		blobs += rlp.BytesSize(sc.Blobs[i][:])
	}
	for i := range sc.Commitments {
		commitments += rlp.BytesSize(sc.Commitments[i][:])
	}
	return rlp.ListSize(blobs) + rlp.ListSize(commitments) + rlp.BytesSize(sc.Proof[:])
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *BlobTx) copy() TxData {
	cpy := &BlobTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are copied below.
		AccessList: make(AccessList, len(tx.AccessList)),
		BlobHashes: make([]common.Hash, len(tx.BlobHashes)),
		Value:      new(uint256.Int),
		ChainID:    new(uint256.Int),
		GasTipCap:  new(uint256.Int),
		GasFeeCap:  new(uint256.Int),
		BlobFeeCap: new(uint256.Int),
		V:          new(uint256.Int),
		R:          new(uint256.Int),
		S:          new(uint256.Int),
	}
	copy(cpy.AccessList, tx.AccessList)
	copy(cpy.BlobHashes, tx.BlobHashes)

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
	if tx.BlobFeeCap != nil {
		cpy.BlobFeeCap.Set(tx.BlobFeeCap)
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
	if tx.Sidecar != nil {
		cpy.Sidecar = &BlobTxSidecar{
			Blobs:       append([]kzg4844.Blob(nil), tx.Sidecar.Blobs...),
			Commitments: append([]kzg4844.Commitment(nil), tx.Sidecar.Commitments...),
			Proof:       tx.Sidecar.Proof,
		}
	}
	return cpy
}

// accessors for innerTx.
func (tx *BlobTx) txType() byte           { return BlobTxType }
func (tx *BlobTx) chainID() *big.Int      { return tx.ChainID.ToBig() }
func (tx *BlobTx) accessList() AccessList { return tx.AccessList }
func (tx *BlobTx) data() []byte           { return tx.Data }
func (tx *BlobTx) gas() uint64            { return tx.Gas }
func (tx *BlobTx) gasFeeCap() *big.Int    { return tx.GasFeeCap.ToBig() }
func (tx *BlobTx) gasTipCap() *big.Int    { return tx.GasTipCap.ToBig() }
func (tx *BlobTx) gasPrice() *big.Int     { return tx.GasFeeCap.ToBig() }
func (tx *BlobTx) value() *big.Int        { return tx.Value.ToBig() }
func (tx *BlobTx) nonce() uint64          { return tx.Nonce }
func (tx *BlobTx) to() *common.Address    { return tx.To }

func (tx *BlobTx) dataGas() uint64 {
	return params.BlobTxDataGasPerBlob * uint64(len(tx.BlobHashes))
}

func (tx *BlobTx) effectiveGasPrice(dst *big.Int, baseFee *big.Int) *big.Int {
	if baseFee == nil {
		return dst.Set(tx.GasFeeCap.ToBig())
	}
	tip := dst.Sub(tx.GasFeeCap.ToBig(), baseFee)
	if tip.Cmp(tx.GasTipCap.ToBig()) > 0 {
		tip.Set(tx.GasTipCap.ToBig())
	}
	return tip.Add(tip, baseFee)
}

func (tx *BlobTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V.ToBig(), tx.R.ToBig(), tx.S.ToBig()
}

func (tx *BlobTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID.SetFromBig(chainID)
	tx.V.SetFromBig(v)
	tx.R.SetFromBig(r)
	tx.S.SetFromBig(s)
}

func (tx *BlobTx) withoutSidecar() *BlobTx {
	cpy := *tx
	cpy.Sidecar = nil
	return &cpy
}

func (tx *BlobTx) withSidecar(sideCar *BlobTxSidecar) *BlobTx {
	cpy := *tx
	cpy.Sidecar = sideCar
	return &cpy
}

// sigHash covers the payload fields only, never the sidecar, so signing and
// sender recovery are independent of blob propagation.
func (tx *BlobTx) sigHash(chainID *big.Int) common.Hash {
	var buf bytes.Buffer
	w := rlp.NewEncoderBuffer(&buf)
	idx := w.List()
	w.WriteBigInt(chainID)
	w.WriteUint64(tx.Nonce)
	w.WriteUint256(tx.GasTipCap)
	w.WriteUint256(tx.GasFeeCap)
	w.WriteUint64(tx.Gas)
	writeTxTo(w, tx.To)
	w.WriteUint256(tx.Value)
	w.WriteBytes(tx.Data)
	writeAccessList(w, tx.AccessList)
	w.WriteUint256(tx.BlobFeeCap)
	blobHashList := w.List()
	for _, h := range tx.BlobHashes {
		w.WriteBytes(h[:])
	}
	w.ListEnd(blobHashList)
	w.ListEnd(idx)
	w.Flush()
	return prefixedRlpHash(BlobTxType, buf.Bytes())
}

func (tx *BlobTx) encode(b *bytes.Buffer) error {
	if tx.Sidecar == nil {
		w := rlp.NewEncoderBuffer(b)
		tx.encodePayload(w)
		return w.Flush()
	}
	// Network wrapper: [tx_payload, blobs, commitments, proof].
	w := rlp.NewEncoderBuffer(b)
	outer := w.List()
	tx.encodePayload(w)
	blobList := w.List()
	for i := range tx.Sidecar.Blobs {
		w.WriteBytes(tx.Sidecar.Blobs[i][:])
	}
	w.ListEnd(blobList)
	commitList := w.List()
	for i := range tx.Sidecar.Commitments {
		w.WriteBytes(tx.Sidecar.Commitments[i][:])
	}
	w.ListEnd(commitList)
	w.WriteBytes(tx.Sidecar.Proof[:])
	w.ListEnd(outer)
	return w.Flush()
}

func (tx *BlobTx) encodePayload(w rlp.EncoderBuffer) {
	idx := w.List()
	w.WriteUint256(tx.ChainID)
	w.WriteUint64(tx.Nonce)
	w.WriteUint256(tx.GasTipCap)
	w.WriteUint256(tx.GasFeeCap)
	w.WriteUint64(tx.Gas)
	writeTxTo(w, tx.To)
	w.WriteUint256(tx.Value)
	w.WriteBytes(tx.Data)
	writeAccessList(w, tx.AccessList)
	w.WriteUint256(tx.BlobFeeCap)
	blobHashList := w.List()
	for _, h := range tx.BlobHashes {
		w.WriteBytes(h[:])
	}
	w.ListEnd(blobHashList)
	w.WriteUint256(tx.V)
	w.WriteUint256(tx.R)
	w.WriteUint256(tx.S)
	w.ListEnd(idx)
}

func (tx *BlobTx) decode(input []byte) error {
	// Here we need to support two formats: the network wrapper, and the tx
	// payload itself. They are distinguished by the first element of the
	// outer list: for the wrapper it is a list (the payload), for the
	// payload it is the chainID string.
	outerContent, rest, err := rlp.SplitList(input)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return rlp.ErrTrailingBytes
	}
	firstElemKind, _, _, err := rlp.Split(outerContent)
	if err != nil {
		return err
	}
	if firstElemKind != rlp.List {
		return tx.decodePayload(outerContent)
	}

	// It's a tx with a sidecar.
	var payloadContent []byte
	b := outerContent
	if payloadContent, b, err = rlp.SplitList(b); err != nil {
		return err
	}
	if err := tx.decodePayload(payloadContent); err != nil {
		return err
	}
	sc := new(BlobTxSidecar)
	var blobContent []byte
	if blobContent, b, err = rlp.SplitList(b); err != nil {
		return err
	}
	for len(blobContent) > 0 {
		var elem []byte
		if elem, blobContent, err = rlp.SplitString(blobContent); err != nil {
			return err
		}
		if len(elem) != len(kzg4844.Blob{}) {
			return errInvalidBlobLen
		}
		var blob kzg4844.Blob
		copy(blob[:], elem)
		sc.Blobs = append(sc.Blobs, blob)
	}
	var commitContent []byte
	if commitContent, b, err = rlp.SplitList(b); err != nil {
		return err
	}
	for len(commitContent) > 0 {
		var elem []byte
		if elem, commitContent, err = rlp.SplitString(commitContent); err != nil {
			return err
		}
		if len(elem) != len(kzg4844.Commitment{}) {
			return errInvalidCommitmentLen
		}
		var c kzg4844.Commitment
		copy(c[:], elem)
		sc.Commitments = append(sc.Commitments, c)
	}
	var proofContent []byte
	if proofContent, b, err = rlp.SplitString(b); err != nil {
		return err
	}
	if len(proofContent) != len(kzg4844.Proof{}) {
		return errInvalidCommitmentLen
	}
	copy(sc.Proof[:], proofContent)
	if len(b) > 0 {
		return rlp.ErrTrailingBytes
	}
	tx.Sidecar = sc
	return nil
}

// decodePayload parses the content of the payload list, without its list
// header.
func (tx *BlobTx) decodePayload(content []byte) error {
	b := content
	var err error
	if tx.ChainID, b, err = rlp.SplitUint256(b); err != nil {
		return err
	}
	if tx.Nonce, b, err = rlp.SplitUint64(b); err != nil {
		return err
	}
	if tx.GasTipCap, b, err = rlp.SplitUint256(b); err != nil {
		return err
	}
	if tx.GasFeeCap, b, err = rlp.SplitUint256(b); err != nil {
		return err
	}
	if tx.Gas, b, err = rlp.SplitUint64(b); err != nil {
		return err
	}
	if tx.To, b, err = splitTxTo(b); err != nil {
		return err
	}
	if tx.Value, b, err = rlp.SplitUint256(b); err != nil {
		return err
	}
	if tx.Data, b, err = splitTxData(b); err != nil {
		return err
	}
	if tx.AccessList, b, err = splitAccessList(b); err != nil {
		return err
	}
	if tx.BlobFeeCap, b, err = rlp.SplitUint256(b); err != nil {
		return err
	}
	var hashContent []byte
	if hashContent, b, err = rlp.SplitList(b); err != nil {
		return err
	}
	tx.BlobHashes = tx.BlobHashes[:0]
	for len(hashContent) > 0 {
		var h common.Hash
		if h, hashContent, err = splitTxHash(hashContent); err != nil {
			return err
		}
		tx.BlobHashes = append(tx.BlobHashes, h)
	}
	if tx.V, b, err = rlp.SplitUint256(b); err != nil {
		return err
	}
	if tx.R, b, err = rlp.SplitUint256(b); err != nil {
		return err
	}
	if tx.S, b, err = rlp.SplitUint256(b); err != nil {
		return err
	}
	if len(b) > 0 {
		return rlp.ErrTrailingBytes
	}
	return nil
}

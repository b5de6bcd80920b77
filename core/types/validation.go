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
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/meridianchain/go-meridian/params"
)

var (
	// ErrFieldOverflow is returned when a quantity field of a transaction
	// exceeds 256 bits, or a gas * price product exceeds it.
	ErrFieldOverflow = errors.New("transaction field overflows 256 bits")

	// ErrTipAboveFeeCap is returned if the tip is higher than the fee cap.
	ErrTipAboveFeeCap = errors.New("max priority fee per gas higher than max fee per gas")

	// ErrMaxInitCodeSizeExceeded is returned if creation transaction provides the init code bigger
	// than init code size limit.
	ErrMaxInitCodeSizeExceeded = errors.New("max initcode size exceeded")

	// ErrBlobCreate is returned if a blob transaction has no recipient.
	ErrBlobCreate = errors.New("blob transaction cannot be a contract creation")

	// ErrNoBlobs is returned if a blob transaction carries no blob hashes.
	ErrNoBlobs = errors.New("blob transaction without blobs")

	// ErrTooManyBlobs is returned if a blob transaction exceeds the per-tx
	// data gas allowance.
	ErrTooManyBlobs = errors.New("too many blobs in transaction")

	// ErrBlobHashVersion is returned if a versioned blob hash has an
	// unsupported version byte.
	ErrBlobHashVersion = errors.New("blob hash version mismatch")

	// ErrBadWrapper is returned when the sidecar of a blob transaction does
	// not match its versioned hashes.
	ErrBadWrapper = errors.New("unexpected blob wrapper")

	// ErrUnsigned is returned when sender recovery is attempted on a
	// transaction without a signature.
	ErrUnsigned = errors.New("transaction is not signed")
)

// CheckFields validates the intrinsic well-formedness of a transaction
// against the given chain rules: quantity bounds, fee ordering, init code
// size and the blob constraints. Signature validity is not checked here,
// that is the signer's job.
//
// NewTx and the decoders do not validate fields, so callers accepting
// transactions from untrusted sources must call CheckFields before use.
func CheckFields(tx *Transaction, rules *params.Rules) error {
	if err := checkQuantities(tx); err != nil {
		return withTxContext(err, tx)
	}
	// EIP-1559 ordering: the tip can never exceed the fee cap. For legacy
	// and access list transactions both caps alias the gas price, so the
	// check is trivially true.
	if tx.inner.gasTipCap().Cmp(tx.inner.gasFeeCap()) > 0 {
		return withTxContext(fmt.Errorf("%w: tip %s, feeCap %s", ErrTipAboveFeeCap,
			tx.inner.gasTipCap(), tx.inner.gasFeeCap()), tx)
	}
	if rules != nil && rules.IsShanghai && tx.To() == nil && len(tx.Data()) > params.MaxInitCodeSize {
		return withTxContext(fmt.Errorf("%w: code size %v, limit %v", ErrMaxInitCodeSizeExceeded,
			len(tx.Data()), params.MaxInitCodeSize), tx)
	}
	if tx.Type() == BlobTxType {
		if err := checkBlobFields(tx); err != nil {
			return withTxContext(err, tx)
		}
	}
	return nil
}

// checkQuantities rejects quantity fields wider than 256 bits, and gas cost
// products that overflow them.
func checkQuantities(tx *Transaction) error {
	for _, q := range []*big.Int{
		tx.inner.value(),
		tx.inner.gasPrice(),
		tx.inner.gasTipCap(),
		tx.inner.gasFeeCap(),
		tx.inner.chainID(),
	} {
		if q != nil && q.BitLen() > 256 {
			return ErrFieldOverflow
		}
	}
	// gas * feeCap must fit as well, mirroring the balance check done at
	// execution time.
	product := new(big.Int).Mul(tx.inner.gasFeeCap(), new(big.Int).SetUint64(tx.inner.gas()))
	if product.BitLen() > 256 {
		return ErrFieldOverflow
	}
	return nil
}

// checkBlobFields validates the blob-specific invariants of a blob
// transaction: a recipient must be present, the number of blobs must fit the
// data gas allowance, and every versioned hash must carry a known version.
func checkBlobFields(tx *Transaction) error {
	if tx.To() == nil {
		return ErrBlobCreate
	}
	hashes := tx.BlobHashes()
	if len(hashes) == 0 {
		return ErrNoBlobs
	}
	if len(hashes) > params.MaxBlobsPerTransaction {
		return fmt.Errorf("%w: have %d, permitted %d", ErrTooManyBlobs,
			len(hashes), params.MaxBlobsPerTransaction)
	}
	// Overflow guard for the data gas product on 32-bit builds.
	if hi, _ := bits.Mul64(uint64(len(hashes)), params.BlobTxDataGasPerBlob); hi != 0 {
		return ErrFieldOverflow
	}
	for i, hash := range hashes {
		if hash[0] != params.BlobTxHashVersion {
			return fmt.Errorf("%w: blob %d has version %#x, want %#x", ErrBlobHashVersion,
				i, hash[0], params.BlobTxHashVersion)
		}
	}
	return nil
}

// withTxContext annotates validation errors with the identifying fields of
// the offending transaction.
func withTxContext(err error, tx *Transaction) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w (txtype %d nonce %d gas %d)", err, tx.Type(), tx.Nonce(), tx.Gas())
}

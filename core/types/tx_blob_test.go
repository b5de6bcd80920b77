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
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/meridianchain/go-meridian/common"
	"github.com/meridianchain/go-meridian/crypto/kzg4844"
)

// emptyBlob is a valid blob consisting of all-zero field elements.
var emptyBlob = new(kzg4844.Blob)

func newBlobTxWithSidecar(t *testing.T) *Transaction {
	t.Helper()
	commitment, err := kzg4844.BlobToCommitment(emptyBlob)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := kzg4844.ComputeBlobProof(emptyBlob, commitment)
	if err != nil {
		t.Fatal(err)
	}
	sidecar := &BlobTxSidecar{
		Blobs:       []kzg4844.Blob{*emptyBlob},
		Commitments: []kzg4844.Commitment{commitment},
		Proof:       proof,
	}
	to := common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	return NewTx(&BlobTx{
		ChainID:    uint256.MustFromBig(testChainID),
		Nonce:      5,
		GasTipCap:  uint256.NewInt(5),
		GasFeeCap:  uint256.NewInt(22),
		Gas:        25000,
		To:         &to,
		Value:      uint256.NewInt(99),
		BlobFeeCap: uint256.NewInt(15),
		BlobHashes: sidecar.BlobHashes(),
		Sidecar:    sidecar,
	})
}

func TestBlobTxWrapperRoundTrip(t *testing.T) {
	signer := NewCancunSigner(testChainID)
	signed, err := SignTx(newBlobTxWithSidecar(t), signer, testKey)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := signed.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if enc[0] != BlobTxType {
		t.Fatalf("wrong type prefix %#x", enc[0])
	}

	parsed := new(Transaction)
	if err := parsed.UnmarshalBinary(enc); err != nil {
		t.Fatal(err)
	}
	sc := parsed.BlobTxSidecar()
	if sc == nil {
		t.Fatal("sidecar lost in round trip")
	}
	if len(sc.Blobs) != 1 || len(sc.Commitments) != 1 {
		t.Fatalf("wrong sidecar shape: %d blobs, %d commitments", len(sc.Blobs), len(sc.Commitments))
	}
	if parsed.Hash() != signed.Hash() {
		t.Fatal("hash changed in round trip")
	}
	reenc, err := parsed.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(enc, reenc) {
		t.Fatal("wrapper encoding not stable")
	}
	from, err := Sender(signer, parsed)
	if err != nil {
		t.Fatal(err)
	}
	if from != testAddr {
		t.Fatalf("wrong sender %v", from)
	}
}

func TestBlobTxHashExcludesSidecar(t *testing.T) {
	signer := NewCancunSigner(testChainID)
	signed, err := SignTx(newBlobTxWithSidecar(t), signer, testKey)
	if err != nil {
		t.Fatal(err)
	}
	stripped := signed.WithoutBlobTxSidecar()
	if stripped.BlobTxSidecar() != nil {
		t.Fatal("sidecar still present")
	}
	if stripped.Hash() != signed.Hash() {
		t.Fatal("hash depends on sidecar")
	}
	// Signing hash must not change either.
	if signer.Hash(stripped) != signer.Hash(signed) {
		t.Fatal("signing hash depends on sidecar")
	}
	// The minimal encoding must be smaller and sidecar-free.
	minEnc, err := stripped.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	fullEnc, err := signed.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(minEnc) >= len(fullEnc) {
		t.Fatal("minimal encoding not smaller than wrapper")
	}
	parsed := new(Transaction)
	if err := parsed.UnmarshalBinary(minEnc); err != nil {
		t.Fatal(err)
	}
	if parsed.BlobTxSidecar() != nil {
		t.Fatal("minimal encoding produced a sidecar")
	}

	// Size accounts for the blobs.
	if signed.Size() <= stripped.Size() {
		t.Fatal("size does not account for sidecar")
	}
}

// stubVerifier lets tests observe and force the outcome of aggregate proof
// verification.
type stubVerifier struct {
	err    error
	called bool
}

func (v *stubVerifier) VerifyAggregate(blobs []kzg4844.Blob, commitments []kzg4844.Commitment, proof kzg4844.Proof) error {
	v.called = true
	return v.err
}

func TestSidecarValidate(t *testing.T) {
	tx := newBlobTxWithSidecar(t)
	sc := tx.BlobTxSidecar()
	hashes := tx.BlobHashes()

	// Structural check with the built-in verifier.
	if err := sc.Validate(hashes, kzg4844.NewVerifier()); err != nil {
		t.Fatalf("valid sidecar rejected: %v", err)
	}
	// Without a verifier only the shape is checked.
	if err := sc.Validate(hashes, nil); err != nil {
		t.Fatalf("valid sidecar rejected without verifier: %v", err)
	}

	// The injected verifier is consulted and its verdict is final.
	stub := &stubVerifier{err: errors.New("bad proof")}
	if err := sc.Validate(hashes, stub); err == nil || !stub.called {
		t.Fatalf("verifier verdict ignored: err=%v called=%v", err, stub.called)
	}

	// Count mismatch.
	if err := sc.Validate(nil, nil); !errors.Is(err, ErrBadWrapper) {
		t.Fatalf("want ErrBadWrapper, got %v", err)
	}
	// Commitment/hash mismatch.
	wrong := []common.Hash{{0x01, 0xff}}
	if err := sc.Validate(wrong, nil); !errors.Is(err, ErrBadWrapper) {
		t.Fatalf("want ErrBadWrapper, got %v", err)
	}
}

func TestBlobTxDataGas(t *testing.T) {
	tx := newBlobTxWithSidecar(t)
	if got := tx.DataGas(); got != 1<<17 {
		t.Fatalf("wrong data gas %d", got)
	}
	if tx.DataGasFeeCap().Cmp(uint256.NewInt(15).ToBig()) != 0 {
		t.Fatalf("wrong data gas fee cap %v", tx.DataGasFeeCap())
	}
	// Non-blob transactions carry no data gas.
	legacy := newTestTxs()[0]
	if legacy.DataGas() != 0 || legacy.DataGasFeeCap() != nil {
		t.Fatal("legacy tx reports data gas")
	}
}

func TestBlobTxDecodeErrors(t *testing.T) {
	// Truncated payload.
	parsed := new(Transaction)
	if err := parsed.UnmarshalBinary([]byte{BlobTxType}); err == nil {
		t.Fatal("decoded empty blob tx payload")
	}
	// Unknown type byte.
	if err := parsed.UnmarshalBinary([]byte{0x03, 0xc0}); !errors.Is(err, ErrTxTypeNotSupported) {
		t.Fatalf("want ErrTxTypeNotSupported, got %v", err)
	}
}

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

// Package kzg4844 implements the KZG crypto for data blob transactions.
package kzg4844

import (
	"errors"
	"hash"
	"sync"

	gokzg4844 "github.com/crate-crypto/go-kzg-4844"
	"github.com/meridianchain/go-meridian/common/hexutil"
)

// Blob represents a 4096 element field vector: the raw data carried by a
// blob transaction's network wrapper.
type Blob [131072]byte

// UnmarshalJSON parses a blob in hex syntax.
func (b *Blob) UnmarshalJSON(input []byte) error {
	return hexutil.UnmarshalFixedJSON("Blob", input, b[:])
}

// MarshalText returns the hex representation of b.
func (b Blob) MarshalText() ([]byte, error) {
	return hexutil.Bytes(b[:]).MarshalText()
}

// Commitment is a serialized commitment to a polynomial.
type Commitment [48]byte

// UnmarshalJSON parses a commitment in hex syntax.
func (c *Commitment) UnmarshalJSON(input []byte) error {
	return hexutil.UnmarshalFixedJSON("Commitment", input, c[:])
}

// MarshalText returns the hex representation of c.
func (c Commitment) MarshalText() ([]byte, error) {
	return hexutil.Bytes(c[:]).MarshalText()
}

// Proof is a serialized commitment to the quotient polynomial.
type Proof [48]byte

// UnmarshalJSON parses a proof in hex syntax.
func (p *Proof) UnmarshalJSON(input []byte) error {
	return hexutil.UnmarshalFixedJSON("Proof", input, p[:])
}

// MarshalText returns the hex representation of p.
func (p Proof) MarshalText() ([]byte, error) {
	return hexutil.Bytes(p[:]).MarshalText()
}

// Point is a BLS field element.
type Point [32]byte

// Claim is a claimed evaluation value in a specific point.
type Claim [32]byte

// Verifier abstracts the proof system consumed when accepting blob
// transactions in network-wrapper form. Implementations decide whether the
// aggregate proof binds the given blobs to the given commitments. The
// default backend is gokzgVerifier; tests substitute fixed-verdict stubs.
type Verifier interface {
	VerifyAggregate(blobs []Blob, commitments []Commitment, proof Proof) error
}

// context is the crypto primitive pre-seeded with the trusted setup parameters.
var (
	context     *gokzg4844.Context
	contextOnce sync.Once
)

// initContext initializes the KZG library with the provided trusted setup.
func initContext() {
	ctx, err := gokzg4844.NewContext4096Secure()
	if err != nil {
		panic(err)
	}
	context = ctx
}

// BlobToCommitment creates a small commitment out of a data blob.
func BlobToCommitment(blob *Blob) (Commitment, error) {
	contextOnce.Do(initContext)

	commitment, err := context.BlobToKZGCommitment((*gokzg4844.Blob)(blob), 0)
	if err != nil {
		return Commitment{}, err
	}
	return (Commitment)(commitment), nil
}

// ComputeProof computes the KZG proof at the given point for the polynomial
// represented by the blob.
func ComputeProof(blob *Blob, point Point) (Proof, Claim, error) {
	contextOnce.Do(initContext)

	proof, claim, err := context.ComputeKZGProof((*gokzg4844.Blob)(blob), (gokzg4844.Scalar)(point), 0)
	if err != nil {
		return Proof{}, Claim{}, err
	}
	return (Proof)(proof), (Claim)(claim), nil
}

// VerifyProof verifies the KZG proof that the polynomial represented by the
// blob evaluated at the given point is the claimed value.
func VerifyProof(commitment Commitment, point Point, claim Claim, proof Proof) error {
	contextOnce.Do(initContext)

	return context.VerifyKZGProof((gokzg4844.KZGCommitment)(commitment), (gokzg4844.Scalar)(point), (gokzg4844.Scalar)(claim), (gokzg4844.KZGProof)(proof))
}

// ComputeBlobProof returns the KZG proof that is used to verify the blob against
// the commitment.
func ComputeBlobProof(blob *Blob, commitment Commitment) (Proof, error) {
	contextOnce.Do(initContext)

	proof, err := context.ComputeBlobKZGProof((*gokzg4844.Blob)(blob), (gokzg4844.KZGCommitment)(commitment), 0)
	if err != nil {
		return Proof{}, err
	}
	return (Proof)(proof), nil
}

// VerifyBlobProof verifies that the blob data corresponds to the provided commitment.
func VerifyBlobProof(blob *Blob, commitment Commitment, proof Proof) error {
	contextOnce.Do(initContext)

	return context.VerifyBlobKZGProof((*gokzg4844.Blob)(blob), (gokzg4844.KZGCommitment)(commitment), (gokzg4844.KZGProof)(proof))
}

// gokzgVerifier implements Verifier on the library context. Aggregate proofs
// over multiple blobs are not expressible through the batch API, so a single
// blob is required; multi-blob wrappers need an external verifier wired in.
type gokzgVerifier struct{}

// NewVerifier returns the built-in proof verifier.
func NewVerifier() Verifier { return gokzgVerifier{} }

func (gokzgVerifier) VerifyAggregate(blobs []Blob, commitments []Commitment, proof Proof) error {
	if len(blobs) != len(commitments) {
		return errors.New("kzg4844: blob/commitment count mismatch")
	}
	if len(blobs) != 1 {
		return errors.New("kzg4844: aggregate verification across multiple blobs requires an external verifier")
	}
	return VerifyBlobProof(&blobs[0], commitments[0], proof)
}

// CalcBlobHashV1 calculates the 'versioned blob hash' of a commitment.
// The given hasher must be a sha256 hash instance, otherwise the result will
// be invalid!
func CalcBlobHashV1(hasher hash.Hash, commit *Commitment) (vh [32]byte) {
	if hasher.Size() != 32 {
		panic("wrong hash size")
	}
	hasher.Reset()
	hasher.Write(commit[:])
	hasher.Sum(vh[:0])
	vh[0] = 0x01 // version

	return vh
}

// IsValidVersionedHash checks that h is a structurally valid versioned blob hash.
func IsValidVersionedHash(h []byte) bool {
	return len(h) == 32 && h[0] == 0x01
}

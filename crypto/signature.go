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

package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decred_ecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/meridianchain/go-meridian/common"
)

var (
	// ErrInvalidSignature is returned when signature components are malformed,
	// out of range, or carry an unusable recovery identifier.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrSignatureLength is returned when a wire signature is neither the
	// 65-byte legacy layout nor the 64-byte compact layout.
	ErrSignatureLength = errors.New("invalid signature length")
)

// Ecrecover returns the uncompressed public key that created the given signature.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	pub, err := sigToPub(hash, sig)
	if err != nil {
		return nil, err
	}
	bytes := pub.SerializeUncompressed()
	return bytes, err
}

func sigToPub(hash, sig []byte) (*secp256k1.PublicKey, error) {
	if len(sig) != SignatureLength {
		return nil, ErrSignatureLength
	}
	// Convert to secp256k1 input format with 'recovery id' v at the beginning.
	btcsig := make([]byte, SignatureLength)
	btcsig[0] = sig[RecoveryIDOffset] + 27
	copy(btcsig[1:], sig)

	pub, _, err := decred_ecdsa.RecoverCompact(btcsig, hash)
	return pub, err
}

// SigToPub returns the public key that created the given signature.
func SigToPub(hash, sig []byte) (*ecdsa.PublicKey, error) {
	pub, err := sigToPub(hash, sig)
	if err != nil {
		return nil, err
	}
	// We need to explicitly set the curve here, because we're wrapping
	// the original curve to add (un-)marshalling
	return &ecdsa.PublicKey{
		Curve: S256(),
		X:     pub.X(),
		Y:     pub.Y(),
	}, nil
}

// RecoverPublicKey recovers the 64-byte uncompressed public key (without the
// 0x04 prefix byte) from the signature triple over the given message hash.
// The recovery identifier v is accepted in any of its historical encodings
// and normalized via RecoveryID first.
func RecoverPublicKey(hash []byte, v, r, s *big.Int) ([]byte, error) {
	recid, err := RecoveryID(v)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, SignatureLength)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	sig[RecoveryIDOffset] = recid

	pub, err := Ecrecover(hash, sig)
	if err != nil {
		return nil, err
	}
	// Strip the uncompressed-point prefix byte.
	return pub[1:], nil
}

// Sign calculates an ECDSA signature.
//
// This function is susceptible to chosen plaintext attacks that can leak
// information about the private key that is used for signing. Callers must
// be aware that the given hash cannot be chosen by an adversary. Common
// solution is to hash any input before calculating the signature.
//
// The produced signature is in the [R || S || V] format where V is 0 or 1.
func Sign(hash []byte, prv *ecdsa.PrivateKey) ([]byte, error) {
	if len(hash) != DigestLength {
		return nil, fmt.Errorf("hash is required to be exactly %d bytes (%d)", DigestLength, len(hash))
	}
	if prv.Curve != S256() {
		return nil, errors.New("private key curve is not secp256k1")
	}
	var priv secp256k1.PrivateKey
	if overflow := priv.Key.SetByteSlice(prv.D.Bytes()); overflow || priv.Key.IsZero() {
		return nil, errors.New("invalid private key")
	}
	defer priv.Zero()
	sig := decred_ecdsa.SignCompact(&priv, hash, false) // ref uncompressed pubkey
	// Convert to Ethereum signature format with 'recovery id' v at the end.
	v := sig[0] - 27
	copy(sig, sig[1:])
	sig[RecoveryIDOffset] = v
	return sig, nil
}

// SignRSV signs hash and returns the signature as separate r, s, v values.
// If chainID is non-nil, v carries the EIP-155 encoding recid + 35 + 2*chainID;
// otherwise the legacy 27/28 convention is used. The recovery identifier
// stored in v always derives from the canonical 0/1 value.
func SignRSV(hash []byte, prv *ecdsa.PrivateKey, chainID *big.Int) (r, s, v *big.Int, err error) {
	sig, err := Sign(hash, prv)
	if err != nil {
		return nil, nil, nil, err
	}
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetUint64(uint64(sig[RecoveryIDOffset]))
	if chainID != nil && chainID.Sign() != 0 {
		// v = recid + 35 + 2*chainID
		v.Add(v, common.Big35)
		v.Add(v, new(big.Int).Lsh(chainID, 1))
	} else {
		v.Add(v, common.Big27)
	}
	return r, s, v, nil
}

// RecoveryID normalizes any of the historical encodings of the recovery
// identifier onto the canonical 0/1 value:
//
//   - 27/28: the legacy pre-EIP-155 convention, offset removed
//   - 0/1: already canonical
//   - anything >= 35: EIP-155 chain-bound encoding; the parity is extracted
//     as (v - 35) mod 2, so the chain id itself is not needed
//
// Values strictly inside (1, 27) or (28, 35) are passed through unchanged
// and then rejected. This pass-through band is inherited behavior kept for
// bit-exact compatibility with existing signers; do not collapse it into the
// EIP-155 branch.
func RecoveryID(v *big.Int) (byte, error) {
	r := normalizeRecoveryID(v)
	if r != 0 && r != 1 {
		return 0, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, r)
	}
	return byte(r), nil
}

func normalizeRecoveryID(v *big.Int) uint64 {
	if v.IsUint64() {
		switch u := v.Uint64(); {
		case u > 28 && u < 35:
			return u
		case u > 1 && u < 27:
			return u
		case u == 27 || u == 28:
			return u - 27
		case u == 0 || u == 1:
			return u
		}
	}
	// EIP-155: v = recid + 35 + 2*chainID. The parity of v - 35 is the
	// recovery id, no chain id required.
	d := new(big.Int).Sub(v, common.Big35)
	return uint64(d.Bit(0))
}

// EncodeRPCSignature encodes the signature triple into the conventional
// [R || S || V] wire layout used by eth_sign style APIs. R and S are
// left-padded to 32 bytes and the validated v is appended verbatim, so the
// result is 65 bytes for all single-byte v domains (0/1, 27/28, small
// chain-bound values) and grows for v values needing more bytes. The
// decoder's below-27 shift recovers the raw 0/1 form.
func EncodeRPCSignature(v, r, s *big.Int) ([]byte, error) {
	if _, err := RecoveryID(v); err != nil {
		return nil, err
	}
	vbytes := v.Bytes()
	if len(vbytes) == 0 {
		vbytes = []byte{0}
	}
	sig := make([]byte, 64, 64+len(vbytes))
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	return append(sig, vbytes...), nil
}

// EncodeCompactSignature encodes the signature triple into the 64-byte
// EIP-2098 compact layout, folding the recovery parity into the top bit of s.
func EncodeCompactSignature(v, r, s *big.Int) ([]byte, error) {
	recid, err := RecoveryID(v)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	sig[32] |= recid << 7
	return sig, nil
}

// DecodeRPCSignature decodes a wire signature in either the 65-byte legacy
// layout or the 64-byte EIP-2098 compact layout into its r, s, v components.
// A v below 27 is shifted into the 27/28 domain, covering both historical
// eth_sign response conventions. Inputs of any other length fail with
// ErrSignatureLength.
func DecodeRPCSignature(sig []byte) (v, r, s *big.Int, err error) {
	switch len(sig) {
	case SignatureLength:
		r = new(big.Int).SetBytes(sig[:32])
		s = new(big.Int).SetBytes(sig[32:64])
		v = new(big.Int).SetUint64(uint64(sig[RecoveryIDOffset]))
	case SignatureLength - 1:
		// EIP-2098: the parity bit lives in the top bit of s.
		r = new(big.Int).SetBytes(sig[:32])
		sbytes := common.CopyBytes(sig[32:])
		v = new(big.Int).SetUint64(uint64(sbytes[0] >> 7))
		sbytes[0] &= 0x7f
		s = new(big.Int).SetBytes(sbytes)
	default:
		return nil, nil, nil, fmt.Errorf("%w: %d", ErrSignatureLength, len(sig))
	}
	if v.Cmp(common.Big27) < 0 {
		v.Add(v, common.Big27)
	}
	return v, r, s, nil
}

// ValidSignature reports whether the r, s, v components form a usable
// signature: r and s must be exactly 32 bytes, nonzero and below the curve
// order, v must normalize to 0 or 1, and unless enforceLowS is disabled, s
// must lie in the lower half of the order (non-malleable form).
func ValidSignature(v *big.Int, r, s []byte, enforceLowS bool) bool {
	if len(r) != 32 || len(s) != 32 {
		return false
	}
	recid, err := RecoveryID(v)
	if err != nil {
		return false
	}
	return ValidateSignatureValues(recid, new(big.Int).SetBytes(r), new(big.Int).SetBytes(s), enforceLowS)
}

// VerifySignature checks that the given public key created signature over hash.
// The public key should be in compressed (33 bytes) or uncompressed (65 bytes) format.
// The signature should have the 64 byte [R || S] format.
func VerifySignature(pubkey, hash, signature []byte) bool {
	if len(signature) != 64 {
		return false
	}
	var r, s secp256k1.ModNScalar
	if r.SetByteSlice(signature[:32]) {
		return false // overflow
	}
	if s.SetByteSlice(signature[32:]) {
		return false
	}
	sig := decred_ecdsa.NewSignature(&r, &s)
	key, err := secp256k1.ParsePubKey(pubkey)
	if err != nil {
		return false
	}
	// Reject malleable signatures. libsecp256k1 does this check but decred doesn't.
	if s.IsOverHalfOrder() {
		return false
	}
	return sig.Verify(hash, key)
}

// DecompressPubkey parses a public key in the 33-byte compressed format.
func DecompressPubkey(pubkey []byte) (*ecdsa.PublicKey, error) {
	if len(pubkey) != 33 {
		return nil, errors.New("invalid compressed public key length")
	}
	key, err := secp256k1.ParsePubKey(pubkey)
	if err != nil {
		return nil, err
	}
	// We need to explicitly set the curve here, because we're wrapping
	// the original curve to add (un-)marshalling
	return &ecdsa.PublicKey{
		Curve: S256(),
		X:     key.X(),
		Y:     key.Y(),
	}, nil
}

// CompressPubkey encodes a public key to the 33-byte compressed format. The
// provided PublicKey must be valid.
func CompressPubkey(pubkey *ecdsa.PublicKey) []byte {
	var x, y secp256k1.FieldVal
	x.SetByteSlice(pubkey.X.Bytes())
	y.SetByteSlice(pubkey.Y.Bytes())
	return secp256k1.NewPublicKey(&x, &y).SerializeCompressed()
}

// S256 returns an instance of the secp256k1 curve.
func S256() EllipticCurve {
	return btCurve{secp256k1.S256()}
}

type btCurve struct {
	*secp256k1.KoblitzCurve
}

// Marshal converts a point given as (x, y) into a byte slice.
func (curve btCurve) Marshal(x, y *big.Int) []byte {
	byteLen := (curve.Params().BitSize + 7) / 8

	ret := make([]byte, 1+2*byteLen)
	ret[0] = 4 // uncompressed point

	x.FillBytes(ret[1 : 1+byteLen])
	y.FillBytes(ret[1+byteLen : 1+2*byteLen])

	return ret
}

// Unmarshal converts a point, serialized by Marshal, into an x, y pair. On
// error, x = nil.
func (curve btCurve) Unmarshal(data []byte) (x, y *big.Int) {
	byteLen := (curve.Params().BitSize + 7) / 8
	if len(data) != 1+2*byteLen {
		return nil, nil
	}
	if data[0] != 4 { // uncompressed form
		return nil, nil
	}
	x = new(big.Int).SetBytes(data[1 : 1+byteLen])
	y = new(big.Int).SetBytes(data[1+byteLen:])
	return
}

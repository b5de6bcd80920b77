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
	"encoding/json"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/meridianchain/go-meridian/common"
	"github.com/meridianchain/go-meridian/crypto"
)

var (
	testKey, _  = crypto.HexToECDSA("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	testAddr    = crypto.PubkeyToAddress(testKey.PublicKey)
	testChainID = big.NewInt(1337)
)

func newTestTxs() []*Transaction {
	to := common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	return []*Transaction{
		NewTx(&LegacyTx{
			Nonce:    3,
			GasPrice: big.NewInt(1),
			Gas:      25000,
			To:       &to,
			Value:    big.NewInt(10),
			Data:     common.FromHex("5544"),
		}),
		NewTx(&AccessListTx{
			ChainID:  testChainID,
			Nonce:    1,
			GasPrice: big.NewInt(500),
			Gas:      1000000,
			To:       &to,
			Value:    big.NewInt(1),
			AccessList: AccessList{{
				Address:     common.HexToAddress("0x0000000000000000000000000000000000000001"),
				StorageKeys: []common.Hash{common.HexToHash("0x01"), {}},
			}},
		}),
		NewTx(&DynamicFeeTx{
			ChainID:   testChainID,
			Nonce:     7,
			GasTipCap: big.NewInt(10),
			GasFeeCap: big.NewInt(30),
			Gas:       123457,
			To:        &to,
			Value:     big.NewInt(42),
			Data:      common.FromHex("deadbeef"),
		}),
		NewTx(&BlobTx{
			ChainID:    uint256.MustFromBig(testChainID),
			Nonce:      5,
			GasTipCap:  uint256.NewInt(5),
			GasFeeCap:  uint256.NewInt(22),
			Gas:        25000,
			To:         &to,
			Value:      uint256.NewInt(99),
			BlobFeeCap: uint256.NewInt(15),
			BlobHashes: []common.Hash{{1}},
		}),
	}
}

// TestEIP155SigningHash checks the signing hash of the example transaction
// given in EIP-155 against the reference value.
func TestEIP155SigningHash(t *testing.T) {
	to := common.HexToAddress("0x3535353535353535353535353535353535353535")
	tx := &LegacyTx{
		Nonce:    9,
		GasPrice: new(big.Int).Mul(big.NewInt(20), big.NewInt(1e9)),
		Gas:      21000,
		To:       &to,
		Value:    new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	}
	want := common.HexToHash("0xdaf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53")
	if h := tx.sigHash(big.NewInt(1)); h != want {
		t.Fatalf("wrong EIP-155 signing hash: %v", h)
	}
}

// TestEIP155SigningVector signs the EIP-155 example transaction with the
// example key and checks the resulting v, r, s against the reference values.
func TestEIP155SigningVector(t *testing.T) {
	key, _ := crypto.HexToECDSA("4646464646464646464646464646464646464646464646464646464646464646")
	to := common.HexToAddress("0x3535353535353535353535353535353535353535")
	tx := NewTx(&LegacyTx{
		Nonce:    9,
		GasPrice: new(big.Int).Mul(big.NewInt(20), big.NewInt(1e9)),
		Gas:      21000,
		To:       &to,
		Value:    new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	})
	signer := NewEIP155Signer(big.NewInt(1))
	signed, err := SignTx(tx, signer, key)
	if err != nil {
		t.Fatal(err)
	}
	v, r, s := signed.RawSignatureValues()
	wantR, _ := new(big.Int).SetString("18515461264373351373200002665853028612451056578545711640558177340181847433846", 10)
	wantS, _ := new(big.Int).SetString("46948507304638947509940763649030358759909902576025900602547168820602576006531", 10)
	if v.Uint64() != 37 {
		t.Errorf("wrong v: got %d, want 37", v)
	}
	if r.Cmp(wantR) != 0 {
		t.Errorf("wrong r: got %d", r)
	}
	if s.Cmp(wantS) != 0 {
		t.Errorf("wrong s: got %d", s)
	}
	from, err := Sender(signer, signed)
	if err != nil {
		t.Fatal(err)
	}
	if want := crypto.PubkeyToAddress(key.PublicKey); from != want {
		t.Errorf("wrong sender: got %v, want %v", from, want)
	}
}

func TestTransactionEncodeDecode(t *testing.T) {
	signer := LatestSignerForChainID(testChainID)
	for i, tx := range newTestTxs() {
		signed, err := SignTx(tx, signer, testKey)
		if err != nil {
			t.Fatalf("tx %d: %v", i, err)
		}
		enc, err := signed.MarshalBinary()
		if err != nil {
			t.Fatalf("tx %d: %v", i, err)
		}
		if signed.Type() != LegacyTxType && enc[0] != signed.Type() {
			t.Fatalf("tx %d: missing type prefix in encoding", i)
		}
		parsed := new(Transaction)
		if err := parsed.UnmarshalBinary(enc); err != nil {
			t.Fatalf("tx %d: decode failed: %v", i, err)
		}
		if parsed.Hash() != signed.Hash() {
			t.Fatalf("tx %d: hash changed after round trip", i)
		}
		reenc, err := parsed.MarshalBinary()
		if err != nil {
			t.Fatalf("tx %d: %v", i, err)
		}
		if !bytes.Equal(enc, reenc) {
			t.Fatalf("tx %d: encoding not stable:\n  %x\n  %x", i, enc, reenc)
		}
		from, err := Sender(signer, parsed)
		if err != nil {
			t.Fatalf("tx %d: sender recovery failed: %v", i, err)
		}
		if from != testAddr {
			t.Fatalf("tx %d: wrong sender %v", i, from)
		}
	}
}

func TestTransactionRLPStream(t *testing.T) {
	signer := LatestSignerForChainID(testChainID)
	// Encode two transactions back to back and decode them from the stream.
	var stream bytes.Buffer
	txs := newTestTxs()[:2]
	for i := range txs {
		signed, err := SignTx(txs[i], signer, testKey)
		if err != nil {
			t.Fatal(err)
		}
		if err := signed.EncodeRLP(&stream); err != nil {
			t.Fatal(err)
		}
		txs[i] = signed
	}
	rest := stream.Bytes()
	for i := range txs {
		var err error
		parsed := new(Transaction)
		rest, err = parsed.DecodeRLP(rest)
		if err != nil {
			t.Fatalf("tx %d: %v", i, err)
		}
		if parsed.Hash() != txs[i].Hash() {
			t.Fatalf("tx %d: hash mismatch", i)
		}
	}
	if len(rest) != 0 {
		t.Fatalf("stream has %d trailing bytes", len(rest))
	}
}

func TestUnsignedTransactionSender(t *testing.T) {
	tx := newTestTxs()[2]
	if tx.IsSigned() {
		t.Fatal("fresh transaction reports as signed")
	}
	if _, err := SenderPubkey(LatestSignerForChainID(testChainID), tx); err != ErrUnsigned {
		t.Fatalf("want ErrUnsigned, got %v", err)
	}
}

func TestSenderPubkeyMatchesSender(t *testing.T) {
	signer := LatestSignerForChainID(testChainID)
	for i, tx := range newTestTxs() {
		signed, err := SignTx(tx, signer, testKey)
		if err != nil {
			t.Fatal(err)
		}
		pub, err := SenderPubkey(signer, signed)
		if err != nil {
			t.Fatalf("tx %d: %v", i, err)
		}
		var addr common.Address
		copy(addr[:], crypto.Keccak256(pub)[12:])
		if addr != testAddr {
			t.Fatalf("tx %d: pubkey does not match sender", i)
		}
	}
}

func TestSenderCacheInvalidation(t *testing.T) {
	signer := LatestSignerForChainID(testChainID)
	signed, err := SignTx(newTestTxs()[0], signer, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Sender(signer, signed); err != nil {
		t.Fatal(err)
	}
	if signed.from.Load() == nil {
		t.Fatal("sender not cached")
	}
	// A different signer must not reuse the cached sender.
	other := NewEIP155Signer(big.NewInt(99))
	if _, err := Sender(other, signed); err == nil {
		t.Fatal("expected chain id mismatch error")
	}
}

func TestChainIdMismatch(t *testing.T) {
	signer := LatestSignerForChainID(testChainID)
	signed, err := SignTx(newTestTxs()[2], signer, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Sender(LatestSignerForChainID(big.NewInt(2)), signed); err == nil {
		t.Fatal("expected ErrInvalidChainId")
	}
}

func TestTransactionImmutability(t *testing.T) {
	data := []byte{1, 2, 3}
	inner := &LegacyTx{Nonce: 1, GasPrice: big.NewInt(5), Gas: 21000, Value: big.NewInt(1), Data: data}
	tx := NewTx(inner)

	// Mutating the original input must not affect the transaction.
	data[0] = 0xff
	inner.Nonce = 99
	if tx.Nonce() != 1 {
		t.Fatal("nonce changed through original txdata")
	}
	if tx.Data()[0] != 1 {
		t.Fatal("payload changed through original slice")
	}

	// Signing returns a new transaction, the unsigned one stays unsigned.
	signer := HomesteadSigner{}
	signed, err := SignTx(tx, signer, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if tx.IsSigned() {
		t.Fatal("signing mutated the original transaction")
	}
	if !signed.IsSigned() {
		t.Fatal("signed transaction reports unsigned")
	}
}

func TestTransactionJSONRoundTrip(t *testing.T) {
	signer := LatestSignerForChainID(testChainID)
	for i, tx := range newTestTxs() {
		signed, err := SignTx(tx, signer, testKey)
		if err != nil {
			t.Fatal(err)
		}
		enc, err := json.Marshal(signed)
		if err != nil {
			t.Fatalf("tx %d: %v", i, err)
		}
		parsed := new(Transaction)
		if err := json.Unmarshal(enc, parsed); err != nil {
			t.Fatalf("tx %d: %v\njson: %s", i, err, enc)
		}
		if parsed.Hash() != signed.Hash() {
			t.Fatalf("tx %d: hash mismatch after JSON round trip", i)
		}
	}
}

func TestEffectiveGasTip(t *testing.T) {
	tx := NewTx(&DynamicFeeTx{
		ChainID:   testChainID,
		GasTipCap: big.NewInt(10),
		GasFeeCap: big.NewInt(30),
		Gas:       21000,
		Value:     big.NewInt(0),
	})
	// baseFee + tip below feeCap: full tip.
	if tip := tx.EffectiveGasTipValue(big.NewInt(15)); tip.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("wrong tip: %v", tip)
	}
	// tip squeezed by the fee cap.
	if tip := tx.EffectiveGasTipValue(big.NewInt(25)); tip.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("wrong squeezed tip: %v", tip)
	}
	// base fee above the cap returns an error.
	if _, err := tx.EffectiveGasTip(big.NewInt(40)); err != ErrGasFeeCapTooLow {
		t.Fatalf("want ErrGasFeeCapTooLow, got %v", err)
	}
}

func TestProtectedReporting(t *testing.T) {
	to := common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	inner := &LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 21000, To: &to, Value: big.NewInt(1)}

	homestead, err := SignTx(NewTx(inner), HomesteadSigner{}, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if homestead.Protected() {
		t.Fatal("homestead signature reports protected")
	}

	eip155, err := SignTx(NewTx(inner), NewEIP155Signer(testChainID), testKey)
	if err != nil {
		t.Fatal(err)
	}
	if !eip155.Protected() {
		t.Fatal("EIP-155 signature reports unprotected")
	}
	if eip155.ChainId().Cmp(testChainID) != 0 {
		t.Fatalf("wrong chain id: %v", eip155.ChainId())
	}
}

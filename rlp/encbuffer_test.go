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

package rlp

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestEncoderBuffer(t *testing.T) {
	var w bytes.Buffer
	buf := NewEncoderBuffer(&w)

	// Nested lists with a single byte payload.
	outer := buf.List()
	inner := buf.List()
	buf.Write([]byte{0})
	buf.ListEnd(inner)
	buf.ListEnd(outer)
	if err := buf.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := w.Bytes(), unhex("C2C100"); !bytes.Equal(got, want) {
		t.Fatalf("wrong encoding: got %X, want %X", got, want)
	}
}

func TestEncoderBufferValues(t *testing.T) {
	tests := []struct {
		write  func(EncoderBuffer)
		output string
	}{
		{func(w EncoderBuffer) { w.WriteUint64(0) }, "80"},
		{func(w EncoderBuffer) { w.WriteUint64(1) }, "01"},
		{func(w EncoderBuffer) { w.WriteUint64(127) }, "7F"},
		{func(w EncoderBuffer) { w.WriteUint64(128) }, "8180"},
		{func(w EncoderBuffer) { w.WriteUint64(1024) }, "820400"},
		{func(w EncoderBuffer) { w.WriteBigInt(nil) }, "80"},
		{func(w EncoderBuffer) { w.WriteBigInt(big.NewInt(0)) }, "80"},
		{func(w EncoderBuffer) { w.WriteBigInt(big.NewInt(0xFFFFFF)) }, "83FFFFFF"},
		{func(w EncoderBuffer) { w.WriteUint256(nil) }, "80"},
		{func(w EncoderBuffer) { w.WriteUint256(uint256.NewInt(1024)) }, "820400"},
		{func(w EncoderBuffer) { w.WriteBytes(nil) }, "80"},
		{func(w EncoderBuffer) { w.WriteBytes([]byte{1, 2, 3}) }, "83010203"},
		{func(w EncoderBuffer) { w.WriteBytes([]byte{0x7E}) }, "7E"},
		{func(w EncoderBuffer) { w.WriteBytes([]byte{0x80}) }, "8180"},
		{func(w EncoderBuffer) { w.WriteString("dog") }, "83646F67"},
	}
	for i, test := range tests {
		var w bytes.Buffer
		buf := NewEncoderBuffer(&w)
		test.write(buf)
		if err := buf.Flush(); err != nil {
			t.Fatalf("test %d: %v", i, err)
		}
		if got, want := w.Bytes(), unhex(test.output); !bytes.Equal(got, want) {
			t.Errorf("test %d: got %X, want %s", i, got, test.output)
		}
	}
}

func TestEncoderBufferSplitRoundTrip(t *testing.T) {
	var w bytes.Buffer
	buf := NewEncoderBuffer(&w)
	l := buf.List()
	buf.WriteUint64(42)
	buf.WriteBytes([]byte("meridian"))
	buf.WriteBigInt(new(big.Int).Lsh(big.NewInt(1), 200))
	buf.ListEnd(l)
	if err := buf.Flush(); err != nil {
		t.Fatal(err)
	}

	content, rest, err := SplitList(w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("trailing bytes: %x", rest)
	}
	v, content, err := SplitUint64(content)
	if err != nil || v != 42 {
		t.Fatalf("uint64 round trip: %d, %v", v, err)
	}
	str, content, err := SplitString(content)
	if err != nil || string(str) != "meridian" {
		t.Fatalf("string round trip: %q, %v", str, err)
	}
	b, content, err := SplitBigInt(content)
	if err != nil || b.BitLen() != 201 {
		t.Fatalf("bigint round trip: %v, %v", b, err)
	}
	if len(content) != 0 {
		t.Fatalf("unexpected trailing content: %x", content)
	}
}

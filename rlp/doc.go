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

/*
Package rlp implements the RLP serialization format.

The purpose of RLP (Recursive Linear Prefix) is to encode arbitrarily nested
arrays of binary data, and RLP is the main encoding method used to serialize
objects in Ethereum-derived protocols. The only purpose of RLP is to encode
structure; encoding specific atomic data types (strings, ints, floats) is left
up to higher-order protocols. In this codebase, integers must be represented
in big-endian binary form with no leading zeroes (thus making the integer
value zero equivalent to the empty string).

This package provides the low-level primitives only: an incremental
EncoderBuffer for producing encodings and the Split family of functions for
consuming them. Value types define their own canonical encodings on top of
these primitives; there is no reflection-driven marshalling.
*/
package rlp

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

package params

const (
	TxGas                 uint64 = 21000 // Per transaction not creating a contract.
	TxGasContractCreation uint64 = 53000 // Per transaction that creates a contract.

	MaxCodeSize     = 24576           // Maximum bytecode to permit for a contract
	MaxInitCodeSize = 2 * MaxCodeSize // Maximum initcode to permit in a creation transaction and create instructions

	// Data blob related protocol parameters. A blob is a vector of field
	// elements carried by the network form of a blob transaction; only its
	// versioned hashes enter the canonical encoding.

	BlobTxBytesPerFieldElement = 32   // Size in bytes of a field element
	BlobTxFieldElementsPerBlob = 4096 // Number of field elements stored in a single data blob
	BlobTxHashVersion          = 0x01 // Version byte of the commitment hash

	BlobTxDataGasPerBlob  = 1 << 17 // Data gas consumed by a single blob (== blob byte size)
	BlobTxTargetDataGas   = 1 << 18 // Target consumable data gas for data blobs per block
	MaxDataGasPerBlock    = 1 << 19 // Maximum consumable data gas for data blobs per block
	BlobTxMinDataGasprice = 1       // Minimum gas price for data blobs

	// MaxBlobsPerTransaction caps the versioned hash count of a single blob
	// transaction. A transaction hitting the per-block data gas budget on its
	// own is the upper bound.
	MaxBlobsPerTransaction = MaxDataGasPerBlock / BlobTxDataGasPerBlob
)

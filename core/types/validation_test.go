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
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/meridianchain/go-meridian/common"
	"github.com/meridianchain/go-meridian/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latestRules(t *testing.T) *params.Rules {
	t.Helper()
	rules := params.AllDevChainConfig.LatestRules()
	return &rules
}

func TestCheckFieldsOK(t *testing.T) {
	rules := latestRules(t)
	for i, tx := range newTestTxs() {
		assert.NoError(t, CheckFields(tx, rules), "tx %d", i)
	}
}

func TestCheckFieldsTipAboveFeeCap(t *testing.T) {
	to := common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	tx := NewTx(&DynamicFeeTx{
		ChainID:   testChainID,
		GasTipCap: big.NewInt(100),
		GasFeeCap: big.NewInt(99),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(0),
	})
	err := CheckFields(tx, latestRules(t))
	require.ErrorIs(t, err, ErrTipAboveFeeCap)
	// Diagnostics must identify the offending transaction.
	assert.Contains(t, err.Error(), "txtype 2")
}

func TestCheckFieldsOverflow(t *testing.T) {
	to := common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	wide := new(big.Int).Lsh(common.Big1, 257)

	tx := NewTx(&LegacyTx{GasPrice: big.NewInt(1), Gas: 21000, To: &to, Value: wide})
	require.ErrorIs(t, CheckFields(tx, latestRules(t)), ErrFieldOverflow)

	// The gas * feeCap product must fit 256 bits even when the factors do.
	nearMax := new(big.Int).Sub(new(big.Int).Lsh(common.Big1, 256), common.Big1)
	tx = NewTx(&LegacyTx{GasPrice: nearMax, Gas: 2, To: &to, Value: big.NewInt(0)})
	require.ErrorIs(t, CheckFields(tx, latestRules(t)), ErrFieldOverflow)
}

func TestCheckFieldsInitCodeLimit(t *testing.T) {
	initcode := make([]byte, params.MaxInitCodeSize+1)
	tx := NewTx(&DynamicFeeTx{
		ChainID:   testChainID,
		GasTipCap: common.Big1,
		GasFeeCap: common.Big2,
		Gas:       1000000,
		To:        nil, // creation
		Value:     common.Big0,
		Data:      initcode,
	})
	require.ErrorIs(t, CheckFields(tx, latestRules(t)), ErrMaxInitCodeSizeExceeded)

	// Without Shanghai rules the limit does not apply.
	preShanghai := params.MainnetChainConfig.Rules(common.Big0, 0)
	require.NoError(t, CheckFields(tx, &preShanghai))
}

func TestCheckFieldsBlob(t *testing.T) {
	to := common.HexToAddress("b94f5374fce5edbc8e2a8697c15331677e6ebf0b")
	rules := latestRules(t)
	base := func() *BlobTx {
		return &BlobTx{
			ChainID:    uint256.MustFromBig(testChainID),
			GasTipCap:  uint256.NewInt(1),
			GasFeeCap:  uint256.NewInt(2),
			Gas:        21000,
			To:         &to,
			Value:      uint256.NewInt(0),
			BlobFeeCap: uint256.NewInt(1),
			BlobHashes: []common.Hash{{params.BlobTxHashVersion}},
		}
	}

	require.NoError(t, CheckFields(NewTx(base()), rules))

	noTo := base()
	noTo.To = nil
	require.ErrorIs(t, CheckFields(NewTx(noTo), rules), ErrBlobCreate)

	empty := base()
	empty.BlobHashes = nil
	require.ErrorIs(t, CheckFields(NewTx(empty), rules), ErrNoBlobs)

	overfull := base()
	overfull.BlobHashes = make([]common.Hash, params.MaxBlobsPerTransaction+1)
	for i := range overfull.BlobHashes {
		overfull.BlobHashes[i] = common.Hash{params.BlobTxHashVersion}
	}
	require.ErrorIs(t, CheckFields(NewTx(overfull), rules), ErrTooManyBlobs)

	badVersion := base()
	badVersion.BlobHashes = []common.Hash{{0x02}}
	require.ErrorIs(t, CheckFields(NewTx(badVersion), rules), ErrBlobHashVersion)

	// Blob transactions obey the same fee ordering as dynamic fee ones.
	inverted := base()
	inverted.GasTipCap = uint256.NewInt(22)
	inverted.GasFeeCap = uint256.NewInt(5)
	require.ErrorIs(t, CheckFields(NewTx(inverted), rules), ErrTipAboveFeeCap)
}

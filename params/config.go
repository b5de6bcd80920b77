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

// Package params holds the chain configuration and protocol constants.
package params

import "math/big"

// MainnetChainConfig is the chain parameters to run a node on the main network.
var MainnetChainConfig = &ChainConfig{
	ChainID:        big.NewInt(1),
	HomesteadBlock: big.NewInt(1_150_000),
	EIP155Block:    big.NewInt(2_675_000),
	BerlinBlock:    big.NewInt(12_244_000),
	LondonBlock:    big.NewInt(12_965_000),
	ShanghaiTime:   newUint64(1681338455),
	CancunTime:     newUint64(1710338135),
}

// AllDevChainConfig enables every supported protocol upgrade from genesis.
// It is the config used by tests and private development chains.
var AllDevChainConfig = &ChainConfig{
	ChainID:        big.NewInt(1337),
	HomesteadBlock: big.NewInt(0),
	EIP155Block:    big.NewInt(0),
	BerlinBlock:    big.NewInt(0),
	LondonBlock:    big.NewInt(0),
	ShanghaiTime:   newUint64(0),
	CancunTime:     newUint64(0),
}

// ChainConfig is the core config which determines the blockchain settings.
//
// ChainConfig is stored in the database on a per block basis. This means
// that any network, identified by its genesis block, can have its own
// set of configuration options.
type ChainConfig struct {
	ChainID *big.Int `json:"chainId"` // chainId identifies the current chain and is used for replay protection

	HomesteadBlock *big.Int `json:"homesteadBlock,omitempty"` // Homestead switch block (nil = no fork, 0 = already homestead)
	EIP155Block    *big.Int `json:"eip155Block,omitempty"`    // EIP155 (replay protection) switch block
	BerlinBlock    *big.Int `json:"berlinBlock,omitempty"`    // Berlin switch block (nil = no fork, 0 = already on berlin)
	LondonBlock    *big.Int `json:"londonBlock,omitempty"`    // London switch block (nil = no fork, 0 = already on london)

	// Fork scheduling was switched from blocks to timestamps here
	ShanghaiTime *uint64 `json:"shanghaiTime,omitempty"` // Shanghai switch time (nil = no fork, 0 = already on shanghai)
	CancunTime   *uint64 `json:"cancunTime,omitempty"`   // Cancun switch time (nil = no fork, 0 = already on cancun)
}

// IsHomestead returns whether num is either equal to the homestead block or greater.
func (c *ChainConfig) IsHomestead(num *big.Int) bool {
	return isBlockForked(c.HomesteadBlock, num)
}

// IsEIP155 returns whether num is either equal to the EIP155 fork block or greater.
func (c *ChainConfig) IsEIP155(num *big.Int) bool {
	return isBlockForked(c.EIP155Block, num)
}

// IsBerlin returns whether num is either equal to the Berlin fork block or greater.
func (c *ChainConfig) IsBerlin(num *big.Int) bool {
	return isBlockForked(c.BerlinBlock, num)
}

// IsLondon returns whether num is either equal to the London fork block or greater.
func (c *ChainConfig) IsLondon(num *big.Int) bool {
	return isBlockForked(c.LondonBlock, num)
}

// IsShanghai returns whether time is either equal to the Shanghai fork time or greater.
func (c *ChainConfig) IsShanghai(num *big.Int, time uint64) bool {
	return c.IsLondon(num) && isTimestampForked(c.ShanghaiTime, time)
}

// IsCancun returns whether time is either equal to the Cancun fork time or greater.
func (c *ChainConfig) IsCancun(num *big.Int, time uint64) bool {
	return c.IsLondon(num) && isTimestampForked(c.CancunTime, time)
}

// Rules wraps ChainConfig and is merely syntactic sugar or can be used for functions
// that do not have or require information about the block.
//
// Rules is a one time interface meaning that it shouldn't be used in between transition
// phases.
type Rules struct {
	ChainID               *big.Int
	IsHomestead, IsEIP155 bool
	IsBerlin, IsLondon    bool
	IsShanghai, IsCancun  bool
}

// Rules ensures c's ChainID is not nil.
func (c *ChainConfig) Rules(num *big.Int, timestamp uint64) Rules {
	chainID := c.ChainID
	if chainID == nil {
		chainID = new(big.Int)
	}
	return Rules{
		ChainID:     new(big.Int).Set(chainID),
		IsHomestead: c.IsHomestead(num),
		IsEIP155:    c.IsEIP155(num),
		IsBerlin:    c.IsBerlin(num),
		IsLondon:    c.IsLondon(num),
		IsShanghai:  c.IsShanghai(num, timestamp),
		IsCancun:    c.IsCancun(num, timestamp),
	}
}

// LatestRules returns the rules with every scheduled upgrade of c active.
func (c *ChainConfig) LatestRules() Rules {
	return c.Rules(new(big.Int).SetUint64(^uint64(0)>>1), ^uint64(0))
}

// isBlockForked returns whether a fork scheduled at block s is active at the
// given head block.
func isBlockForked(s, head *big.Int) bool {
	if s == nil || head == nil {
		return false
	}
	return s.Cmp(head) <= 0
}

// isTimestampForked returns whether a fork scheduled at timestamp s is active
// at the given head timestamp.
func isTimestampForked(s *uint64, head uint64) bool {
	if s == nil {
		return false
	}
	return *s <= head
}

func newUint64(val uint64) *uint64 { return &val }

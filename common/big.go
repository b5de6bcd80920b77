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

package common

import "math/big"

// Common big integers often used
var (
	Big0  = big.NewInt(0)
	Big1  = big.NewInt(1)
	Big2  = big.NewInt(2)
	Big27 = big.NewInt(27)
	Big32 = big.NewInt(32)
	Big35 = big.NewInt(35)
)

// Copyright 2024 The go-meridian Authors
// This file is part of go-meridian.
//
// go-meridian is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-meridian is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-meridian. If not, see <http://www.gnu.org/licenses/>.

// txtool signs, decodes and inspects raw transactions from the command line.
package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/meridianchain/go-meridian/common/hexutil"
	"github.com/meridianchain/go-meridian/core/types"
	"github.com/meridianchain/go-meridian/crypto"
	"github.com/meridianchain/go-meridian/params"
)

var log = logrus.New()

var (
	keyFlag = &cli.StringFlag{
		Name:  "key",
		Usage: "hex-encoded secp256k1 private key, or path to a key file",
	}
	chainIDFlag = &cli.Int64Flag{
		Name:  "chainid",
		Usage: "chain ID used for signing and sender recovery",
		Value: params.MainnetChainConfig.ChainID.Int64(),
	}
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "log level (debug, info, warn, error)",
		Value: "info",
	}
)

func main() {
	app := &cli.App{
		Name:  "txtool",
		Usage: "sign, decode and inspect raw transactions",
		Flags: []cli.Flag{verbosityFlag},
		Before: func(ctx *cli.Context) error {
			lvl, err := logrus.ParseLevel(ctx.String(verbosityFlag.Name))
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "sign",
				Usage:     "sign a transaction given as JSON on stdin or as a file argument",
				ArgsUsage: "[txfile]",
				Flags:     []cli.Flag{keyFlag, chainIDFlag},
				Action:    signTx,
			},
			{
				Name:      "sender",
				Usage:     "recover the sender address of a hex-encoded raw transaction",
				ArgsUsage: "<hextx>",
				Flags:     []cli.Flag{chainIDFlag},
				Action:    senderTx,
			},
			{
				Name:      "decode",
				Usage:     "decode a hex-encoded raw transaction and print it as JSON",
				ArgsUsage: "<hextx>",
				Action:    decodeTx,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadKey(spec string) (*ecdsa.PrivateKey, error) {
	if spec == "" {
		return nil, fmt.Errorf("--%s is required", keyFlag.Name)
	}
	if _, statErr := os.Stat(spec); statErr == nil {
		key, err := crypto.LoadECDSA(spec)
		if err != nil {
			return nil, fmt.Errorf("can't load key file %s: %w", spec, err)
		}
		return key, nil
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(spec, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

func readTxJSON(ctx *cli.Context) (*types.Transaction, error) {
	var (
		input []byte
		err   error
	)
	if ctx.Args().Len() > 0 {
		input, err = os.ReadFile(ctx.Args().First())
	} else {
		input, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, err
	}
	tx := new(types.Transaction)
	if err := json.Unmarshal(input, tx); err != nil {
		return nil, fmt.Errorf("invalid transaction JSON: %w", err)
	}
	return tx, nil
}

func signTx(ctx *cli.Context) error {
	key, err := loadKey(ctx.String(keyFlag.Name))
	if err != nil {
		return err
	}
	tx, err := readTxJSON(ctx)
	if err != nil {
		return err
	}
	chainID := big.NewInt(ctx.Int64(chainIDFlag.Name))
	signer := types.LatestSignerForChainID(chainID)

	rules := params.MainnetChainConfig.LatestRules()
	if err := types.CheckFields(tx, &rules); err != nil {
		return err
	}
	signed, err := types.SignTx(tx, signer, key)
	if err != nil {
		return err
	}
	enc, err := signed.MarshalBinary()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"hash":    signed.Hash(),
		"chainid": chainID,
		"type":    signed.Type(),
	}).Info("transaction signed")
	fmt.Println(hexutil.Encode(enc))
	return nil
}

func senderTx(ctx *cli.Context) error {
	tx, err := decodeRawTx(ctx)
	if err != nil {
		return err
	}
	chainID := big.NewInt(ctx.Int64(chainIDFlag.Name))
	from, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	if err != nil {
		return err
	}
	log.WithField("hash", tx.Hash()).Debug("transaction decoded")
	fmt.Println(from.Hex())
	return nil
}

func decodeTx(ctx *cli.Context) error {
	tx, err := decodeRawTx(ctx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func decodeRawTx(ctx *cli.Context) (*types.Transaction, error) {
	if ctx.Args().Len() != 1 {
		return nil, fmt.Errorf("need exactly one hex transaction argument")
	}
	raw, err := hexutil.Decode(ctx.Args().First())
	if err != nil {
		return nil, fmt.Errorf("invalid hex transaction: %w", err)
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("can't decode transaction: %w", err)
	}
	return tx, nil
}

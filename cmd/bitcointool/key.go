package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/santos177/libbtc/internal/keys"
)

var keyFlags struct {
	PrivKey string
	PubKey  string
}

// genkeyCmd 生成新私钥
var genkeyCmd = &cobra.Command{
	Use:   "genkey",
	Short: "生成新的随机私钥（WIF 与 HEX 两种形式）",
	RunE: func(cmd *cobra.Command, args []string) error {
		return keys.New(activeParams, os.Stdout, logger).Generate()
	},
}

// pubfromprivCmd 从 WIF 私钥推导公钥与地址
var pubfromprivCmd = &cobra.Command{
	Use:   "pubfrompriv",
	Short: "从 WIF 私钥推导压缩公钥及 P2PKH / P2SH-P2WPKH 地址",
	RunE: func(cmd *cobra.Command, args []string) error {
		if keyFlags.PrivKey == "" {
			return errMissingKey
		}
		return keys.New(activeParams, os.Stdout, logger).PubFromPriv(keyFlags.PrivKey)
	},
}

// addrfrompubCmd 从公钥推导地址
var addrfrompubCmd = &cobra.Command{
	Use:     "addrfrompub",
	Aliases: []string{"p2pkhaddrfrompub"},
	Short:   "从十六进制公钥推导 P2PKH / P2SH-P2WPKH / P2WPKH 地址",
	RunE: func(cmd *cobra.Command, args []string) error {
		if keyFlags.PubKey == "" {
			return errMissingPubKey
		}
		return keys.New(activeParams, os.Stdout, logger).AddrFromPub(keyFlags.PubKey)
	},
}

func init() {
	pubfromprivCmd.Flags().StringVarP(&keyFlags.PrivKey, "privkey", "p", "", "WIF 编码私钥")
	addrfrompubCmd.Flags().StringVarP(&keyFlags.PubKey, "pubkey", "k", "", "十六进制公钥")

	rootCmd.AddCommand(genkeyCmd, pubfromprivCmd, addrfrompubCmd)
}

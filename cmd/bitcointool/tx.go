package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/santos177/libbtc/internal/signer"
)

var (
	errMissingTxOrScript = errors.New("missing tx-hex or script-hex (use -x, -s)")
	errMissingSig        = errors.New("missing signature or invalid length (use hex, 128 chars == 64 bytes)")
)

var txFlags struct {
	TxHex       string
	ScriptHex   string
	InputIndex  int
	SigHashType uint32
	Amount      uint64
	PrivKey     string
}

// signCmd 对单个交易输入签名
var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "对一个交易输入计算签名哈希并签名",
	Long: `对交易的一个输入计算签名哈希并（提供私钥时）签名。

无论是否签名，都会先输出脚本、脚本类型、输入索引、
哈希类型与签名哈希。未提供私钥时到此为止并正常退出；
提供的私钥非法（长度超过 50 字符且无法解码）则报错退出。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if txFlags.TxHex == "" || txFlags.ScriptHex == "" {
			return errMissingTxOrScript
		}
		_, err := signer.New(os.Stdout, logger).SignInput(&signer.Request{
			TxHex:       txFlags.TxHex,
			ScriptHex:   txFlags.ScriptHex,
			InputIndex:  txFlags.InputIndex,
			SigHashType: txFlags.SigHashType,
			Amount:      txFlags.Amount,
			PrivKeyWIF:  txFlags.PrivKey,
			Params:      activeParams,
		})
		return err
	},
}

// comp2derCmd 紧凑签名转 DER
var comp2derCmd = &cobra.Command{
	Use:   "comp2der",
	Short: "把 64 字节紧凑签名转换为规范化 DER 编码",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(txFlags.ScriptHex) != 128 {
			return errMissingSig
		}
		compact, err := hex.DecodeString(txFlags.ScriptHex)
		if err != nil {
			return errMissingSig
		}
		fmt.Println(txFlags.ScriptHex)

		der, err := signer.CompactToDER(compact)
		if err != nil {
			return err
		}
		fmt.Printf("DER: %x\n", der)
		return nil
	},
}

func init() {
	signCmd.Flags().StringVarP(&txFlags.TxHex, "txhex", "x", "", "原始交易（十六进制）")
	signCmd.Flags().StringVarP(&txFlags.ScriptHex, "scripthex", "s", "", "目标输入的脚本（十六进制）")
	signCmd.Flags().IntVarP(&txFlags.InputIndex, "inputindex", "i", 0, "输入索引")
	signCmd.Flags().Uint32Var(&txFlags.SigHashType, "sighashtype", 1, "签名哈希类型")
	signCmd.Flags().Uint64VarP(&txFlags.Amount, "amount", "a", 0, "输入对应的金额（聪）")
	signCmd.Flags().StringVarP(&txFlags.PrivKey, "privkey", "p", "", "WIF 编码私钥（可选）")

	comp2derCmd.Flags().StringVarP(&txFlags.ScriptHex, "scripthex", "s", "", "64 字节紧凑签名（128 个十六进制字符）")

	rootCmd.AddCommand(signCmd, comp2derCmd)
}

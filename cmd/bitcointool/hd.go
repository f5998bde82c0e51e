package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/santos177/libbtc/internal/hdwallet"
)

var (
	errMissingKey     = errors.New("missing extended key (use -p)")
	errMissingPubKey  = errors.New("missing public key (use -k)")
	errMissingKeypath = errors.New("missing keypath (use -m)")
)

var hdFlags struct {
	ExtKey       string
	Keypath      string
	ShowMnemonic bool
}

// hdgenmasterCmd 生成 BIP32 主密钥
var hdgenmasterCmd = &cobra.Command{
	Use:   "hdgenmaster",
	Short: "生成新的 BIP32 主密钥（经 BIP39 助记词种子）",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hdwallet.New(activeParams, os.Stdout, logger).
			GenerateMaster(hdFlags.ShowMnemonic)
	},
}

// hdprintkeyCmd 打印扩展密钥节点信息
var hdprintkeyCmd = &cobra.Command{
	Use:   "hdprintkey",
	Short: "解析扩展密钥并打印节点信息",
	RunE: func(cmd *cobra.Command, args []string) error {
		if hdFlags.ExtKey == "" {
			return errMissingKey
		}
		return hdwallet.New(activeParams, os.Stdout, logger).PrintNode(hdFlags.ExtKey)
	},
}

// hdderiveCmd 按路径表达式派生子密钥
var hdderiveCmd = &cobra.Command{
	Use:   "hdderive",
	Short: "按路径派生子密钥，路径支持一个 [from-to] 范围表达式",
	Long: `按 BIP32 路径派生子密钥并打印每个节点。

路径中可包含一个 [from-to] 或 (from-to) 数字范围，
例如 m/0'/[0-4]/1 会展开为 5 条具体路径逐一派生。
残缺或 from > to 的范围按字面路径处理。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if hdFlags.ExtKey == "" {
			return errMissingKey
		}
		if hdFlags.Keypath == "" {
			return errMissingKeypath
		}
		return hdwallet.New(activeParams, os.Stdout, logger).
			Derive(hdFlags.ExtKey, hdFlags.Keypath)
	},
}

// bip32maintotestCmd 主网扩展密钥转测试网编码
var bip32maintotestCmd = &cobra.Command{
	Use:   "bip32maintotest",
	Short: "把主网扩展密钥按测试网版本字节重新编码",
	RunE: func(cmd *cobra.Command, args []string) error {
		if hdFlags.ExtKey == "" {
			return errMissingKey
		}
		return hdwallet.New(activeParams, os.Stdout, logger).MainToTest(hdFlags.ExtKey)
	},
}

func init() {
	for _, c := range []*cobra.Command{hdprintkeyCmd, hdderiveCmd, bip32maintotestCmd} {
		c.Flags().StringVarP(&hdFlags.ExtKey, "privkey", "p", "", "扩展密钥（xprv/xpub）")
	}
	hdderiveCmd.Flags().StringVarP(&hdFlags.Keypath, "keypath", "m", "", "BIP32 派生路径表达式")
	hdgenmasterCmd.Flags().BoolVar(&hdFlags.ShowMnemonic, "mnemonic", false, "同时输出 BIP39 助记词")

	rootCmd.AddCommand(hdgenmasterCmd, hdprintkeyCmd, hdderiveCmd, bip32maintotestCmd)
}

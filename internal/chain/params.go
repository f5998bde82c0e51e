// Package chain 提供网络参数选择
//
// 工具支持三种网络：主网（mainnet）、测试网（testnet3）、回归测试网（regtest）。
// 网络选择影响 WIF 私钥的版本字节、地址编码（Base58 前缀 / Bech32 HRP）
// 以及 BIP32 扩展密钥的版本字节，具体编解码由 btcd/chaincfg 承担。
package chain

import (
	"github.com/btcsuite/btcd/chaincfg"
)

// Select 根据命令行标志选择网络参数
//
// regtest 优先于 testnet（两者同时指定时按 regtest 处理），
// 默认返回主网参数。
func Select(testnet, regtest bool) *chaincfg.Params {
	switch {
	case regtest:
		return &chaincfg.RegressionNetParams
	case testnet:
		return &chaincfg.TestNet3Params
	default:
		return &chaincfg.MainNetParams
	}
}

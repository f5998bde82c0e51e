// Package keys 提供单密钥的生成、公钥推导与地址编码
//
// 地址体系与比特币一致：P2PKH（Base58Check）、P2SH-P2WPKH（嵌套隔离见证）、
// P2WPKH（Bech32）。编码细节全部由 btcd/btcutil 承担，
// 本包只负责组合与敏感数据的清理。
package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/rs/zerolog"
)

const (
	// minWIFLength WIF 编码私钥的最小长度，低于该长度直接视为非 WIF 输入
	minWIFLength = 50

	// compressedPubKeyLen 压缩公钥长度（33 字节）
	compressedPubKeyLen = 33
)

var (
	// ErrNotWIF 私钥不是合法的 WIF 编码
	ErrNotWIF = errors.New("private key must be WIF encoded")
	// ErrWrongNetwork 私钥与当前选择的网络不匹配
	ErrWrongNetwork = errors.New("private key does not match selected network")
	// ErrInvalidPubKey 公钥解析失败
	ErrInvalidPubKey = errors.New("invalid pubkey")
)

// AddressSet 同一公钥对应的三种地址
//
// 隔离见证地址要求压缩公钥；未压缩公钥时 P2SHP2WPKH / P2WPKH 为空串。
type AddressSet struct {
	P2PKH      string
	P2SHP2WPKH string
	P2WPKH     string
}

// Service 提供密钥相关操作，结果按行写入 out
type Service struct {
	params *chaincfg.Params
	out    io.Writer
	log    zerolog.Logger
}

// New 创建密钥服务
func New(params *chaincfg.Params, out io.Writer, log zerolog.Logger) *Service {
	return &Service{params: params, out: out, log: log}
}

// Generate 生成新的随机私钥，输出 WIF 与原始十六进制两种形式
func (s *Service) Generate() error {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return fmt.Errorf("generate private key: %w", err)
	}
	defer priv.Zero()

	wif, err := btcutil.NewWIF(priv, s.params, true)
	if err != nil {
		return fmt.Errorf("encode WIF: %w", err)
	}

	raw := priv.Serialize()
	defer zeroBytes(raw)

	s.log.Debug().Str("network", s.params.Name).Msg("private key generated")

	fmt.Fprintf(s.out, "privatekey WIF: %s\n", wif.String())
	fmt.Fprintf(s.out, "privatekey HEX: %x\n", raw)
	return nil
}

// PubFromPriv 从 WIF 私钥推导公钥并输出 P2PKH / P2SH-P2WPKH 地址
func (s *Service) PubFromPriv(wifStr string) error {
	if len(wifStr) < minWIFLength {
		return ErrNotWIF
	}
	wif, err := btcutil.DecodeWIF(wifStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotWIF, err)
	}
	defer wif.PrivKey.Zero()

	if !wif.IsForNet(s.params) {
		return ErrWrongNetwork
	}

	pubBytes := wif.SerializePubKey()
	s.log.Debug().Bool("compressed", wif.CompressPubKey).Msg("pubkey derived")
	fmt.Fprintf(s.out, "pubkey: %x\n", pubBytes)

	addrs, err := Addresses(pubBytes, s.params)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "p2pkh address: %s\n", addrs.P2PKH)
	if addrs.P2SHP2WPKH != "" {
		fmt.Fprintf(s.out, "p2sh-p2wpkh address: %s\n", addrs.P2SHP2WPKH)
	}
	return nil
}

// AddrFromPub 从十六进制公钥输出全部三种地址
func (s *Service) AddrFromPub(pubHex string) error {
	pubBytes, err := hex.DecodeString(pubHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}
	if _, err := btcec.ParsePubKey(pubBytes); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}

	addrs, err := Addresses(pubBytes, s.params)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "p2pkh address: %s\n", addrs.P2PKH)
	if addrs.P2SHP2WPKH != "" {
		fmt.Fprintf(s.out, "p2sh-p2wpkh address: %s\n", addrs.P2SHP2WPKH)
	}
	if addrs.P2WPKH != "" {
		fmt.Fprintf(s.out, "p2wpkh (%s / bech32) address: %s\n", s.params.Bech32HRPSegwit, addrs.P2WPKH)
	}
	return nil
}

// Addresses 从序列化公钥编码三种地址
func Addresses(pubBytes []byte, params *chaincfg.Params) (*AddressSet, error) {
	h160 := btcutil.Hash160(pubBytes)

	p2pkh, err := btcutil.NewAddressPubKeyHash(h160, params)
	if err != nil {
		return nil, fmt.Errorf("encode p2pkh address: %w", err)
	}

	set := &AddressSet{P2PKH: p2pkh.EncodeAddress()}
	if len(pubBytes) != compressedPubKeyLen {
		// 未压缩公钥没有规范的隔离见证形式
		return set, nil
	}

	p2wpkh, err := btcutil.NewAddressWitnessPubKeyHash(h160, params)
	if err != nil {
		return nil, fmt.Errorf("encode p2wpkh address: %w", err)
	}
	set.P2WPKH = p2wpkh.EncodeAddress()

	// P2SH-P2WPKH：见证程序作为赎回脚本嵌入 P2SH
	witnessProg, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).AddData(h160).Script()
	if err != nil {
		return nil, fmt.Errorf("build witness program: %w", err)
	}
	p2sh, err := btcutil.NewAddressScriptHash(witnessProg, params)
	if err != nil {
		return nil, fmt.Errorf("encode p2sh address: %w", err)
	}
	set.P2SHP2WPKH = p2sh.EncodeAddress()

	return set, nil
}

// zeroBytes 覆写敏感字节缓冲
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Package signer 提供单个交易输入的签名编排
//
// 编排流程：校验原始交易与输入索引 → 计算签名哈希并打印诊断信息 →
// 评估私钥（缺失时以 HashOnly 结果正常结束）→ 签名并回填输入脚本 →
// 重新序列化交易。哈希计算、签名与序列化均委托给 btcd。
package signer

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/rs/zerolog"
)

const (
	// maxTxHexLen 原始交易十六进制串的长度上限（100 KB）
	maxTxHexLen = 100 * 1024

	// wifThreshold 解码失败的私钥超过该长度时视为畸形输入而非缺省占位
	wifThreshold = 50
)

var (
	// ErrTxTooLarge 交易超过 100 KB 上限
	ErrTxTooLarge = errors.New("tx too large (max 100kb)")
	// ErrInvalidTransaction 交易反序列化失败
	ErrInvalidTransaction = errors.New("invalid tx hex")
	// ErrInputIndexOutOfRange 输入索引越界
	ErrInputIndexOutOfRange = errors.New("inputindex out of range")
	// ErrInvalidScript 脚本十六进制解析失败
	ErrInvalidScript = errors.New("invalid script hex")
	// ErrInvalidPrivateKey 提供的私钥不是合法的 WIF
	ErrInvalidPrivateKey = errors.New("invalid wif privkey")
)

// Request 一次签名调用的全部输入，构造一次、消费一次
type Request struct {
	TxHex       string
	ScriptHex   string
	InputIndex  int
	SigHashType uint32
	Amount      uint64
	PrivKeyWIF  string
	Params      *chaincfg.Params
}

// Result 签名结果
//
// Signed 为 false 表示 HashOnly 结束（哈希有效、未产生签名）。
type Result struct {
	SigHash     []byte
	ScriptClass txscript.ScriptClass
	Signed      bool
	Compact     []byte // 64 字节 r||s
	DER         []byte // DER 编码 + 末尾哈希类型字节
	SignedTxHex string
	SignReason  string // 非致命签名失败的原因，空串表示正常
}

// Service 签名编排服务
type Service struct {
	out io.Writer
	log zerolog.Logger
}

// New 创建签名服务
func New(out io.Writer, log zerolog.Logger) *Service {
	return &Service{out: out, log: log}
}

// SignInput 对交易的一个输入计算签名哈希并（在有私钥时）签名
//
// 诊断字段（脚本、脚本类型、输入索引、哈希类型、哈希）
// 在密钥评估之前无条件打印，之后的失败不回收已打印的内容。
func (s *Service) SignInput(req *Request) (*Result, error) {
	if len(req.TxHex) > maxTxHexLen {
		return nil, ErrTxTooLarge
	}

	rawTx, err := hex.DecodeString(req.TxHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	if req.InputIndex < 0 || req.InputIndex >= len(tx.TxIn) {
		return nil, ErrInputIndexOutOfRange
	}

	script, err := hex.DecodeString(req.ScriptHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}

	class := txscript.GetScriptClass(script)
	sigHash, err := s.calcSigHash(tx, script, class, req)
	if err != nil {
		return nil, fmt.Errorf("compute sighash: %w", err)
	}

	fmt.Fprintf(s.out, "script: %s\n", req.ScriptHex)
	fmt.Fprintf(s.out, "script-type: %s\n", class)
	fmt.Fprintf(s.out, "inputindex: %d\n", req.InputIndex)
	fmt.Fprintf(s.out, "sighashtype: %d\n", req.SigHashType)
	fmt.Fprintf(s.out, "hash: %s\n", displayHash(sigHash))

	res := &Result{SigHash: sigHash, ScriptClass: class}

	// 解码成功即登记清零，网络不匹配的硬失败路径同样覆盖
	wif, err := btcutil.DecodeWIF(req.PrivKeyWIF)
	if err == nil {
		defer wif.PrivKey.Zero()
	}
	if err != nil || !wif.IsForNet(req.Params) {
		if len(req.PrivKeyWIF) > wifThreshold {
			return nil, ErrInvalidPrivateKey
		}
		fmt.Fprintln(s.out, "No private key provided, signing will not happen")
		return res, nil
	}

	if err := s.sign(tx, wif.PrivKey, wif.CompressPubKey, sigHash, class, req, res); err != nil {
		return nil, err
	}
	return res, nil
}

// sign 执行签名、回填输入并重新序列化交易
func (s *Service) sign(tx *wire.MsgTx, priv *btcec.PrivateKey, compressed bool,
	sigHash []byte, class txscript.ScriptClass, req *Request, res *Result) error {

	// 同一 RFC6979 确定性随机数，紧凑与 DER 两种形式的 r/s 一致
	compact, err := btcecdsa.SignCompact(priv, sigHash, compressed)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	res.Compact = compact[1:] // 去掉恢复标志头字节

	sig := btcecdsa.Sign(priv, sigHash)
	res.DER = append(sig.Serialize(), byte(req.SigHashType))

	pubBytes := priv.PubKey().SerializeCompressed()
	if !compressed {
		pubBytes = priv.PubKey().SerializeUncompressed()
	}

	// 签名回填失败是被报告的非致命状况：哈希与签名仍然有效
	if reason := embedSignature(tx, req.InputIndex, class, res.DER, pubBytes); reason != "" {
		res.SignReason = reason
		fmt.Fprintf(s.out, "Sign error: %s\n", reason)
		s.log.Warn().Str("reason", reason).Msg("signature not embedded")
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return fmt.Errorf("serialize signed tx: %w", err)
	}
	res.Signed = true
	res.SignedTxHex = hex.EncodeToString(buf.Bytes())

	fmt.Fprintf(s.out, "\nSignature created:\n")
	fmt.Fprintf(s.out, "signature compact: %x\n", res.Compact)
	fmt.Fprintf(s.out, "signature DER (+hashtype): %x\n", res.DER)
	fmt.Fprintf(s.out, "signed TX: %s\n", res.SignedTxHex)
	return nil
}

// calcSigHash 计算签名哈希
//
// 见证脚本走 BIP143（金额参与哈希），其余走传统签名哈希。
func (s *Service) calcSigHash(tx *wire.MsgTx, script []byte,
	class txscript.ScriptClass, req *Request) ([]byte, error) {

	hashType := txscript.SigHashType(req.SigHashType)

	switch class {
	case txscript.WitnessV0PubKeyHashTy, txscript.WitnessV0ScriptHashTy:
		fetcher := txscript.NewCannedPrevOutputFetcher(script, int64(req.Amount))
		sigHashes := txscript.NewTxSigHashes(tx, fetcher)
		return txscript.CalcWitnessSigHash(script, sigHashes, hashType, tx,
			req.InputIndex, int64(req.Amount))
	default:
		return txscript.CalcSignatureHash(script, hashType, tx, req.InputIndex)
	}
}

// embedSignature 按脚本类型把签名装入交易输入
//
// 返回空串表示成功，否则返回不致命的失败原因。
func embedSignature(tx *wire.MsgTx, idx int, class txscript.ScriptClass,
	derSig, pubBytes []byte) string {

	switch class {
	case txscript.PubKeyTy:
		sigScript, err := txscript.NewScriptBuilder().AddData(derSig).Script()
		if err != nil {
			return fmt.Sprintf("build script sig: %v", err)
		}
		tx.TxIn[idx].SignatureScript = sigScript

	case txscript.PubKeyHashTy:
		sigScript, err := txscript.NewScriptBuilder().
			AddData(derSig).AddData(pubBytes).Script()
		if err != nil {
			return fmt.Sprintf("build script sig: %v", err)
		}
		tx.TxIn[idx].SignatureScript = sigScript

	case txscript.WitnessV0PubKeyHashTy:
		tx.TxIn[idx].SignatureScript = nil
		tx.TxIn[idx].Witness = wire.TxWitness{derSig, pubBytes}

	default:
		return fmt.Sprintf("cannot embed signature for script type %s", class)
	}
	return ""
}

// displayHash 按约定的反序字节序输出哈希
func displayHash(sigHash []byte) string {
	h, err := chainhash.NewHash(sigHash)
	if err != nil {
		// 非 32 字节哈希不反序，按原始字节序输出
		return hex.EncodeToString(sigHash)
	}
	return h.String()
}

package hdwallet

import (
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rs/zerolog"
	"github.com/tyler-smith/go-bip39"
)

// hardenedKeyStart 硬化派生索引的起始值（2^31）
const hardenedKeyStart = hdkeychain.HardenedKeyStart

var (
	// ErrInvalidExtendedKey 扩展密钥解析失败
	ErrInvalidExtendedKey = errors.New("invalid extended key")
	// ErrWrongNetwork 扩展密钥与当前选择的网络不匹配
	ErrWrongNetwork = errors.New("extended key does not match selected network")
	// ErrDeriveFailed 子密钥派生失败
	ErrDeriveFailed = errors.New("deriving child key failed")

	errIndexTooLarge = errors.New("index exceeds 2^31-1")
)

// PathComponentError 路径分量解析错误
type PathComponentError struct {
	Component string
	Err       error
}

func (e *PathComponentError) Error() string {
	return fmt.Sprintf("invalid path component %q: %v", e.Component, e.Err)
}

func (e *PathComponentError) Unwrap() error { return e.Err }

// Service 提供 HD 钱包相关操作
//
// 所有结果按行写入 out（每行一个带标签的字段），
// 过程性信息经 zerolog 输出，不混入结果流。
type Service struct {
	params *chaincfg.Params
	out    io.Writer
	log    zerolog.Logger
}

// New 创建 HD 钱包服务
func New(params *chaincfg.Params, out io.Writer, log zerolog.Logger) *Service {
	return &Service{params: params, out: out, log: log}
}

// GenerateMaster 生成新的 BIP32 主密钥
//
// 先生成 256 位熵并转为 BIP39 助记词，再由助记词种子派生主密钥。
// withMnemonic 为 true 时额外输出助记词，否则只输出主密钥。
func (s *Service) GenerateMaster(withMnemonic bool) error {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return fmt.Errorf("encode mnemonic: %w", err)
	}

	seed := bip39.NewSeed(mnemonic, "")
	defer zeroBytes(seed)
	defer zeroBytes(entropy)

	master, err := hdkeychain.NewMaster(seed, s.params)
	if err != nil {
		return fmt.Errorf("derive master key: %w", err)
	}
	defer master.Zero()

	if withMnemonic {
		fmt.Fprintf(s.out, "mnemonic: %s\n", mnemonic)
	}
	fmt.Fprintf(s.out, "masterkey: %s\n", master.String())
	return nil
}

// PrintNode 解析扩展密钥并打印节点信息
func (s *Service) PrintNode(extKey string) error {
	key, err := hdkeychain.NewKeyFromString(extKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExtendedKey, err)
	}
	defer key.Zero()

	if !key.IsForNet(s.params) {
		return ErrWrongNetwork
	}
	return s.printNode(key)
}

// Derive 按路径表达式派生子密钥并逐一打印
//
// 路径表达式支持一个 [from-to] 或 (from-to) 范围标记，
// 展开后的每条具体路径各派生一个节点。
func (s *Service) Derive(extKey, pathExpr string) error {
	key, err := hdkeychain.NewKeyFromString(extKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExtendedKey, err)
	}
	defer key.Zero()

	if !key.IsForNet(s.params) {
		return ErrWrongNetwork
	}

	paths := ExpandPathRange(pathExpr)
	s.log.Debug().Str("expr", pathExpr).Int("paths", len(paths)).Msg("keypath expanded")

	for _, p := range paths {
		child, err := DerivePath(key, p)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDeriveFailed, err)
		}
		fmt.Fprintf(s.out, "keypath: %s\n", p)
		err = s.printNode(child)
		child.Zero()
		if err != nil {
			return err
		}
	}
	return nil
}

// MainToTest 把主网扩展密钥按测试网版本字节重新编码
//
// 私钥输入输出 xpriv 与 xpub 两行，公钥输入只输出 xpub 一行。
func (s *Service) MainToTest(extKey string) error {
	key, err := hdkeychain.NewKeyFromString(extKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExtendedKey, err)
	}
	defer key.Zero()

	if !key.IsForNet(&chaincfg.MainNetParams) {
		return errors.New("extended key is not a mainnet key")
	}

	if key.IsPrivate() {
		tpriv, err := key.CloneWithVersion(chaincfg.TestNet3Params.HDPrivateKeyID[:])
		if err != nil {
			return fmt.Errorf("re-encode private key: %w", err)
		}
		defer tpriv.Zero()
		fmt.Fprintf(s.out, "xpriv: %s\n", tpriv.String())

		tpub, err := tpriv.Neuter()
		if err != nil {
			return fmt.Errorf("neuter key: %w", err)
		}
		fmt.Fprintf(s.out, "xpub: %s\n", tpub.String())
		return nil
	}

	tpub, err := key.CloneWithVersion(chaincfg.TestNet3Params.HDPublicKeyID[:])
	if err != nil {
		return fmt.Errorf("re-encode public key: %w", err)
	}
	fmt.Fprintf(s.out, "xpub: %s\n", tpub.String())
	return nil
}

// DerivePath 沿路径逐级派生子密钥
//
// 中间节点在派生出下一级后立即清零，只有最终节点交还调用方。
func DerivePath(key *hdkeychain.ExtendedKey, path string) (*hdkeychain.ExtendedKey, error) {
	indexes, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	current := key
	for _, idx := range indexes {
		next, err := current.Derive(idx)
		if err != nil {
			if current != key {
				current.Zero()
			}
			return nil, fmt.Errorf("derive index %d: %w", idx, err)
		}
		if current != key {
			current.Zero()
		}
		current = next
	}

	if current == key {
		// 路径为 "m"：返回副本，避免调用方清零传入的密钥
		return hdkeychain.NewKeyFromString(key.String())
	}
	return current, nil
}

// printNode 打印单个 HD 节点的密钥与地址信息
func (s *Service) printNode(key *hdkeychain.ExtendedKey) error {
	pub := key
	if key.IsPrivate() {
		fmt.Fprintf(s.out, "ext key: %s\n", key.String())

		var err error
		pub, err = key.Neuter()
		if err != nil {
			return fmt.Errorf("neuter key: %w", err)
		}
	}
	fmt.Fprintf(s.out, "extended pubkey: %s\n", pub.String())

	ecPub, err := key.ECPubKey()
	if err != nil {
		return fmt.Errorf("extract pubkey: %w", err)
	}
	pubBytes := ecPub.SerializeCompressed()
	fmt.Fprintf(s.out, "pubkey hex: %x\n", pubBytes)

	if key.IsPrivate() {
		ecPriv, err := key.ECPrivKey()
		if err != nil {
			return fmt.Errorf("extract privkey: %w", err)
		}
		wif, err := btcutil.NewWIF(ecPriv, s.params, true)
		if err != nil {
			ecPriv.Zero()
			return fmt.Errorf("encode WIF: %w", err)
		}
		fmt.Fprintf(s.out, "privatekey WIF: %s\n", wif.String())
		ecPriv.Zero()
	}

	fmt.Fprintf(s.out, "depth: %d\n", key.Depth())
	fmt.Fprintf(s.out, "child index: %d\n", key.ChildIndex())

	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pubBytes), s.params)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}
	fmt.Fprintf(s.out, "p2pkh address: %s\n", addr.EncodeAddress())
	return nil
}

// zeroBytes 覆写敏感字节缓冲
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

package signer

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// compactSigLen 紧凑签名长度：r(32) + s(32)
const compactSigLen = 64

var (
	// ErrBadCompactLen 紧凑签名长度不是 64 字节
	ErrBadCompactLen = errors.New("compact signature must be 64 bytes")
	// ErrBadScalar r 或 s 超出曲线阶
	ErrBadScalar = errors.New("signature scalar out of range")
)

// CompactToDER 把 64 字节紧凑签名转换为规范化的 DER 编码
//
// s 大于曲线阶一半时取负（low-S 规范化），与共识规则的签名形式一致。
func CompactToDER(compact []byte) ([]byte, error) {
	if len(compact) != compactSigLen {
		return nil, ErrBadCompactLen
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(compact[:32]); overflow {
		return nil, ErrBadScalar
	}
	if overflow := s.SetByteSlice(compact[32:]); overflow {
		return nil, ErrBadScalar
	}

	if s.IsOverHalfOrder() {
		s.Negate()
	}

	return btcecdsa.NewSignature(&r, &s).Serialize(), nil
}

package hdwallet

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// BIP32 测试向量1：种子 000102030405060708090a0b0c0d0e0f
const (
	vector1Seed   = "000102030405060708090a0b0c0d0e0f"
	vector1Master = "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi"
	vector1Chain0 = "xprv9uHRZZhk6KAJC1avXpDAp4MDc3sQKNxDiPvvkX8Br5ngLNv1TxvUxt4cV1rGL5hj6KCesnDYUhd7oWgT11eZG7XnxHrnYeSvkzY7d2bhkJ7"
)

func vectorMaster(t *testing.T) *hdkeychain.ExtendedKey {
	t.Helper()
	seed, err := hex.DecodeString(vector1Seed)
	require.NoError(t, err)
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)
	return master
}

func TestVectorMaster(t *testing.T) {
	master := vectorMaster(t)
	require.Equal(t, vector1Master, master.String())
}

func TestDerivePath(t *testing.T) {
	master := vectorMaster(t)

	child, err := DerivePath(master, "m/0'")
	require.NoError(t, err)
	require.Equal(t, vector1Chain0, child.String())

	// 路径 "m" 返回等价副本
	same, err := DerivePath(master, "m")
	require.NoError(t, err)
	require.Equal(t, master.String(), same.String())

	_, err = DerivePath(master, "m/x")
	require.Error(t, err)
}

func TestService_PrintNode(t *testing.T) {
	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())

	require.NoError(t, svc.PrintNode(vector1Master))

	text := out.String()
	require.Contains(t, text, "ext key: "+vector1Master)
	require.Contains(t, text, "extended pubkey: xpub")
	require.Contains(t, text, "pubkey hex: ")
	require.Contains(t, text, "privatekey WIF: ")
	require.Contains(t, text, "depth: 0")
	require.Contains(t, text, "child index: 0")
	require.Contains(t, text, "p2pkh address: 1")
}

func TestService_PrintNode_PublicKey(t *testing.T) {
	master := vectorMaster(t)
	pub, err := master.Neuter()
	require.NoError(t, err)

	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())
	require.NoError(t, svc.PrintNode(pub.String()))

	text := out.String()
	require.NotContains(t, text, "ext key: ")
	require.NotContains(t, text, "privatekey WIF: ")
	require.Contains(t, text, "extended pubkey: xpub")
}

func TestService_PrintNode_Errors(t *testing.T) {
	var out bytes.Buffer

	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())
	require.ErrorIs(t, svc.PrintNode("xprvjunk"), ErrInvalidExtendedKey)

	// 主网密钥在测试网下拒绝
	svc = New(&chaincfg.TestNet3Params, &out, zerolog.Nop())
	require.ErrorIs(t, svc.PrintNode(vector1Master), ErrWrongNetwork)
}

func TestService_Derive_Range(t *testing.T) {
	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())

	require.NoError(t, svc.Derive(vector1Master, "m/0'/[2-3]/5"))

	text := out.String()
	require.Equal(t, 2, strings.Count(text, "keypath: "))
	require.Contains(t, text, "keypath: m/0'/2/5\n")
	require.Contains(t, text, "keypath: m/0'/3/5\n")
	require.Equal(t, 2, strings.Count(text, "ext key: "))
}

func TestService_Derive_Literal(t *testing.T) {
	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())

	require.NoError(t, svc.Derive(vector1Master, "m/0'"))
	require.Contains(t, out.String(), "ext key: "+vector1Chain0)
}

func TestService_GenerateMaster(t *testing.T) {
	var out bytes.Buffer
	svc := New(&chaincfg.TestNet3Params, &out, zerolog.Nop())

	require.NoError(t, svc.GenerateMaster(true))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "mnemonic: "))
	require.True(t, strings.HasPrefix(lines[1], "masterkey: tprv"))

	// 输出的主密钥必须能解析回来
	key, err := hdkeychain.NewKeyFromString(strings.TrimPrefix(lines[1], "masterkey: "))
	require.NoError(t, err)
	require.True(t, key.IsPrivate())
	require.True(t, key.IsForNet(&chaincfg.TestNet3Params))
}

func TestService_MainToTest(t *testing.T) {
	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())

	require.NoError(t, svc.MainToTest(vector1Master))

	text := out.String()
	require.Contains(t, text, "xpriv: tprv")
	require.Contains(t, text, "xpub: tpub")

	// 重新编码后的私钥在测试网下可解析，且密钥材料一致
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		parts := strings.SplitN(line, ": ", 2)
		require.Len(t, parts, 2)
		key, err := hdkeychain.NewKeyFromString(parts[1])
		require.NoError(t, err)
		require.True(t, key.IsForNet(&chaincfg.TestNet3Params))
	}
}

func TestService_MainToTest_PublicOnly(t *testing.T) {
	master := vectorMaster(t)
	pub, err := master.Neuter()
	require.NoError(t, err)

	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())
	require.NoError(t, svc.MainToTest(pub.String()))

	text := out.String()
	require.NotContains(t, text, "xpriv: ")
	require.Contains(t, text, "xpub: tpub")
}

// 派生出的节点地址必须是当前网络的合法地址
func TestService_Derive_AddressRoundTrip(t *testing.T) {
	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())
	require.NoError(t, svc.Derive(vector1Master, "m/0'/[0-1]"))

	for _, line := range strings.Split(out.String(), "\n") {
		if !strings.HasPrefix(line, "p2pkh address: ") {
			continue
		}
		addr, err := btcutil.DecodeAddress(strings.TrimPrefix(line, "p2pkh address: "), &chaincfg.MainNetParams)
		require.NoError(t, err)
		require.True(t, addr.IsForNet(&chaincfg.MainNetParams))
	}
}

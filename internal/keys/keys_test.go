package keys

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newWIF(t *testing.T, params *chaincfg.Params) *btcutil.WIF {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	wif, err := btcutil.NewWIF(priv, params, true)
	require.NoError(t, err)
	return wif
}

func TestService_Generate(t *testing.T) {
	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())

	require.NoError(t, svc.Generate())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	wifStr := strings.TrimPrefix(lines[0], "privatekey WIF: ")
	wif, err := btcutil.DecodeWIF(wifStr)
	require.NoError(t, err)
	require.True(t, wif.IsForNet(&chaincfg.MainNetParams))

	hexStr := strings.TrimPrefix(lines[1], "privatekey HEX: ")
	require.Len(t, hexStr, 64)
	_, err = hex.DecodeString(hexStr)
	require.NoError(t, err)
}

// 调试级日志走 logger，不混入结果流
func TestService_Generate_DebugLog(t *testing.T) {
	var out, logBuf bytes.Buffer
	log := zerolog.New(&logBuf).Level(zerolog.DebugLevel)
	svc := New(&chaincfg.MainNetParams, &out, log)

	require.NoError(t, svc.Generate())
	require.Contains(t, logBuf.String(), "private key generated")
	require.NotContains(t, out.String(), "private key generated")
}

func TestService_PubFromPriv(t *testing.T) {
	wif := newWIF(t, &chaincfg.TestNet3Params)

	var out bytes.Buffer
	svc := New(&chaincfg.TestNet3Params, &out, zerolog.Nop())
	require.NoError(t, svc.PubFromPriv(wif.String()))

	text := out.String()
	require.Contains(t, text, "pubkey: ")
	require.Contains(t, text, "p2pkh address: ")
	require.Contains(t, text, "p2sh-p2wpkh address: ")

	// 输出的公钥必须与 WIF 对应
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if !strings.HasPrefix(line, "pubkey: ") {
			continue
		}
		pubHex := strings.TrimPrefix(line, "pubkey: ")
		require.Equal(t, hex.EncodeToString(wif.SerializePubKey()), pubHex)
	}
}

func TestService_PubFromPriv_Errors(t *testing.T) {
	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())

	// 短输入直接拒绝
	require.ErrorIs(t, svc.PubFromPriv("short"), ErrNotWIF)

	// 长度足够但非 WIF
	require.ErrorIs(t, svc.PubFromPriv(strings.Repeat("x", 52)), ErrNotWIF)

	// 网络不匹配
	wif := newWIF(t, &chaincfg.TestNet3Params)
	require.ErrorIs(t, svc.PubFromPriv(wif.String()), ErrWrongNetwork)

	// 错误路径不产生输出
	require.Empty(t, out.String())
}

func TestService_AddrFromPub(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pubHex := hex.EncodeToString(priv.PubKey().SerializeCompressed())

	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())
	require.NoError(t, svc.AddrFromPub(pubHex))

	text := out.String()
	require.Contains(t, text, "p2pkh address: 1")
	require.Contains(t, text, "p2sh-p2wpkh address: 3")
	require.Contains(t, text, "p2wpkh (bc / bech32) address: bc1")
}

func TestService_AddrFromPub_Invalid(t *testing.T) {
	var out bytes.Buffer
	svc := New(&chaincfg.MainNetParams, &out, zerolog.Nop())

	require.ErrorIs(t, svc.AddrFromPub("zz"), ErrInvalidPubKey)
	require.ErrorIs(t, svc.AddrFromPub("0200"), ErrInvalidPubKey)
	require.Empty(t, out.String())
}

func TestAddresses_RoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	for _, params := range []*chaincfg.Params{
		&chaincfg.MainNetParams,
		&chaincfg.TestNet3Params,
		&chaincfg.RegressionNetParams,
	} {
		addrs, err := Addresses(priv.PubKey().SerializeCompressed(), params)
		require.NoError(t, err)

		for _, encoded := range []string{addrs.P2PKH, addrs.P2SHP2WPKH, addrs.P2WPKH} {
			addr, err := btcutil.DecodeAddress(encoded, params)
			require.NoError(t, err, "address %s on %s", encoded, params.Name)
			require.True(t, addr.IsForNet(params))
		}
	}
}

func TestAddresses_UncompressedSkipsSegwit(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	addrs, err := Addresses(priv.PubKey().SerializeUncompressed(), &chaincfg.MainNetParams)
	require.NoError(t, err)
	require.NotEmpty(t, addrs.P2PKH)
	require.Empty(t, addrs.P2SHP2WPKH)
	require.Empty(t, addrs.P2WPKH)
}

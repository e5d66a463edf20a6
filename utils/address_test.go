package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kaspanet/kaspad/util"
	"github.com/stretchr/testify/require"

	"krc20-indexer/script"
)

func TestParsePrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]Prefix{
		"kaspa":     PrefixMainnet,
		"mainnet":   PrefixMainnet,
		"kaspatest": PrefixTestnet,
		"testnet":   PrefixTestnet,
		"kaspasim":  PrefixSimnet,
		"simnet":    PrefixSimnet,
		"kaspadev":  PrefixDevnet,
		"devnet":    PrefixDevnet,
	}
	for name, want := range tests {
		prefix, err := ParsePrefix(name)
		require.NoError(t, err, name)
		require.Equal(t, want, prefix, name)
	}
	require.Equal(t, "kaspatest", PrefixTestnet.String())

	_, err := ParsePrefix("bitcoin")
	require.ErrorIs(t, err, ErrUnknownPrefix)

	_, err = EncodeAddress(util.Bech32PrefixUnknown, VersionPubKey, make([]byte, 32))
	require.ErrorIs(t, err, ErrUnknownPrefix)

	_, err = EncodeAddress(PrefixMainnet, 3, make([]byte, 32))
	require.ErrorIs(t, err, ErrUnknownVersion)

	_, err = EncodeAddress(PrefixMainnet, VersionPubKey, make([]byte, 31))
	require.Error(t, err)
}

func TestExtractScriptPubKeyAddress(t *testing.T) {
	t.Parallel()

	key32 := bytes.Repeat([]byte{0x42}, 32)
	key33 := append([]byte{0x02}, key32...)

	p2pk, _ := script.NewBuilder().AddData(key32).AddOp(script.OpCheckSig).Script()
	p2pkECDSA, _ := script.NewBuilder().AddData(key33).AddOp(script.OpCheckSigECDSA).Script()
	p2sh, _ := script.NewBuilder().AddOp(script.OpBlake2b).AddData(key32).AddOp(script.OpEqual).Script()

	tests := []struct {
		name    string
		script  []byte
		version byte
		payload []byte
		first   string
	}{
		{"pubkey", p2pk, VersionPubKey, key32, "q"},
		{"pubkey ecdsa", p2pkECDSA, VersionPubKeyECDSA, key33, "q"},
		{"script hash", p2sh, VersionScriptHash, key32, "p"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			address, err := ExtractScriptPubKeyAddress(test.script, 0, PrefixTestnet)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(address, "kaspatest:"+test.first), address)

			prefix, version, payload, err := DecodeAddress(address)
			require.NoError(t, err)
			require.Equal(t, PrefixTestnet, prefix)
			require.Equal(t, test.version, version)
			require.Equal(t, test.payload, payload)
		})
	}
}

func TestAddressLength(t *testing.T) {
	t.Parallel()

	address, err := EncodeAddress(PrefixMainnet, VersionPubKey, make([]byte, 32))
	require.NoError(t, err)
	require.Len(t, address, len("kaspa:")+61)
}

func TestExtractScriptPubKeyAddressErrors(t *testing.T) {
	t.Parallel()

	_, err := ExtractScriptPubKeyAddress([]byte{script.OpTrue}, 0, PrefixMainnet)
	require.ErrorIs(t, err, ErrNonStandardScript)

	_, err = ExtractScriptPubKeyAddress(nil, 1, PrefixMainnet)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecodeAddressRejectsCorruption(t *testing.T) {
	t.Parallel()

	address, err := EncodeAddress(PrefixDevnet, VersionPubKey, bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	last := address[len(address)-1]
	replacement := byte('q')
	if last == 'q' {
		replacement = 'p'
	}
	corrupted := address[:len(address)-1] + string(replacement)

	_, _, _, err = DecodeAddress(corrupted)
	require.Error(t, err)

	_, _, _, err = DecodeAddress("no-separator")
	require.Error(t, err)

	_, _, _, err = DecodeAddress("bitcoin" + address[len("kaspadev"):])
	require.Error(t, err)
}

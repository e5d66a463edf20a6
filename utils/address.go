package utils

import (
	"errors"
	"fmt"

	"github.com/kaspanet/kaspad/util"

	"krc20-indexer/script"
)

// Prefix is the human readable part of a kaspa address and identifies the
// network the address belongs to.
type Prefix = util.Bech32Prefix

const (
	PrefixMainnet = util.Bech32PrefixKaspa
	PrefixTestnet = util.Bech32PrefixKaspaTest
	PrefixSimnet  = util.Bech32PrefixKaspaSim
	PrefixDevnet  = util.Bech32PrefixKaspaDev
)

// Address versions as encoded in the first payload byte.
const (
	VersionPubKey      byte = 0
	VersionPubKeyECDSA byte = 1
	VersionScriptHash  byte = 8
)

var (
	ErrUnknownPrefix      = errors.New("unknown network prefix")
	ErrNonStandardScript  = errors.New("non-standard script public key")
	ErrUnsupportedVersion = errors.New("unsupported script public key version")
	ErrUnknownVersion     = errors.New("unknown address version")
)

var networkNames = map[string]Prefix{
	"mainnet": PrefixMainnet,
	"testnet": PrefixTestnet,
	"simnet":  PrefixSimnet,
	"devnet":  PrefixDevnet,
}

// ParsePrefix resolves a network prefix, either by its address prefix
// ("kaspatest") or by its network name ("testnet").
func ParsePrefix(s string) (Prefix, error) {
	if prefix, ok := networkNames[s]; ok {
		return prefix, nil
	}
	prefix, err := util.ParsePrefix(s)
	if err != nil {
		return util.Bech32PrefixUnknown, fmt.Errorf("%w: %q", ErrUnknownPrefix, s)
	}
	return prefix, nil
}

func validPrefix(prefix Prefix) bool {
	switch prefix {
	case PrefixMainnet, PrefixTestnet, PrefixSimnet, PrefixDevnet:
		return true
	}
	return false
}

// EncodeAddress encodes a payload of the given version into a kaspa address.
func EncodeAddress(prefix Prefix, version byte, payload []byte) (string, error) {
	if !validPrefix(prefix) {
		return "", fmt.Errorf("%w: %d", ErrUnknownPrefix, prefix)
	}

	var (
		address util.Address
		err     error
	)
	switch version {
	case VersionPubKey:
		address, err = util.NewAddressPublicKey(payload, prefix)
	case VersionPubKeyECDSA:
		address, err = util.NewAddressPublicKeyECDSA(payload, prefix)
	case VersionScriptHash:
		address, err = util.NewAddressScriptHashFromHash(payload, prefix)
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownVersion, version)
	}
	if err != nil {
		return "", err
	}
	return address.EncodeAddress(), nil
}

// DecodeAddress splits an address into its prefix, version and payload after
// verifying the checksum.
func DecodeAddress(address string) (Prefix, byte, []byte, error) {
	decoded, err := util.DecodeAddress(address, util.Bech32PrefixUnknown)
	if err != nil {
		return util.Bech32PrefixUnknown, 0, nil, fmt.Errorf("decode address %q: %w", address, err)
	}

	var version byte
	switch decoded.(type) {
	case *util.AddressPublicKey:
		version = VersionPubKey
	case *util.AddressPublicKeyECDSA:
		version = VersionPubKeyECDSA
	case *util.AddressScriptHash:
		version = VersionScriptHash
	default:
		return util.Bech32PrefixUnknown, 0, nil, fmt.Errorf("%w: %T", ErrUnknownVersion, decoded)
	}
	return decoded.Prefix(), version, decoded.ScriptAddress(), nil
}

// ExtractScriptPubKeyAddress returns the address paid by a standard locking
// script: pay-to-pubkey (schnorr), pay-to-pubkey-ECDSA or pay-to-script-hash.
func ExtractScriptPubKeyAddress(scriptPubKey []byte, scriptVersion uint16, prefix Prefix) (string, error) {
	if scriptVersion != 0 {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedVersion, scriptVersion)
	}

	switch {
	case len(scriptPubKey) == 34 &&
		scriptPubKey[0] == script.OpData32 &&
		scriptPubKey[33] == script.OpCheckSig:
		return EncodeAddress(prefix, VersionPubKey, scriptPubKey[1:33])

	case len(scriptPubKey) == 35 &&
		scriptPubKey[0] == script.OpData33 &&
		scriptPubKey[34] == script.OpCheckSigECDSA:
		return EncodeAddress(prefix, VersionPubKeyECDSA, scriptPubKey[1:34])

	case len(scriptPubKey) == 35 &&
		scriptPubKey[0] == script.OpBlake2b &&
		scriptPubKey[1] == script.OpData32 &&
		scriptPubKey[34] == script.OpEqual:
		return EncodeAddress(prefix, VersionScriptHash, scriptPubKey[2:34])
	}
	return "", ErrNonStandardScript
}

// Package address parses and encodes CKB addresses.
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// Format is the payload format byte of an address.
type Format byte

const (
	FormatFull     Format = 0x00
	FormatShort    Format = 0x01
	FormatFullData Format = 0x02
	FormatFullType Format = 0x04
)

// Code hash indexes of the short format.
const (
	ShortSecp256k1 byte = 0x00
	ShortMultisig  byte = 0x01
	ShortACP       byte = 0x02
)

var (
	SecpCodeHash       = model.MustHexToHash("0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8")
	MultisigCodeHash   = model.MustHexToHash("0x5c5069eb0857efc65e1bca0c07df34c31663b3622fd3876c876320fc9634e2a8")
	ACPMainnetCodeHash = model.MustHexToHash("0xd369597ff47f29fbc0d47d2e3775370d1250b85140c670e4718af712983a2354")
	ACPTestnetCodeHash = model.MustHexToHash("0x3419a1c09eb2567f6552ee7a8ecffd64155cffe0f1796e6e61ec088d740c1356")
)

var (
	ErrInvalidAddress   = errors.New("invalid address")
	errUnsupportedIndex = errors.New("unsupported code hash index")
)

// Address is a decoded address. Script is the lock it denotes.
type Address struct {
	Network model.Network
	Script  model.Script
	Format  Format
}

// Parse decodes any supported address format.
func Parse(s string) (Address, error) {
	hrp, data5, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: decode bech32: %v", ErrInvalidAddress, err)
	}

	var network model.Network
	switch hrp {
	case model.Mainnet.AddressPrefix():
		network = model.Mainnet
	case model.Testnet.AddressPrefix():
		network = model.Testnet
	default:
		return Address{}, fmt.Errorf("%w: unknown prefix %q", ErrInvalidAddress, hrp)
	}

	data, err := bech32.ConvertBits(data5, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("%w: convert bits: %v", ErrInvalidAddress, err)
	}
	if len(data) == 0 {
		return Address{}, fmt.Errorf("%w: empty payload", ErrInvalidAddress)
	}

	bech32m, err := isBech32m(s, hrp, data5)
	if err != nil {
		return Address{}, err
	}

	addr := Address{Network: network, Format: Format(data[0])}
	switch addr.Format {
	case FormatShort:
		if bech32m {
			return Address{}, fmt.Errorf("%w: short address must use bech32", ErrInvalidAddress)
		}
		if len(data) != 22 {
			return Address{}, fmt.Errorf("%w: short payload length %d", ErrInvalidAddress, len(data))
		}
		codeHash, err := shortCodeHash(network, data[1])
		if err != nil {
			return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		addr.Script = model.Script{CodeHash: codeHash, HashType: model.HashTypeType, Args: model.Bytes(data[2:22])}

	case FormatFullData, FormatFullType:
		if bech32m {
			return Address{}, fmt.Errorf("%w: deprecated full address must use bech32", ErrInvalidAddress)
		}
		if len(data) < 33 {
			return Address{}, fmt.Errorf("%w: full payload length %d", ErrInvalidAddress, len(data))
		}
		hashType := model.HashTypeType
		if addr.Format == FormatFullData {
			hashType = model.HashTypeData
		}
		addr.Script = model.Script{HashType: hashType, Args: model.Bytes(data[33:])}
		copy(addr.Script.CodeHash[:], data[1:33])

	case FormatFull:
		if !bech32m {
			return Address{}, fmt.Errorf("%w: full address must use bech32m", ErrInvalidAddress)
		}
		if len(data) < 34 {
			return Address{}, fmt.Errorf("%w: full payload length %d", ErrInvalidAddress, len(data))
		}
		hashType := model.ScriptHashType(data[33])
		if hashType > model.HashTypeData1 {
			return Address{}, fmt.Errorf("%w: hash type %d", ErrInvalidAddress, data[33])
		}
		addr.Script = model.Script{HashType: hashType, Args: model.Bytes(data[34:])}
		copy(addr.Script.CodeHash[:], data[1:33])

	default:
		return Address{}, fmt.Errorf("%w: format %#x", ErrInvalidAddress, data[0])
	}

	return addr, nil
}

// ParseScript returns only the lock script of an address.
func ParseScript(s string) (model.Script, error) {
	addr, err := Parse(s)
	if err != nil {
		return model.Script{}, err
	}
	return addr.Script, nil
}

// Encode renders a lock script in the full format.
func Encode(network model.Network, script model.Script) (string, error) {
	payload := make([]byte, 0, 34+len(script.Args))
	payload = append(payload, byte(FormatFull))
	payload = append(payload, script.CodeHash[:]...)
	payload = append(payload, byte(script.HashType))
	payload = append(payload, script.Args...)

	data5, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert bits: %w", err)
	}
	return bech32.EncodeM(network.AddressPrefix(), data5)
}

// String renders the address in its original format.
func (a Address) String() string {
	var (
		payload []byte
		encoded string
		err     error
	)
	switch a.Format {
	case FormatFull:
		encoded, err = Encode(a.Network, a.Script)
	case FormatShort:
		payload = append([]byte{byte(FormatShort), shortIndex(a.Script.CodeHash)}, a.Script.Args...)
	default:
		payload = append([]byte{byte(a.Format)}, a.Script.CodeHash[:]...)
		payload = append(payload, a.Script.Args...)
	}
	if payload != nil {
		var data5 []byte
		data5, err = bech32.ConvertBits(payload, 8, 5, true)
		if err == nil {
			encoded, err = bech32.Encode(a.Network.AddressPrefix(), data5)
		}
	}
	if err != nil {
		return ""
	}
	return encoded
}

func isBech32m(s, hrp string, data5 []byte) (bool, error) {
	lower := strings.ToLower(s)
	if m, err := bech32.EncodeM(hrp, data5); err == nil && m == lower {
		return true, nil
	}
	if b, err := bech32.Encode(hrp, data5); err == nil && b == lower {
		return false, nil
	}
	return false, fmt.Errorf("%w: unknown checksum variant", ErrInvalidAddress)
}

func shortCodeHash(network model.Network, index byte) (model.Hash, error) {
	switch index {
	case ShortSecp256k1:
		return SecpCodeHash, nil
	case ShortMultisig:
		return MultisigCodeHash, nil
	case ShortACP:
		if network == model.Mainnet {
			return ACPMainnetCodeHash, nil
		}
		return ACPTestnetCodeHash, nil
	default:
		return model.Hash{}, fmt.Errorf("%w %#x", errUnsupportedIndex, index)
	}
}

func shortIndex(codeHash model.Hash) byte {
	switch codeHash {
	case MultisigCodeHash:
		return ShortMultisig
	case ACPMainnetCodeHash, ACPTestnetCodeHash:
		return ShortACP
	default:
		return ShortSecp256k1
	}
}

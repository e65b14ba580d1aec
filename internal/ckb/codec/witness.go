package codec

import "github.com/nervosnetwork/mercury-sub000/internal/ckb/model"

// SignatureSize is the length of a recoverable secp256k1 signature.
const SignatureSize = 65

const (
	// SecpSignatureOffset locates the signature inside a WitnessArgs whose lock is the bare signature.
	SecpSignatureOffset = 20
	// OmniSignatureOffset locates the signature inside a WitnessArgs whose lock is an OmniLockWitnessLock.
	OmniSignatureOffset = 40
)

// SecpPlaceholder returns the zeroed lock field for secp-style locks.
func SecpPlaceholder() model.Bytes {
	return make(model.Bytes, SignatureSize)
}

// OmniLockPlaceholder returns an OmniLockWitnessLock carrying a zeroed signature
// with no identity and no preimage.
func OmniLockPlaceholder() model.Bytes {
	return table([][]byte{
		bytesVec(make([]byte, SignatureSize)),
		nil,
		nil,
	})
}

// SignatureOffset returns where the signature bytes start in a witness whose lock is placeholder.
func SignatureOffset(omni bool) int {
	if omni {
		return OmniSignatureOffset
	}
	return SecpSignatureOffset
}

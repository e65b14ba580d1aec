package codec

import (
	"github.com/minio/blake2b-simd"
	"golang.org/x/crypto/sha3"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

var personalization = []byte("ckb-default-hash")

// Blake2b256 returns the blake2b-256 digest with the CKB personalization.
func Blake2b256(parts ...[]byte) model.Hash {
	h, err := blake2b.New(&blake2b.Config{Size: 32, Person: personalization})
	if err != nil {
		// Only reachable with an invalid static config.
		panic(err)
	}
	for _, p := range parts {
		h.Write(p)
	}
	var out model.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Blake160 returns the first 20 bytes of the CKB hash of data.
func Blake160(data []byte) [20]byte {
	return Blake2b256(data).Hash160()
}

func ScriptHash(s model.Script) model.Hash {
	return Blake2b256(SerializeScript(s))
}

func TransactionHash(tx model.Transaction) model.Hash {
	return Blake2b256(SerializeRawTransaction(tx))
}

// Keccak256 is the legacy keccak digest used by Ethereum-keyed locks.
func Keccak256(data []byte) model.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out model.Hash
	copy(out[:], h.Sum(nil))
	return out
}

package model

type SignAlgorithm string

var (
	SignSecp256k1        SignAlgorithm = "Secp256k1"
	SignEthereumPersonal SignAlgorithm = "EthereumPersonal"
)

type HashAlgorithm string

var (
	HashBlake2b   HashAlgorithm = "Blake2b"
	HashKeccak256 HashAlgorithm = "Keccak256"
)

// SignatureLocation is where in which witness the signature bytes go.
type SignatureLocation struct {
	Index  int `json:"index"`
	Offset int `json:"offset"`
}

type SignatureInfo struct {
	Algorithm SignAlgorithm `json:"algorithm"`
	Address   string        `json:"address"`
}

// SignatureAction is one signing obligation covering every input that shares a lock.
type SignatureAction struct {
	SignatureLocation   SignatureLocation `json:"signature_location"`
	SignatureInfo       SignatureInfo     `json:"signature_info"`
	HashAlgorithm       HashAlgorithm     `json:"hash_algorithm"`
	OtherIndexesInGroup []int             `json:"other_indexes_in_group"`
}

type ScriptGroupType string

var (
	LockGroup ScriptGroupType = "Lock"
	TypeGroup ScriptGroupType = "Type"
)

type ScriptGroup struct {
	Script        Script          `json:"script"`
	GroupType     ScriptGroupType `json:"group_type"`
	InputIndices  []uint32        `json:"input_indices"`
	OutputIndices []uint32        `json:"output_indices"`
}

package model

const (
	// ByteShannons is the number of shannons in one CKB.
	ByteShannons uint64 = 100_000_000

	TxVersion uint32 = 0

	MinCKBCapacity       = 61 * ByteShannons
	StandardSUDTCapacity = 142 * ByteShannons
	ChequeCellCapacity   = 162 * ByteShannons
	MinDAOCapacity       = 200 * ByteShannons
)

// Built-in script names used for cell deps.
const (
	ScriptSecp256k1 = "secp256k1_blake160"
	ScriptSUDT      = "sudt"
	ScriptACP       = "anyone_can_pay"
	ScriptCheque    = "cheque"
	ScriptDAO       = "dao"
	ScriptPWLock    = "pw_lock"
	ScriptOmniLock  = "omni_lock"
)

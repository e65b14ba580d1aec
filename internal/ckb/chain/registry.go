package chain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// ScriptInfo pairs a built-in script template (empty args) with the cell dep that provides its code.
type ScriptInfo struct {
	Script  model.Script  `json:"script"`
	CellDep model.CellDep `json:"cell_dep"`
}

// ScriptRegistry maps built-in script names to their templates. It is read-only after construction.
type ScriptRegistry struct {
	scripts map[string]ScriptInfo
}

func NewScriptRegistry(scripts map[string]ScriptInfo) *ScriptRegistry {
	cp := make(map[string]ScriptInfo, len(scripts))
	for name, info := range scripts {
		cp[name] = info
	}
	return &ScriptRegistry{scripts: cp}
}

// NetworkScriptRegistry returns the built-in scripts deployed on network.
func NetworkScriptRegistry(network model.Network) (*ScriptRegistry, error) {
	switch network {
	case model.Mainnet:
		return NewScriptRegistry(mainnetScripts()), nil
	case model.Testnet:
		return NewScriptRegistry(testnetScripts()), nil
	default:
		return nil, fmt.Errorf("no built-in scripts for network %q", network)
	}
}

// LoadScriptRegistry reads a JSON object of name to ScriptInfo and lays it over the network presets.
func LoadScriptRegistry(network model.Network, path string) (*ScriptRegistry, error) {
	base, err := NetworkScriptRegistry(network)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scripts file: %w", err)
	}
	var overrides map[string]ScriptInfo
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("decode scripts file: %w", err)
	}
	for name, info := range overrides {
		base.scripts[name] = info
	}
	return base, nil
}

func (r *ScriptRegistry) Get(name string) (ScriptInfo, bool) {
	info, ok := r.scripts[name]
	return info, ok
}

// Script builds the named script with args.
func (r *ScriptRegistry) Script(name string, args []byte) (model.Script, bool) {
	info, ok := r.scripts[name]
	if !ok {
		return model.Script{}, false
	}
	return info.Script.WithArgs(args), true
}

// Is reports whether script runs the named built-in code.
func (r *ScriptRegistry) Is(script model.Script, name string) bool {
	info, ok := r.scripts[name]
	return ok && info.Script.CodeHash == script.CodeHash && info.Script.HashType == script.HashType
}

// NameOf returns the built-in name of the code script runs.
func (r *ScriptRegistry) NameOf(script model.Script) (string, bool) {
	for name, info := range r.scripts {
		if info.Script.CodeHash == script.CodeHash && info.Script.HashType == script.HashType {
			return name, true
		}
	}
	return "", false
}

func typeScript(codeHash string) model.Script {
	return model.Script{CodeHash: model.MustHexToHash(codeHash), HashType: model.HashTypeType, Args: model.Bytes{}}
}

func cellDep(txHash string, index uint32, depType model.DepType) model.CellDep {
	return model.CellDep{
		OutPoint: model.OutPoint{TxHash: model.MustHexToHash(txHash), Index: index},
		DepType:  depType,
	}
}

func mainnetScripts() map[string]ScriptInfo {
	return map[string]ScriptInfo{
		model.ScriptSecp256k1: {
			Script:  typeScript("0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8"),
			CellDep: cellDep("0x71a7ba8fc96349fea0ed3a5c47992e3b4084b031a42264a018e0072e8172e46c", 0, model.DepTypeDepGroup),
		},
		model.ScriptDAO: {
			Script:  typeScript("0x82d76d1b75fe2fd9a27dfbaa65a039221a380d76c926f378d3f81cf3e7e13f2e"),
			CellDep: cellDep("0xe2fb199810d49a4d8beec56718ba2593b665db9d52299a0f9e6e75416d73ff5c", 2, model.DepTypeCode),
		},
		model.ScriptSUDT: {
			Script:  typeScript("0x5e7a36a77e68eecc013dfa2fe6a23f3b6c344b04005808694ae6dd45eea4cfd5"),
			CellDep: cellDep("0xc7813f6a415144643970c2e88e0bb6ca6a8edc5dd7c1022746f628284a9936d5", 0, model.DepTypeCode),
		},
		model.ScriptACP: {
			Script:  typeScript("0xd369597ff47f29fbc0d47d2e3775370d1250b85140c670e4718af712983a2354"),
			CellDep: cellDep("0x4153a2014952d7cac45f285ce9a7c5c0c0e1b21f2d378b82ac1433cb11c25c4d", 0, model.DepTypeDepGroup),
		},
		model.ScriptCheque: {
			Script:  typeScript("0xe4d4ecc6e5f9a059bf2f7a82cca292083aebc0c421566a52484fe2ec51a9fb0c"),
			CellDep: cellDep("0x04632cc459459cf5c9d384b43dee3e36f542a464bdd4127be7d6618ac6f8d268", 0, model.DepTypeDepGroup),
		},
		model.ScriptPWLock: {
			Script:  typeScript("0xbf43c3602455798c1a61a596e0d95278864c552fafe231c063b3fabf97a8febc"),
			CellDep: cellDep("0x1d60cb8f4666e039f418ea94730b1a8c5aa0bf2f7781474406387462924d15d4", 0, model.DepTypeCode),
		},
		model.ScriptOmniLock: {
			Script:  typeScript("0x9b819793a64463aed77c615d6cb226eea5487ccfc0783043a587254cda2b6f26"),
			CellDep: cellDep("0xc76edf469816aa22f416503c38d0b533d2a018e253e379f134c3985b3472c842", 0, model.DepTypeCode),
		},
	}
}

func testnetScripts() map[string]ScriptInfo {
	return map[string]ScriptInfo{
		model.ScriptSecp256k1: {
			Script:  typeScript("0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8"),
			CellDep: cellDep("0xf8de3bb47d055cdf460d93a2a6e1b05f7432f9777c8c474abf4eec1d4aee5d37", 0, model.DepTypeDepGroup),
		},
		model.ScriptDAO: {
			Script:  typeScript("0x82d76d1b75fe2fd9a27dfbaa65a039221a380d76c926f378d3f81cf3e7e13f2e"),
			CellDep: cellDep("0x8f8c79eb6671709633fe6a46de93c0fedc9c1b8a6527a18d3983879542635c9f", 2, model.DepTypeCode),
		},
		model.ScriptSUDT: {
			Script:  typeScript("0xc5e5dcf215925f7ef4dfaf5f4b4f105bc321c02776d6e7d52a1db3fcd9d011a4"),
			CellDep: cellDep("0xe12877ebd2c3c364dc46c5c992bcfaf4fee33fa13eebdf82c591fc9825aab769", 0, model.DepTypeCode),
		},
		model.ScriptACP: {
			Script:  typeScript("0x3419a1c09eb2567f6552ee7a8ecffd64155cffe0f1796e6e61ec088d740c1356"),
			CellDep: cellDep("0xec26b0f85ed839ece5f11c4c4e837ec359f5adc4420410f6453b1f6b60fb96a6", 0, model.DepTypeDepGroup),
		},
		model.ScriptCheque: {
			Script:  typeScript("0x60d5f39efce409c587cb9ea359cefdead650ca128f0bd9cb3855348f98c70d5b"),
			CellDep: cellDep("0x7f96858be0a9d584b4a9ea190e0420835156a6010a5fde15ffcdc9d9c721ccab", 0, model.DepTypeDepGroup),
		},
		model.ScriptPWLock: {
			Script:  typeScript("0x58c5f491aba6d61678b7cf7edf4910b1f5e00ec0cde2f42e0abb4fd9aff25a63"),
			CellDep: cellDep("0x57a62003daeab9d54aa29b944fc3b451213a5ebdf2e232216a3cfed0dde61b38", 0, model.DepTypeCode),
		},
		model.ScriptOmniLock: {
			Script:  typeScript("0xf329effd1c475a2978453c8600e1eaf0bc2087ee093c3ee64cc96ec6847752cb"),
			CellDep: cellDep("0x27b62d8be8ed80b9f56ee0fe41355becdb6f6a40aeba82d3900434f43b1c8b60", 0, model.DepTypeCode),
		},
	}
}

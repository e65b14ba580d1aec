package model

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// IdentityFlag tags the key family of an identity.
type IdentityFlag byte

const (
	IdentityCkb      IdentityFlag = 0x00
	IdentityEthereum IdentityFlag = 0x01
)

// Identity is a flag byte followed by a 20-byte public key hash.
type Identity [21]byte

func NewIdentity(flag IdentityFlag, pubkeyHash [20]byte) Identity {
	var id Identity
	id[0] = byte(flag)
	copy(id[1:], pubkeyHash[:])
	return id
}

func (i Identity) Flag() IdentityFlag {
	return IdentityFlag(i[0])
}

func (i Identity) PubkeyHash() [20]byte {
	var out [20]byte
	copy(out[:], i[1:])
	return out
}

func (i Identity) String() string {
	return "0x" + hex.EncodeToString(i[:])
}

// ParseIdentity decodes the 0x-prefixed 21-byte form.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	raw, err := decodeHex(s)
	if err != nil {
		return id, err
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("identity must be %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	if f := id.Flag(); f != IdentityCkb && f != IdentityEthereum {
		return id, fmt.Errorf("unsupported identity flag %#x", byte(f))
	}
	return id, nil
}

// RecordID references one cell together with the claimed owner, given either as
// an address or as the first 20 bytes of the owner's lock hash.
type RecordID struct {
	OutPoint    OutPoint
	Address     string
	LockHash160 [20]byte
	HasLockHash bool
}

// ItemKind enumerates the closed set of account reference variants.
type ItemKind int

const (
	ItemIdentity ItemKind = iota + 1
	ItemAddress
	ItemRecord
)

func (k ItemKind) String() string {
	switch k {
	case ItemIdentity:
		return "Identity"
	case ItemAddress:
		return "Address"
	case ItemRecord:
		return "Record"
	default:
		return "Unknown"
	}
}

// Item is an account reference. Items are comparable and usable as map keys.
type Item struct {
	kind     ItemKind
	identity Identity
	address  string
	record   RecordID
}

func ItemFromIdentity(id Identity) Item {
	return Item{kind: ItemIdentity, identity: id}
}

func ItemFromAddress(address string) Item {
	return Item{kind: ItemAddress, address: address}
}

func ItemFromRecord(record RecordID) Item {
	return Item{kind: ItemRecord, record: record}
}

func (i Item) Kind() ItemKind {
	return i.kind
}

func (i Item) Identity() Identity {
	return i.identity
}

func (i Item) Address() string {
	return i.address
}

func (i Item) Record() RecordID {
	return i.record
}

func (i Item) String() string {
	switch i.kind {
	case ItemIdentity:
		return "identity:" + i.identity.String()
	case ItemAddress:
		return "address:" + i.address
	case ItemRecord:
		return "record:" + i.record.OutPoint.String()
	default:
		return "unknown"
	}
}

type jsonRecord struct {
	OutPoint OutPoint `json:"out_point"`
	Address  string   `json:"address,omitempty"`
	LockHash string   `json:"lock_hash,omitempty"`
}

type jsonItem struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (i Item) MarshalJSON() ([]byte, error) {
	var value any
	switch i.kind {
	case ItemIdentity:
		value = i.identity.String()
	case ItemAddress:
		value = i.address
	case ItemRecord:
		rec := jsonRecord{OutPoint: i.record.OutPoint, Address: i.record.Address}
		if i.record.HasLockHash {
			rec.LockHash = "0x" + hex.EncodeToString(i.record.LockHash160[:])
		}
		value = rec
	default:
		return nil, errors.New("marshal empty item")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonItem{Type: i.kind.String(), Value: raw})
}

func (i *Item) UnmarshalJSON(data []byte) error {
	var ji jsonItem
	if err := json.Unmarshal(data, &ji); err != nil {
		return err
	}
	switch ji.Type {
	case "Identity":
		var s string
		if err := json.Unmarshal(ji.Value, &s); err != nil {
			return fmt.Errorf("decode identity item: %w", err)
		}
		id, err := ParseIdentity(s)
		if err != nil {
			return err
		}
		*i = ItemFromIdentity(id)
	case "Address":
		var s string
		if err := json.Unmarshal(ji.Value, &s); err != nil {
			return fmt.Errorf("decode address item: %w", err)
		}
		*i = ItemFromAddress(s)
	case "Record":
		var rec jsonRecord
		if err := json.Unmarshal(ji.Value, &rec); err != nil {
			return fmt.Errorf("decode record item: %w", err)
		}
		id := RecordID{OutPoint: rec.OutPoint, Address: rec.Address}
		if rec.LockHash != "" {
			raw, err := decodeHex(rec.LockHash)
			if err != nil {
				return err
			}
			if len(raw) != 20 {
				return fmt.Errorf("record lock hash must be 20 bytes, got %d", len(raw))
			}
			copy(id.LockHash160[:], raw)
			id.HasLockHash = true
		}
		if id.Address == "" && !id.HasLockHash {
			return errors.New("record item needs an address or a lock hash")
		}
		*i = ItemFromRecord(id)
	default:
		return fmt.Errorf("unknown item type %q", ji.Type)
	}
	return nil
}

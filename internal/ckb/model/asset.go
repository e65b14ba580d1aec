package model

type AssetType string

var (
	AssetCKB AssetType = "CKB"
	AssetUDT AssetType = "UDT"
)

// AssetInfo selects the native asset or one typed asset by its type script hash.
type AssetInfo struct {
	AssetType AssetType `json:"asset_type"`
	UDTHash   Hash      `json:"udt_hash"`
}

func NewCKBAsset() AssetInfo {
	return AssetInfo{AssetType: AssetCKB}
}

func NewUDTAsset(udtHash Hash) AssetInfo {
	return AssetInfo{AssetType: AssetUDT, UDTHash: udtHash}
}

func (a AssetInfo) IsCKB() bool {
	return a.AssetType == AssetCKB
}

// Source narrows which typed-asset cells may fund a transfer.
type Source string

var (
	SourceFree      Source = "Free"
	SourceClaimable Source = "Claimable"
)

package model

type Network string

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// AddressPrefix returns the human readable part used by addresses on the network.
func (n Network) AddressPrefix() string {
	if n == Mainnet {
		return "ckb"
	}
	return "ckt"
}

package crypto

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ModuleAddress derives the deterministic custody account for a named module
// from the last 20 bytes of keccak256("module:" + name).
func ModuleAddress(name string) Address {
	digest := ethcrypto.Keccak256([]byte("module:" + name))
	return NewAddress(AccountPrefix, digest[len(digest)-AddressLength:])
}

// TokenAddress derives the token identity for a ticker symbol from the last
// 20 bytes of keccak256("token:" + symbol).
func TokenAddress(symbol string) Address {
	digest := ethcrypto.Keccak256([]byte("token:" + symbol))
	return NewAddress(TokenPrefix, digest[len(digest)-AddressLength:])
}

package state

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	rewardsPoolPrefix     = []byte("rewards/pool/")
	rewardsPositionPrefix = []byte("rewards/position/")
	rewardsPoolListKey    = ethcrypto.Keccak256([]byte("rewards/pool-list"))

	vestingTgeKey          = ethcrypto.Keccak256([]byte("vesting/tge"))
	vestingLastCategoryKey = ethcrypto.Keccak256([]byte("vesting/last-category"))
	vestingSchedulePrefix  = []byte("vesting/schedule/")
	vestingAllocPrefix     = []byte("vesting/allocation/")
	vestingClaimedPrefix   = []byte("vesting/claimed/")

	bankBalancePrefix   = []byte("bank/balance/")
	bankAllowancePrefix = []byte("bank/allowance/")
	bankSupplyPrefix    = []byte("bank/supply/")
	bankMinterPrefix    = []byte("bank/minter/")
)

// hashedKey derives a fixed-width storage key from a namespace and its parts.
func hashedKey(prefix []byte, parts ...[]byte) []byte {
	chunks := make([][]byte, 0, len(parts)+1)
	chunks = append(chunks, prefix)
	for _, part := range parts {
		chunks = append(chunks, lengthPrefixed(part))
	}
	return ethcrypto.Keccak256(chunks...)
}

func lengthPrefixed(part []byte) []byte {
	buf := make([]byte, 4+len(part))
	binary.BigEndian.PutUint32(buf, uint32(len(part)))
	copy(buf[4:], part)
	return buf
}

func uint64Bytes(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func rewardsPoolKey(token []byte) []byte { return hashedKey(rewardsPoolPrefix, token) }

func rewardsPositionKey(token, user []byte) []byte {
	return hashedKey(rewardsPositionPrefix, token, user)
}

func vestingScheduleKey(category uint64) []byte {
	return hashedKey(vestingSchedulePrefix, uint64Bytes(category))
}

func vestingAllocationKey(category uint64, user []byte) []byte {
	return hashedKey(vestingAllocPrefix, uint64Bytes(category), user)
}

func vestingClaimedKey(category uint64, user []byte) []byte {
	return hashedKey(vestingClaimedPrefix, uint64Bytes(category), user)
}

func bankBalanceKey(token, addr []byte) []byte { return hashedKey(bankBalancePrefix, token, addr) }

func bankAllowanceKey(token, owner, spender []byte) []byte {
	return hashedKey(bankAllowancePrefix, token, owner, spender)
}

func bankSupplyKey(token []byte) []byte { return hashedKey(bankSupplyPrefix, token) }

func bankMinterKey(token, addr []byte) []byte { return hashedKey(bankMinterPrefix, token, addr) }

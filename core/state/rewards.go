package state

import (
	"math/big"

	"stakevest/crypto"
	"stakevest/native/rewards"
)

type poolRecord struct {
	Token             []byte
	ID                uint64
	LastAccrualHeight uint64
	CooldownPeriod    uint64
	TotalStaked       *big.Int
	RewardRate        *big.Int
	AccRewardPerShare *big.Int
}

type positionRecord struct {
	StakedAmount   *big.Int
	RewardDebt     *big.Int
	PendingReward  *big.Int
	CooldownAmount *big.Int
	CooldownExpiry uint64
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// GetPool loads the pool keyed by token, returning nil when it was never
// registered.
func (tx *Tx) GetPool(token crypto.Address) (*rewards.Pool, error) {
	var rec poolRecord
	ok, err := tx.getRLP(rewardsPoolKey(token.Bytes()), &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rewards.Pool{
		Token:             crypto.MustNewAddress(crypto.TokenPrefix, rec.Token),
		ID:                rec.ID,
		LastAccrualHeight: rec.LastAccrualHeight,
		CooldownPeriod:    rec.CooldownPeriod,
		TotalStaked:       nonNil(rec.TotalStaked),
		RewardRate:        nonNil(rec.RewardRate),
		AccRewardPerShare: nonNil(rec.AccRewardPerShare),
	}, nil
}

// PutPool stores the pool and appends newly seen tokens to the pool list.
func (tx *Tx) PutPool(pool *rewards.Pool) error {
	if pool == nil {
		return nil
	}
	key := rewardsPoolKey(pool.Token.Bytes())
	existing, err := tx.get(key)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		list, err := tx.poolList()
		if err != nil {
			return err
		}
		list = append(list, pool.Token.Bytes())
		if err := tx.putRLP(rewardsPoolListKey, list); err != nil {
			return err
		}
	}
	return tx.putRLP(key, poolRecord{
		Token:             pool.Token.Bytes(),
		ID:                pool.ID,
		LastAccrualHeight: pool.LastAccrualHeight,
		CooldownPeriod:    pool.CooldownPeriod,
		TotalStaked:       nonNil(pool.TotalStaked),
		RewardRate:        nonNil(pool.RewardRate),
		AccRewardPerShare: nonNil(pool.AccRewardPerShare),
	})
}

func (tx *Tx) poolList() ([][]byte, error) {
	var list [][]byte
	if _, err := tx.getRLP(rewardsPoolListKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// PoolTokens returns registered pool tokens in registration order.
func (tx *Tx) PoolTokens() ([]crypto.Address, error) {
	list, err := tx.poolList()
	if err != nil {
		return nil, err
	}
	out := make([]crypto.Address, 0, len(list))
	for _, raw := range list {
		out = append(out, crypto.MustNewAddress(crypto.TokenPrefix, raw))
	}
	return out, nil
}

// GetPosition loads the user's position in the pool, nil when absent.
func (tx *Tx) GetPosition(token, user crypto.Address) (*rewards.Position, error) {
	var rec positionRecord
	ok, err := tx.getRLP(rewardsPositionKey(token.Bytes(), user.Bytes()), &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rewards.Position{
		StakedAmount:   nonNil(rec.StakedAmount),
		RewardDebt:     nonNil(rec.RewardDebt),
		PendingReward:  nonNil(rec.PendingReward),
		CooldownAmount: nonNil(rec.CooldownAmount),
		CooldownExpiry: rec.CooldownExpiry,
	}, nil
}

// PutPosition stores the position. Dormant positions are kept.
func (tx *Tx) PutPosition(token, user crypto.Address, pos *rewards.Position) error {
	if pos == nil {
		return nil
	}
	return tx.putRLP(rewardsPositionKey(token.Bytes(), user.Bytes()), positionRecord{
		StakedAmount:   nonNil(pos.StakedAmount),
		RewardDebt:     nonNil(pos.RewardDebt),
		PendingReward:  nonNil(pos.PendingReward),
		CooldownAmount: nonNil(pos.CooldownAmount),
		CooldownExpiry: pos.CooldownExpiry,
	})
}

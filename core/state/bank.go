package state

import (
	"math/big"

	"stakevest/crypto"
)

func (tx *Tx) BankBalance(token, addr crypto.Address) (*big.Int, error) {
	return tx.getBig(bankBalanceKey(token.Bytes(), addr.Bytes()))
}

func (tx *Tx) PutBankBalance(token, addr crypto.Address, amount *big.Int) error {
	return tx.putBig(bankBalanceKey(token.Bytes(), addr.Bytes()), amount)
}

func (tx *Tx) BankAllowance(token, owner, spender crypto.Address) (*big.Int, error) {
	return tx.getBig(bankAllowanceKey(token.Bytes(), owner.Bytes(), spender.Bytes()))
}

func (tx *Tx) PutBankAllowance(token, owner, spender crypto.Address, amount *big.Int) error {
	return tx.putBig(bankAllowanceKey(token.Bytes(), owner.Bytes(), spender.Bytes()), amount)
}

func (tx *Tx) BankSupply(token crypto.Address) (*big.Int, error) {
	return tx.getBig(bankSupplyKey(token.Bytes()))
}

func (tx *Tx) PutBankSupply(token crypto.Address, amount *big.Int) error {
	return tx.putBig(bankSupplyKey(token.Bytes()), amount)
}

func (tx *Tx) BankIsMinter(token, addr crypto.Address) (bool, error) {
	data, err := tx.get(bankMinterKey(token.Bytes(), addr.Bytes()))
	if err != nil {
		return false, err
	}
	return len(data) > 0, nil
}

func (tx *Tx) PutBankMinter(token, addr crypto.Address, allowed bool) error {
	key := bankMinterKey(token.Bytes(), addr.Bytes())
	if !allowed {
		return tx.del(key)
	}
	return tx.put(key, []byte{1})
}

package oracle

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"stakevest/crypto"
)

// snapshot is the YAML layout of an allocation file. Amounts are decimal
// strings in the smallest token unit keyed by bech32 account address.
type snapshot struct {
	Primary  map[string]string `yaml:"primary"`
	Referral map[string]string `yaml:"referral"`
}

// FileOracle serves allocations from a static YAML snapshot.
type FileOracle struct {
	mu       sync.RWMutex
	path     string
	primary  map[string]*big.Int
	referral map[string]*big.Int
}

// LoadFile reads the snapshot at path.
func LoadFile(path string) (*FileOracle, error) {
	o := &FileOracle{path: path}
	if err := o.Reload(); err != nil {
		return nil, err
	}
	return o, nil
}

// Reload re-reads the snapshot file. The previous data stays in place when the
// file is invalid.
func (o *FileOracle) Reload() error {
	file, err := os.Open(o.path)
	if err != nil {
		return fmt.Errorf("oracle: open snapshot: %w", err)
	}
	defer file.Close()

	var snap snapshot
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return fmt.Errorf("oracle: decode snapshot: %w", err)
	}
	primary, err := parseAllocations(snap.Primary)
	if err != nil {
		return fmt.Errorf("oracle: primary: %w", err)
	}
	referral, err := parseAllocations(snap.Referral)
	if err != nil {
		return fmt.Errorf("oracle: referral: %w", err)
	}
	o.mu.Lock()
	o.primary = primary
	o.referral = referral
	o.mu.Unlock()
	return nil
}

func parseAllocations(raw map[string]string) (map[string]*big.Int, error) {
	out := make(map[string]*big.Int, len(raw))
	for addr, amount := range raw {
		decoded, err := crypto.DecodeAddress(strings.TrimSpace(addr))
		if err != nil {
			return nil, fmt.Errorf("address %q: %w", addr, err)
		}
		value, ok := new(big.Int).SetString(strings.TrimSpace(amount), 10)
		if !ok || value.Sign() < 0 {
			return nil, fmt.Errorf("invalid amount %q for %s", amount, addr)
		}
		out[string(decoded.Bytes())] = value
	}
	return out, nil
}

func lookup(table map[string]*big.Int, user crypto.Address) *big.Int {
	if v, ok := table[string(user.Bytes())]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

// PrimaryAllocation implements vesting.AllocationOracle.
func (o *FileOracle) PrimaryAllocation(user crypto.Address) (*big.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return lookup(o.primary, user), nil
}

// ReferralAllocation implements vesting.AllocationOracle.
func (o *FileOracle) ReferralAllocation(user crypto.Address) (*big.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return lookup(o.referral, user), nil
}

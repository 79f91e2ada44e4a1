package state

import (
	"errors"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"stakevest/storage"
)

// Manager owns the persistent key-value store backing engine state. All
// mutations go through a Tx so that an operation either commits every write
// or none of them.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// Begin opens a write overlay on top of the committed state.
func (m *Manager) Begin() *Tx {
	return &Tx{
		db:      m.db,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

// Tx buffers reads and writes against committed state. Reads observe the
// transaction's own writes. Nothing reaches the database until Commit.
type Tx struct {
	db      storage.Database
	writes  map[string][]byte
	deletes map[string]struct{}
	closed  bool
}

// ErrTxClosed is returned when a committed or discarded Tx is reused.
var ErrTxClosed = errors.New("state: transaction closed")

func (tx *Tx) get(key []byte) ([]byte, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	k := string(key)
	if _, ok := tx.deletes[k]; ok {
		return nil, nil
	}
	if v, ok := tx.writes[k]; ok {
		return append([]byte(nil), v...), nil
	}
	v, err := tx.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (tx *Tx) put(key, value []byte) error {
	if tx.closed {
		return ErrTxClosed
	}
	k := string(key)
	delete(tx.deletes, k)
	tx.writes[k] = append([]byte(nil), value...)
	return nil
}

func (tx *Tx) del(key []byte) error {
	if tx.closed {
		return ErrTxClosed
	}
	k := string(key)
	delete(tx.writes, k)
	tx.deletes[k] = struct{}{}
	return nil
}

func (tx *Tx) getRLP(key []byte, out interface{}) (bool, error) {
	data, err := tx.get(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (tx *Tx) putRLP(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return tx.put(key, encoded)
}

func (tx *Tx) getBig(key []byte) (*big.Int, error) {
	out := new(big.Int)
	if _, err := tx.getRLP(key, out); err != nil {
		return nil, err
	}
	return out, nil
}

// putBig stores v, deleting the key when v is zero.
func (tx *Tx) putBig(key []byte, v *big.Int) error {
	if v == nil || v.Sign() == 0 {
		return tx.del(key)
	}
	if v.Sign() < 0 {
		return errNegativeAmount
	}
	return tx.putRLP(key, v)
}

func (tx *Tx) getUint64(key []byte) (uint64, error) {
	var out uint64
	if _, err := tx.getRLP(key, &out); err != nil {
		return 0, err
	}
	return out, nil
}

var errNegativeAmount = errors.New("state: negative amount")

// Dirty reports the number of pending writes and deletes.
func (tx *Tx) Dirty() int {
	return len(tx.writes) + len(tx.deletes)
}

// Commit flushes every pending change in a single database batch. The Tx can
// not be used afterwards.
func (tx *Tx) Commit() error {
	if tx.closed {
		return ErrTxClosed
	}
	tx.closed = true
	if tx.Dirty() == 0 {
		return nil
	}
	batch := tx.db.NewBatch()
	keys := make([]string, 0, len(tx.writes))
	for k := range tx.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		batch.Put([]byte(k), tx.writes[k])
	}
	for k := range tx.deletes {
		batch.Delete([]byte(k))
	}
	return batch.Write()
}

// Discard drops every pending change.
func (tx *Tx) Discard() {
	tx.closed = true
	tx.writes = nil
	tx.deletes = nil
}

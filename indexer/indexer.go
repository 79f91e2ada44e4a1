package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stakevest/core"
	"stakevest/core/types"
	"stakevest/crypto"
)

// Indexer persists committed events into SQLite for history queries.
type Indexer struct {
	db  *gorm.DB
	log *slog.Logger
}

// ErrDSNRequired is returned when no database location is configured.
var ErrDSNRequired = errors.New("indexer: dsn required")

// Open connects to the SQLite database at dsn and migrates the schema.
func Open(dsn string, log *slog.Logger) (*Indexer, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrDSNRequired
	}
	if log == nil {
		log = slog.Default()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("indexer: open: %w", err)
	}
	if err := db.AutoMigrate(&EventRow{}, &EventAddress{}); err != nil {
		return nil, fmt.Errorf("indexer: migrate: %w", err)
	}
	return &Indexer{db: db, log: log}, nil
}

// Close releases the database handle.
func (i *Indexer) Close() error {
	if i == nil || i.db == nil {
		return nil
	}
	sqlDB, err := i.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Committed implements core.Subscriber.
func (i *Indexer) Committed(ctx context.Context, commit core.Commit) error {
	if i == nil || len(commit.Events) == 0 {
		return nil
	}
	rows := make([]EventRow, 0, len(commit.Events))
	for seq, evt := range commit.Events {
		if evt == nil {
			continue
		}
		attrs, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("indexer: encode attributes: %w", err)
		}
		rows = append(rows, EventRow{
			Op:         commit.Op,
			Caller:     commit.Caller.String(),
			Height:     commit.Height,
			Time:       commit.Time,
			Sequence:   seq,
			Type:       evt.Type,
			Attributes: string(attrs),
			Addresses:  addressesOf(evt),
		})
	}
	if err := i.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("indexer: insert: %w", err)
	}
	i.log.Debug("indexed events", slog.String("op", commit.Op), slog.Int("count", len(rows)))
	return nil
}

// addressesOf collects the distinct attribute values that decode as addresses.
func addressesOf(evt *types.Event) []EventAddress {
	seen := make(map[string]struct{})
	for _, value := range evt.Attributes {
		if value == "" {
			continue
		}
		if _, err := crypto.DecodeAddress(value); err != nil {
			continue
		}
		seen[value] = struct{}{}
	}
	out := make([]EventAddress, 0, len(seen))
	for addr := range seen {
		out = append(out, EventAddress{Address: addr})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Address < out[b].Address })
	return out
}

// Filter narrows an event history query.
type Filter struct {
	Type    string
	Address string
	Limit   int
}

const (
	defaultLimit = 100
	maxLimit     = 1_000
)

// Record is one indexed event.
type Record struct {
	ID       string       `json:"id"`
	Op       string       `json:"op"`
	Caller   string       `json:"caller"`
	Height   uint64       `json:"height"`
	Time     int64        `json:"time"`
	Sequence int          `json:"sequence"`
	Event    *types.Event `json:"event"`
}

// List returns matching events, newest first.
func (i *Indexer) List(ctx context.Context, filter Filter) ([]Record, error) {
	if i == nil || i.db == nil {
		return nil, ErrDSNRequired
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	query := i.db.WithContext(ctx).Model(&EventRow{})
	if t := strings.TrimSpace(filter.Type); t != "" {
		query = query.Where("type = ?", t)
	}
	if addr := strings.TrimSpace(filter.Address); addr != "" {
		query = query.Where("id IN (?)", i.db.Model(&EventAddress{}).Select("event_id").Where("address = ?", addr))
	}
	var rows []EventRow
	if err := query.Order("height DESC").Order("created_at DESC").Order("sequence DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("indexer: query: %w", err)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		attrs := map[string]string{}
		if row.Attributes != "" {
			if err := json.Unmarshal([]byte(row.Attributes), &attrs); err != nil {
				return nil, fmt.Errorf("indexer: decode attributes: %w", err)
			}
		}
		out = append(out, Record{
			ID:       row.ID.String(),
			Op:       row.Op,
			Caller:   row.Caller,
			Height:   row.Height,
			Time:     row.Time,
			Sequence: row.Sequence,
			Event:    &types.Event{Type: row.Type, Attributes: attrs},
		})
	}
	return out, nil
}

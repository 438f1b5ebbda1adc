// Package storage persists instrument snapshots and k-line tables across
// backtest runs: a small cache in front of the data loader so repeated
// simulations over the same historical window don't re-parse or re-fetch
// the same bars.
package storage

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/monkbacktest/engine/marketdata"
)

// KlineRow is the gorm-mapped row for one OHLCV bar. Decimal fields are
// stored as strings: gorm has no native decimal.Decimal column type, and
// storing as text avoids the float64 rounding that a NUMERIC/float column
// driven through database/sql would risk.
type KlineRow struct {
	Symbol    string    `gorm:"primaryKey;index:idx_kline_symbol_ts"`
	Timestamp time.Time `gorm:"primaryKey;index:idx_kline_symbol_ts"`
	Open      string
	High      string
	Low       string
	Close     string
	Volume    string
	Turnover  string
}

// InstrumentSnapshotRow stores one versioned raw snapshot blob as loaded
// from the instrument registry's source feed, so a run can be replayed
// without re-fetching it.
type InstrumentSnapshotRow struct {
	ID       uint `gorm:"primaryKey"`
	LoadedAt time.Time
	RawJSON  []byte
}

// Database is a gorm-backed cache. It degrades to disabled (every method a
// no-op) when constructed with an empty DSN — persistence is optional, not
// required to run a backtest.
type Database struct {
	db      *gorm.DB
	enabled bool
}

// New opens dsn and migrates the schema. An empty dsn disables persistence
// entirely. dsn values beginning with "postgres://" use the Postgres
// driver; anything else is treated as a sqlite file path.
func New(dsn string) (*Database, error) {
	if dsn == "" {
		log.Warn().Msg("no database DSN configured, running without a k-line/instrument cache")
		return &Database{enabled: false}, nil
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&KlineRow{}, &InstrumentSnapshotRow{}); err != nil {
		return nil, err
	}

	log.Info().Str("dsn", dsn).Msg("database cache ready")
	return &Database{db: db, enabled: true}, nil
}

// IsEnabled reports whether persistence is active.
func (d *Database) IsEnabled() bool {
	return d.enabled
}

// SaveInstrumentSnapshot records a raw snapshot payload for later replay.
func (d *Database) SaveInstrumentSnapshot(raw []byte) error {
	if !d.enabled {
		return nil
	}
	return d.db.Create(&InstrumentSnapshotRow{LoadedAt: time.Now().UTC(), RawJSON: raw}).Error
}

// LatestInstrumentSnapshot returns the most recently saved snapshot, or nil
// if none has been saved (or persistence is disabled).
func (d *Database) LatestInstrumentSnapshot() ([]byte, error) {
	if !d.enabled {
		return nil, nil
	}
	var row InstrumentSnapshotRow
	err := d.db.Order("loaded_at DESC").First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.RawJSON, nil
}

// SaveKline upserts a symbol's bar table.
func (d *Database) SaveKline(symbol string, bars []marketdata.Bar) error {
	if !d.enabled || len(bars) == 0 {
		return nil
	}
	rows := make([]KlineRow, len(bars))
	for i, b := range bars {
		rows[i] = KlineRow{
			Symbol:    symbol,
			Timestamp: b.Timestamp,
			Open:      b.Open.String(),
			High:      b.High.String(),
			Low:       b.Low.String(),
			Close:     b.Close.String(),
			Volume:    b.Volume.String(),
			Turnover:  b.Turnover.String(),
		}
	}
	return d.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
}

// LoadKline returns every bar cached for symbol, chronological order.
func (d *Database) LoadKline(symbol string) ([]marketdata.Bar, error) {
	if !d.enabled {
		return nil, nil
	}
	var rows []KlineRow
	if err := d.db.Where("symbol = ?", symbol).Order("timestamp ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	bars := make([]marketdata.Bar, len(rows))
	for i, r := range rows {
		bars[i] = marketdata.Bar{
			Timestamp: r.Timestamp,
			Open:      mustDecimal(r.Open),
			High:      mustDecimal(r.High),
			Low:       mustDecimal(r.Low),
			Close:     mustDecimal(r.Close),
			Volume:    mustDecimal(r.Volume),
			Turnover:  mustDecimal(r.Turnover),
		}
	}
	return bars, nil
}

// HydrateLoader fills a MemoryLoader with the cached bars of each symbol in
// symbols; symbols with no cached bars are skipped.
func (d *Database) HydrateLoader(loader *marketdata.MemoryLoader, symbols []string) error {
	for _, symbol := range symbols {
		bars, err := d.LoadKline(symbol)
		if err != nil {
			return err
		}
		if len(bars) > 0 {
			loader.Load(symbol, bars)
		}
	}
	return nil
}

// Close releases the underlying connection.
func (d *Database) Close() error {
	if !d.enabled {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func mustDecimal(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}

package cli

import (
	"fmt"
	"time"

	"github.com/rustyeddy/paperdesk/account"
	"github.com/rustyeddy/paperdesk/config"
	"github.com/rustyeddy/paperdesk/journal"
	"github.com/rustyeddy/paperdesk/mirror"
	"github.com/rustyeddy/paperdesk/store"
)

func loadConfig(rc *RootConfig) (*config.Config, error) {
	var cfg *config.Config
	if rc.ConfigPath != "" {
		c, err := config.LoadFromFile(rc.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.Default()
		cfg.ApplyEnv()
	}

	// Flags beat config file and env.
	if rc.DBPath != "" {
		cfg.Storage.DBPath = rc.DBPath
		if cfg.Journal.Type == "" || cfg.Journal.Type == "sqlite" {
			cfg.Journal.Type = "sqlite"
			cfg.Journal.DBPath = rc.DBPath
		}
	}
	if rc.MirrorURL != "" {
		cfg.Mirror.URL = rc.MirrorURL
	}
	return cfg, nil
}

// openEngine assembles the engine from config: contract registry, fee
// model, snapshot store, journal, and mirror.
func openEngine(cfg *config.Config) (*account.Engine, error) {
	reg := cfg.Registry()
	fm := cfg.FeeModel(reg)

	var st store.SnapshotStore = store.NewMemory()
	if cfg.Storage.DBPath != "" {
		s, err := store.NewSQLite(cfg.Storage.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		st = s
	}

	var j journal.Journal = journal.Discard{}
	switch cfg.Journal.Type {
	case "sqlite":
		sj, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		j = sj
	case "csv":
		cj, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		j = cj
	}

	var pub mirror.Publisher = mirror.Noop{}
	if cfg.Mirror.URL != "" {
		pub = mirror.NewHTTP(cfg.Mirror.URL, cfg.Mirror.QueueSize)
	}

	return account.New(account.Config{
		Contracts:       reg,
		Fees:            &fm,
		Store:           st,
		Journal:         j,
		Mirror:          pub,
		StartingBalance: cfg.Account.Balance,
	})
}

// withEngine opens the engine for one command, runs fn and flushes the
// final snapshot on the way out.
func withEngine(rc *RootConfig, fn func(*account.Engine) error) error {
	cfg, err := loadConfig(rc)
	if err != nil {
		return err
	}
	e, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}

func printAccount(e *account.Engine) error {
	s := e.State()
	fmt.Printf("balance=%.2f equity=%.2f unrealized=%.2f open=%d closed=%d\n",
		s.Balance, s.Equity, s.UnrealizedPnl, len(s.Positions), len(s.TradeHistory))
	for _, p := range s.Positions {
		fmt.Printf("  %s %-6s %-5s size=%.2f entry=%.2f upl=%.2f\n",
			p.ID, p.Symbol, p.Side, p.Size, p.EntryPrice, p.UnrealizedPnl)
	}
	return nil
}

// openJournalDB opens the sqlite journal for read-only queries.
func openJournalDB(cfg *config.Config) (*journal.SQLite, error) {
	if cfg.Journal.Type != "sqlite" || cfg.Journal.DBPath == "" {
		return nil, fmt.Errorf("journal queries need journal.type=sqlite in config (or --db)")
	}
	return journal.NewSQLite(cfg.Journal.DBPath)
}

// journalQuerier is what the journal subcommands need from the store.
type journalQuerier interface {
	GetTrade(tradeID string) (journal.TradeRecord, error)
	ListTradesClosedBetween(start, end time.Time) ([]journal.TradeRecord, error)
}

func withJournal(rc *RootConfig, fn func(journalQuerier) error) error {
	cfg, err := loadConfig(rc)
	if err != nil {
		return err
	}
	j, err := openJournalDB(cfg)
	if err != nil {
		return err
	}
	defer j.Close()
	return fn(j)
}

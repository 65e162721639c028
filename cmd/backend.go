package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/roomdesk/internal/utils"
	"github.com/sw33tLie/roomdesk/pkg/cache"
	"github.com/sw33tLie/roomdesk/pkg/dashboard"
	"github.com/sw33tLie/roomdesk/pkg/source"
	"github.com/sw33tLie/roomdesk/pkg/source/pubhtml"
	"github.com/sw33tLie/roomdesk/pkg/source/sheets"
	"github.com/sw33tLie/roomdesk/pkg/storage"
)

// backend bundles a source with whatever must be released afterwards.
type backend struct {
	Source source.Source
	DB     *storage.DB // set for the sqlite backend, nil otherwise
	dbPath string
	close  func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func newSheetsClient(cmd *cobra.Command) (*sheets.Client, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	id := viper.GetString("sheets.spreadsheet_id")
	if id == "" {
		return nil, fmt.Errorf("sheets.spreadsheet_id is not set in the config file")
	}
	return sheets.New(sheets.Config{
		SpreadsheetID: id,
		Token:         viper.GetString("sheets.token"),
		APIKey:        viper.GetString("sheets.api_key"),
		Timeout:       time.Duration(viper.GetInt("sheets.timeout_seconds")) * time.Second,
		RetryMax:      viper.GetInt("sheets.retry_max"),
		Proxy:         proxy,
		Log:           utils.Log,
	})
}

func openMirror() (*storage.DB, error) {
	db, _, err := openMirrorAt(viper.GetString("sqlite.path"))
	return db, err
}

func openMirrorAt(path string) (*storage.DB, string, error) {
	dbPath, err := utils.GetAbsDBPath(path)
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, "", err
	}
	db, err := storage.Open(dbPath)
	return db, dbPath, err
}

// lockMirror takes the mirror's writer lock when the backend is the SQLite
// mirror. Other backends get a no-op unlock.
func lockMirror(b *backend) (func() error, error) {
	if b.DB == nil {
		return func() error { return nil }, nil
	}
	lock, err := utils.NewDBLock(b.dbPath)
	if err != nil {
		return nil, err
	}
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	return lock.Unlock, nil
}

func openBackend(cmd *cobra.Command) (*backend, error) {
	switch kind := viper.GetString("backend"); kind {
	case "sheets":
		c, err := newSheetsClient(cmd)
		if err != nil {
			return nil, err
		}
		return &backend{Source: c}, nil
	case "sqlite":
		db, dbPath, err := openMirrorAt(viper.GetString("sqlite.path"))
		if err != nil {
			return nil, err
		}
		return &backend{Source: db, DB: db, dbPath: dbPath, close: db.Close}, nil
	case "pubhtml":
		proxy, _ := cmd.Flags().GetString("proxy")
		s, err := pubhtml.New(pubhtml.Config{
			URL:      viper.GetString("pubhtml.url"),
			GIDs:     viper.GetStringMapString("pubhtml.gids"),
			Timeout:  time.Duration(viper.GetInt("sheets.timeout_seconds")) * time.Second,
			RetryMax: viper.GetInt("sheets.retry_max"),
			Proxy:    proxy,
			Log:      utils.Log,
		})
		if err != nil {
			return nil, err
		}
		return &backend{Source: s}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (use sheets, sqlite or pubhtml)", kind)
	}
}

// newService wires the configured backend, a row cache and the dashboard
// service. Writes are audited when the mirror is the backend.
func newService(cmd *cobra.Command) (*dashboard.Service, *backend, error) {
	b, err := openBackend(cmd)
	if err != nil {
		return nil, nil, err
	}

	cfg := dashboard.Config{
		Source: b.Source,
		Cache:  cache.New(time.Duration(viper.GetInt("cache.ttl_seconds")) * time.Second),
		Log:    utils.Log,
	}
	if b.DB != nil {
		cfg.Auditor = b.DB
	}

	svc, err := dashboard.New(cfg)
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return svc, b, nil
}

package badger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// store owns the BadgerDB handle backing a chunk index. Chunk payloads
// carry embedded vectors and compress poorly, so compression stays off.
type store struct {
	db *badger.DB
}

// openStore opens the database at path, creating the directory when
// missing. An empty path opens an in-memory store.
func openStore(path string) (*store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = slogAdapter{logger: slog.Default().With("component", "badger")}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &store{db: db}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func (s *store) close() error {
	return s.db.Close()
}

func (s *store) closed() bool {
	return s.db.IsClosed()
}

// view runs fn in a read-only transaction.
func (s *store) view(fn func(tx *badger.Txn) error) error {
	tx := s.db.NewTransaction(false)
	defer tx.Discard()
	return fn(tx)
}

// update runs fn in a read-write transaction. fn must commit explicitly;
// the transaction is discarded when it does not.
func (s *store) update(fn func(tx *badger.Txn) error) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()
	return fn(tx)
}

// slogAdapter routes BadgerDB's internal logging onto slog.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = slogAdapter{}

func (a slogAdapter) Errorf(format string, args ...any) {
	a.logger.Error(fmt.Sprintf(format, args...))
}

func (a slogAdapter) Warningf(format string, args ...any) {
	a.logger.Warn(fmt.Sprintf(format, args...))
}

func (a slogAdapter) Infof(format string, args ...any) {
	a.logger.Info(fmt.Sprintf(format, args...))
}

func (a slogAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}

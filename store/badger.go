package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	// Path is the database directory; ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM (tests, ephemeral servers).
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Logger receives BadgerDB's internal log lines; nil silences them.
	Logger *slog.Logger

	// GCInterval is the value-log GC period; 0 disables GC.
	GCInterval time.Duration

	// GCDiscardRatio is the garbage fraction that triggers a rewrite.
	GCDiscardRatio float64

	// SaveRetries bounds retries of a Save that lost a version race.
	SaveRetries int
}

// DefaultBadgerConfig returns the persistent configuration used by the server.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
		SaveRetries:    5,
	}
}

// InMemoryBadgerConfig returns a RAM-only configuration without GC.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true, SaveRetries: 5}
}

// slogBadger forwards BadgerDB logging to slog.
type slogBadger struct{ l *slog.Logger }

func (b slogBadger) Errorf(format string, args ...any) { b.l.Error(fmt.Sprintf(format, args...)) }

func (b slogBadger) Warningf(format string, args ...any) { b.l.Warn(fmt.Sprintf(format, args...)) }

func (b slogBadger) Infof(format string, args ...any) { b.l.Info(fmt.Sprintf(format, args...)) }

func (b slogBadger) Debugf(format string, args ...any) { b.l.Debug(fmt.Sprintf(format, args...)) }

// BadgerStore is a Store on an embedded BadgerDB. Safe for concurrent use.
//
// Layout:
//   - "obj/<ws>/<name>/<ver%010d>" → JSON Object
//   - "latest/<ws>/<name>"         → latest version number
type BadgerStore struct {
	db      *badger.DB
	retries int
	log     *slog.Logger
	stop    chan struct{}
	done    chan struct{}
	now     func() time.Time
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens (creating if needed) a BadgerStore and starts value-log
// GC when configured for a persistent database.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	switch {
	case cfg.InMemory:
		opts = badger.DefaultOptions("").WithInMemory(true)
	case cfg.Path == "":
		return nil, errors.New("store: badger path is required for a persistent database")
	default:
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(slogBadger{l: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &BadgerStore{db: db, retries: max(cfg.SaveRetries, 1), log: log, now: time.Now}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stop, s.done = make(chan struct{}), make(chan struct{})
		go s.gcLoop(cfg.GCInterval, cfg.GCDiscardRatio)
	}

	return s, nil
}

// Close stops GC and closes the database.
func (s *BadgerStore) Close() error {
	if s.stop != nil {
		close(s.stop)
		<-s.done
		s.stop = nil
	}

	return s.db.Close()
}

func (s *BadgerStore) gcLoop(interval time.Duration, ratio float64) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(ratio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Warn("badger value log GC failed", slog.String("error", err.Error()))
			}
		}
	}
}

func objectKey(ws, name string, ver int) []byte {
	return fmt.Appendf(nil, "obj/%s/%s/%010d", ws, name, ver)
}

func latestKey(ws, name string) []byte {
	return fmt.Appendf(nil, "latest/%s/%s", ws, name)
}

// latestVersion returns 0 when ws/name was never saved.
func latestVersion(txn *badger.Txn, ws, name string) (int, error) {
	item, err := txn.Get(latestKey(ws, name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var ver int
	err = item.Value(func(val []byte) error {
		ver, err = strconv.Atoi(string(val))
		return err
	})

	return ver, err
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, ref string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	obj := new(Object)
	err = s.db.View(func(txn *badger.Txn) error {
		ver := r.Version
		if ver == 0 {
			if ver, err = latestVersion(txn, r.Workspace, r.Name); err != nil {
				return err
			}
			if ver == 0 {
				return ErrNotFound
			}
		}
		item, err := txn.Get(objectKey(r.Workspace, r.Name, ver))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error { return json.Unmarshal(val, obj) })
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}

	return obj, nil
}

// Save implements Store. Concurrent saves of the same name are serialized by
// optimistic transactions and retried on conflict.
func (s *BadgerStore) Save(ctx context.Context, ws, name, typ string, data any, provenance []ProvenanceAction) (ObjectInfo, error) {
	raw, err := encode(ws, name, data)
	if err != nil {
		return ObjectInfo{}, err
	}
	var info ObjectInfo
	for attempt := 0; attempt < s.retries; attempt++ {
		if err = ctx.Err(); err != nil {
			return ObjectInfo{}, err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			ver, err := latestVersion(txn, ws, name)
			if err != nil {
				return err
			}
			ver++
			info = ObjectInfo{
				ID:        uuid.NewString(),
				Ref:       Ref{Workspace: ws, Name: name, Version: ver}.String(),
				Workspace: ws,
				Name:      name,
				Version:   ver,
				Type:      typ,
				SavedAt:   s.now().UTC(),
			}
			body, err := json.Marshal(Object{Info: info, Data: raw, Provenance: provenance})
			if err != nil {
				return err
			}
			if err = txn.Set(objectKey(ws, name, ver), body); err != nil {
				return err
			}

			return txn.Set(latestKey(ws, name), []byte(strconv.Itoa(ver)))
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		s.log.Debug("badger save conflict, retrying",
			slog.String("ref", ws+"/"+name), slog.Int("attempt", attempt+1))
	}
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("store: save %s/%s: %w", ws, name, err)
	}

	return info, nil
}

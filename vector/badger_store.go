package vector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	badgerRecordPrefix = "rec:"
	badgerIDPrefix     = "id:"
	badgerSeqKey       = "meta:seq"
	badgerSeqBandwidth = 64
)

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless InMemory.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// Logger receives badger warnings and errors. Nil discards them.
	Logger *slog.Logger
}

// BadgerStore is a Store backed by BadgerDB. Records are msgpack encoded
// under zero-padded sequence keys so that key order is insertion order; an
// id index maps record ids to their sequence.
type BadgerStore struct {
	db       *badger.DB
	seq      *badger.Sequence
	revision atomic.Uint64
}

type badgerRecord struct {
	ID       string               `msgpack:"id"`
	Metadata map[string]any       `msgpack:"meta,omitempty"`
	Vectors  map[string][]float32 `msgpack:"vectors,omitempty"`
}

// NewBadgerStore opens a BadgerDB-backed Store.
func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("vector: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{logger: opts.Logger})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("vector: open badger: %w", err)
	}
	seq, err := db.GetSequence([]byte(badgerSeqKey), badgerSeqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("vector: badger sequence: %w", err)
	}
	return &BadgerStore{db: db, seq: seq}, nil
}

// Insert upserts the record. An existing record keeps its sequence position.
func (s *BadgerStore) Insert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(rec); err != nil {
		return err
	}
	value, err := msgpack.Marshal(toBadgerRecord(rec))
	if err != nil {
		return fmt.Errorf("vector: encode record %s: %w", rec.ID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		idKey := []byte(badgerIDPrefix + rec.ID)
		recKey, err := lookupRecordKey(txn, idKey)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			n, err := s.seq.Next()
			if err != nil {
				return err
			}
			recKey = recordKey(n)
			if err := txn.Set(idKey, recKey); err != nil {
				return err
			}
		case err != nil:
			return err
		}
		return txn.Set(recKey, value)
	})
	if err != nil {
		return fmt.Errorf("vector: insert %s: %w", rec.ID, err)
	}
	s.revision.Add(1)
	return nil
}

// FetchAll decodes every record in insertion order.
func (s *BadgerStore) FetchAll(ctx context.Context) ([]Record, error) {
	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(badgerRecordPrefix)
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var br badgerRecord
			if err := msgpack.Unmarshal(val, &br); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, br.toRecord())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vector: fetch all: %w", err)
	}
	return out, nil
}

// Delete removes the record with the given id.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		idKey := []byte(badgerIDPrefix + id)
		recKey, err := lookupRecordKey(txn, idKey)
		if err != nil {
			return err
		}
		if err := txn.Delete(recKey); err != nil {
			return err
		}
		return txn.Delete(idKey)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("vector: delete %s: %w", id, err)
	}
	s.revision.Add(1)
	return nil
}

// Revision implements Revisioned.
func (s *BadgerStore) Revision() uint64 { return s.revision.Load() }

// Close releases the sequence lease and closes the database.
func (s *BadgerStore) Close() error {
	return errors.Join(s.seq.Release(), s.db.Close())
}

func lookupRecordKey(txn *badger.Txn, idKey []byte) ([]byte, error) {
	item, err := txn.Get(idKey)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func recordKey(n uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", badgerRecordPrefix, n))
}

func toBadgerRecord(rec Record) badgerRecord {
	br := badgerRecord{ID: rec.ID, Metadata: rec.Metadata}
	if len(rec.Vectors) > 0 {
		br.Vectors = make(map[string][]float32, len(rec.Vectors))
		for k, v := range rec.Vectors {
			if len(v) == 0 {
				continue
			}
			br.Vectors[string(k)] = v
		}
	}
	return br
}

func (br badgerRecord) toRecord() Record {
	rec := Record{ID: br.ID, Metadata: Metadata(br.Metadata), Vectors: make(map[Kind]Vector, len(br.Vectors))}
	if rec.Metadata == nil {
		rec.Metadata = Metadata{}
	}
	for k, v := range br.Vectors {
		rec.Vectors[Kind(k)] = v
	}
	return rec
}

// badgerLogger forwards badger warnings and errors to slog and drops the
// chatty info/debug output.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) {
	if l.logger != nil {
		l.logger.Error(fmt.Sprintf(f, v...), "component", "badger")
	}
}

func (l badgerLogger) Warningf(f string, v ...interface{}) {
	if l.logger != nil {
		l.logger.Warn(fmt.Sprintf(f, v...), "component", "badger")
	}
}

func (badgerLogger) Infof(string, ...interface{})  {}
func (badgerLogger) Debugf(string, ...interface{}) {}

var (
	_ Store      = (*BadgerStore)(nil)
	_ Revisioned = (*BadgerStore)(nil)
)

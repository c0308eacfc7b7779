package registryd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/registradesk/registra/internal/record"
)

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence surface the registry server writes records
// through. KVStore backs production use; MemoryStore backs tests.
type Store interface {
	Put(ctx context.Context, rec record.Record) error
	Get(ctx context.Context, id string) (*record.Record, error)
	List(ctx context.Context, t record.Type) ([]record.Record, error)
	NextSeq(ctx context.Context) (uint64, error)
}

const (
	recordKeyPrefix = "record."
	seqKey          = "seq.counter"
)

// KVStore persists records in a JetStream key-value bucket.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore creates a store over the given bucket.
func NewKVStore(kv jetstream.KeyValue) *KVStore {
	return &KVStore{kv: kv}
}

// Put writes a record keyed by its ID.
func (s *KVStore) Put(ctx context.Context, rec record.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	if _, err := s.kv.Put(ctx, recordKeyPrefix+rec.ID, data); err != nil {
		return fmt.Errorf("writing record %s: %w", rec.ID, err)
	}
	return nil
}

// Get reads one record by ID.
func (s *KVStore) Get(ctx context.Context, id string) (*record.Record, error) {
	entry, err := s.kv.Get(ctx, recordKeyPrefix+id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	var rec record.Record
	if err := json.Unmarshal(entry.Value(), &rec); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", id, err)
	}
	return &rec, nil
}

// List returns all records of a type, newest first.
func (s *KVStore) List(ctx context.Context, t record.Type) ([]record.Record, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}

	var out []record.Record
	for key := range lister.Keys() {
		if !strings.HasPrefix(key, recordKeyPrefix) {
			continue
		}
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue // Deleted between list and get
			}
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		var rec record.Record
		if err := json.Unmarshal(entry.Value(), &rec); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", key, err)
		}
		if t == "" || rec.Type == t {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// NextSeq returns the next registry sequence number using a CAS loop on
// the counter key.
func (s *KVStore) NextSeq(ctx context.Context) (uint64, error) {
	for {
		entry, err := s.kv.Get(ctx, seqKey)
		if err != nil {
			if !errors.Is(err, jetstream.ErrKeyNotFound) {
				return 0, fmt.Errorf("reading sequence: %w", err)
			}
			if _, err := s.kv.Create(ctx, seqKey, []byte("1")); err != nil {
				if errors.Is(err, jetstream.ErrKeyExists) {
					continue // Lost the race, retry
				}
				return 0, fmt.Errorf("initializing sequence: %w", err)
			}
			return 1, nil
		}

		current, err := strconv.ParseUint(string(entry.Value()), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt sequence value %q: %w", entry.Value(), err)
		}
		next := current + 1
		if _, err := s.kv.Update(ctx, seqKey, []byte(strconv.FormatUint(next, 10)), entry.Revision()); err != nil {
			if isWrongRevision(err) {
				continue // Concurrent bump, retry
			}
			return 0, fmt.Errorf("updating sequence: %w", err)
		}
		return next, nil
	}
}

// isWrongRevision reports whether a KV update failed its compare-and-swap
// because another writer bumped the key first.
func isWrongRevision(err error) bool {
	var apiErr *jetstream.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]record.Record
	seq     uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]record.Record)}
}

// Put stores a record.
func (s *MemoryStore) Put(_ context.Context, rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Fields = rec.Fields.Clone()
	s.records[rec.ID] = rec
	return nil
}

// Get returns one record by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Fields = rec.Fields.Clone()
	return &rec, nil
}

// List returns all records of a type, newest first.
func (s *MemoryStore) List(_ context.Context, t record.Type) ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Record
	for _, rec := range s.records {
		if t == "" || rec.Type == t {
			rec.Fields = rec.Fields.Clone()
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// NextSeq returns the next registry sequence number.
func (s *MemoryStore) NextSeq(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

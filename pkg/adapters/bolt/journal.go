// Package bolt persists event responses in a BoltDB file.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/aretw0/kiteflow/pkg/domain"
)

var responsesBucket = []byte("responses")

// ErrNotFound is returned by Get for an unknown event id.
var ErrNotFound = errors.New("journal record not found")

// Record is one journaled response.
type Record struct {
	Seq        uint64               `json:"seq"`
	EventID    string               `json:"event_id"`
	EventKind  string               `json:"event_kind"`
	Response   domain.EventResponse `json:"response"`
	RecordedAt time.Time            `json:"recorded_at"`
}

// Journal implements ports.ResponseSink. Records are keyed by event id;
// responding twice for the same id keeps the latest record.
type Journal struct {
	filename string
	db       *bolt.DB
	now      func() time.Time
}

// Open opens (or creates) the journal file.
func Open(filename string) (*Journal, error) {
	db, err := bolt.Open(filename, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", filename, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(responsesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}
	return &Journal{filename: filename, db: db, now: time.Now}, nil
}

// Close releases the file lock.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Respond stores resp under the event id.
func (j *Journal) Respond(ctx context.Context, event domain.Event, resp domain.EventResponse) error {
	if event.ID == "" {
		return errors.New("journal requires an event id")
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(responsesBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		js, err := json.Marshal(Record{
			Seq:        seq,
			EventID:    event.ID,
			EventKind:  event.Kind,
			Response:   resp,
			RecordedAt: j.now().UTC(),
		})
		if err != nil {
			return err
		}
		return b.Put([]byte(event.ID), js)
	})
}

// Get returns the record of one event.
func (j *Journal) Get(ctx context.Context, eventID string) (Record, error) {
	var rec Record
	err := j.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket(responsesBucket).Get([]byte(eventID))
		if bs == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, eventID)
		}
		return json.Unmarshal(bs, &rec)
	})
	return rec, err
}

// List returns every record in write order.
func (j *Journal) List(ctx context.Context) ([]Record, error) {
	recs := make([]Record, 0, 32)
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(responsesBucket).Cursor()
		for k, bs := c.First(); k != nil; k, bs = c.Next() {
			var rec Record
			if err := json.Unmarshal(bs, &rec); err != nil {
				return fmt.Errorf("corrupt record %s: %w", k, err)
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(a, b int) bool { return recs[a].Seq < recs[b].Seq })
	return recs, nil
}

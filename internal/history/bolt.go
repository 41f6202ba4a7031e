package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/oops"
	bolt "go.etcd.io/bbolt"

	"github.com/m3rciful/yeabuddy/internal/workout"
)

var workoutsBucket = []byte("workouts")

// BoltStore keeps history in a local bbolt file. Each owner gets a nested bucket
// keyed by zero-padded start time so cursor order equals chronological order.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database file at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, oops.In("history").Code("bolt_open").With("path", path).Wrapf(err, "open bolt db")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(workoutsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, oops.In("history").Code("bolt_init").Wrapf(err, "create bucket")
	}
	return &BoltStore{db: db}, nil
}

func ownerKey(owner int64) []byte {
	return []byte(strconv.FormatInt(owner, 10))
}

func recordKey(start time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%020d-%s", start.UTC().UnixNano(), id))
}

// Save stores s under its owner and returns the new id.
func (b *BoltStore) Save(_ context.Context, s workout.Session) (string, error) {
	if err := validate(s); err != nil {
		return "", err
	}
	rec := Record{ID: newID(), Session: s}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", oops.In("history").Code("bolt_encode").Wrapf(err, "encode workout")
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		owners := tx.Bucket(workoutsBucket)
		bucket, err := owners.CreateBucketIfNotExists(ownerKey(s.Owner))
		if err != nil {
			return err
		}
		return bucket.Put(recordKey(s.StartTime, rec.ID), data)
	})
	if err != nil {
		return "", oops.In("history").Code("bolt_save").Wrapf(err, "save workout")
	}
	return rec.ID, nil
}

// Recent walks the owner's bucket backwards from the newest key.
func (b *BoltStore) Recent(_ context.Context, owner int64, limit int) ([]Record, error) {
	limit = normalizeLimit(limit)
	var out []Record
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(workoutsBucket).Bucket(ownerKey(owner))
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, oops.In("history").Code("bolt_read").Wrapf(err, "list workouts")
	}
	return out, nil
}

// Count returns the number of keys in the owner's bucket.
func (b *BoltStore) Count(_ context.Context, owner int64) (int, error) {
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket(workoutsBucket).Bucket(ownerKey(owner)); bucket != nil {
			n = bucket.Stats().KeyN
		}
		return nil
	})
	return n, err
}

// Close releases the file lock.
func (b *BoltStore) Close() error {
	return b.db.Close()
}

package estimate

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	estimateBucketName   = "estimates"
	comparisonBucketName = "comparisons"
)

// DB defines the interface for database operations
type DB interface {
	// SaveEstimate saves an estimate to the database
	SaveEstimate(estimate *Estimate) error

	// GetEstimate retrieves an estimate by ID
	GetEstimate(id string) (*Estimate, error)

	// ListEstimates returns all estimates
	ListEstimates() ([]*Estimate, error)

	// DeleteEstimate removes an estimate from the database
	DeleteEstimate(id string) error

	// SaveComparison saves a comparison to the database
	SaveComparison(comparison *Comparison) error

	// GetComparison retrieves a comparison by ID
	GetComparison(id string) (*Comparison, error)

	// ListComparisons returns all comparisons
	ListComparisons() ([]*Comparison, error)

	// DeleteComparison removes a comparison from the database
	DeleteComparison(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(estimateBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(comparisonBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveEstimate saves an estimate to the database
func (b *BoltDB) SaveEstimate(estimate *Estimate) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(estimateBucketName))
		data, err := json.Marshal(estimate)
		if err != nil {
			return fmt.Errorf("marshaling estimate: %w", err)
		}
		return bucket.Put([]byte(estimate.ID), data)
	})
}

// GetEstimate retrieves an estimate by ID
func (b *BoltDB) GetEstimate(id string) (*Estimate, error) {
	var estimate *Estimate
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(estimateBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("estimate not found: %s", id)
		}
		return json.Unmarshal(data, &estimate)
	})
	if err != nil {
		return nil, err
	}
	return estimate, nil
}

// ListEstimates returns all estimates
func (b *BoltDB) ListEstimates() ([]*Estimate, error) {
	estimates := make([]*Estimate, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(estimateBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var estimate Estimate
			if err := json.Unmarshal(v, &estimate); err != nil {
				return fmt.Errorf("unmarshaling estimate: %w", err)
			}
			estimates = append(estimates, &estimate)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return estimates, nil
}

// DeleteEstimate removes an estimate from the database
func (b *BoltDB) DeleteEstimate(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(estimateBucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("estimate not found: %s", id)
		}
		return bucket.Delete([]byte(id))
	})
}

// SaveComparison saves a comparison to the database
func (b *BoltDB) SaveComparison(comparison *Comparison) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(comparisonBucketName))
		data, err := json.Marshal(comparison)
		if err != nil {
			return fmt.Errorf("marshaling comparison: %w", err)
		}
		return bucket.Put([]byte(comparison.ID), data)
	})
}

// GetComparison retrieves a comparison by ID
func (b *BoltDB) GetComparison(id string) (*Comparison, error) {
	var comparison *Comparison
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(comparisonBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("comparison not found: %s", id)
		}
		return json.Unmarshal(data, &comparison)
	})
	if err != nil {
		return nil, err
	}
	return comparison, nil
}

// ListComparisons returns all comparisons
func (b *BoltDB) ListComparisons() ([]*Comparison, error) {
	comparisons := make([]*Comparison, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(comparisonBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var comparison Comparison
			if err := json.Unmarshal(v, &comparison); err != nil {
				return fmt.Errorf("unmarshaling comparison: %w", err)
			}
			comparisons = append(comparisons, &comparison)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return comparisons, nil
}

// DeleteComparison removes a comparison from the database
func (b *BoltDB) DeleteComparison(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(comparisonBucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("comparison not found: %s", id)
		}
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}

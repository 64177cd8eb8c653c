package kvdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meghashyamc/apotek/logger"
	bolt "go.etcd.io/bbolt"
)

type BoltDB struct {
	store  *bolt.DB
	logger logger.Logger
}

// New opens (or creates) the bbolt file at path and makes sure every bucket exists.
func New(logger logger.Logger, path string, buckets []string) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("failed to create key-value database directory", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to create key-value database directory: %w", err)
	}

	store, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		logger.Error("failed to open database", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	boltDB := &BoltDB{
		store:  store,
		logger: logger,
	}

	if err := boltDB.initBuckets(buckets); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return boltDB, nil
}

func (b *BoltDB) initBuckets(buckets []string) error {
	return b.store.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				b.logger.Error("failed to create bucket", "bucket", name, "err", err.Error())
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

func (b *BoltDB) Set(bucketName string, key string, value string) error {
	if key == "" {
		b.logger.Error("key cannot be empty", "bucket", bucketName)
		return &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx, bucketName)
		if err != nil {
			return err
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			b.logger.Error("failed to set key", "bucket", bucketName, "key", key, "err", err.Error())
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}

		return nil
	})
}

func (b *BoltDB) Get(bucketName string, key string) (string, error) {
	if key == "" {
		b.logger.Error("key cannot be empty", "bucket", bucketName)
		return "", &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	var value []byte
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx, bucketName)
		if err != nil {
			return err
		}

		v := bucket.Get([]byte(key))
		if v == nil {
			return &NotFoundError{Bucket: bucketName, Key: key}
		}

		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})

	if err != nil {
		var notFoundErr *NotFoundError
		if errors.As(err, &notFoundErr) {
			b.logger.Debug("key not found", "bucket", bucketName, "key", key)
			return "", notFoundErr
		}
		return "", err
	}

	return string(value), nil
}

// GetAll returns every value in the bucket in key order.
func (b *BoltDB) GetAll(bucketName string) ([]string, error) {
	values := make([]string, 0)
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx, bucketName)
		if err != nil {
			return err
		}

		return bucket.ForEach(func(_, v []byte) error {
			values = append(values, string(v))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return values, nil
}

func (b *BoltDB) Delete(bucketName string, key string) error {
	if key == "" {
		b.logger.Error("key cannot be empty", "bucket", bucketName)
		return &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bucket, err := b.bucket(tx, bucketName)
		if err != nil {
			return err
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			b.logger.Error("failed to delete key", "bucket", bucketName, "key", key, "err", err.Error())
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}

		return nil
	})
}

func (b *BoltDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

func (b *BoltDB) bucket(tx *bolt.Tx, name string) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(name))
	if bucket == nil {
		b.logger.Error("bucket not found", "bucket", name)
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, name)
	}

	return bucket, nil
}

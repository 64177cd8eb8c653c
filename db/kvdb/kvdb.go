package kvdb

// DB is a bucketed string store. Each master-data kind gets its own bucket.
type DB interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAll(bucket string) ([]string, error)
	Close() error
}

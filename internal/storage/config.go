package storage

// Defaults applied by the configuration loader when MINIO_BUCKET or
// MINIO_PREFIX are unset.
const (
	DefaultBucket = "docstore"
	DefaultPrefix = "documents/"
)

// MinIOConfig holds the connection settings of the S3-compatible document bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// Prefix is prepended to every document object key.
	Prefix string
}

// Package artifact stores generated images and sweeps old ones from disk.
//
// The worker hands image bytes to a Store and records the returned reference
// on the future viewing. LocalStore serves files from the static directory;
// an object storage implementation lives in internal/platform/minio.
package artifact

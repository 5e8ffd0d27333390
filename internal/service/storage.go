package service

import "context"

// ObjectStorage is the slice of the storage client the services need.
// Declared here so tests can substitute an in-memory fake; the concrete
// implementation is *storage.Client.
type ObjectStorage interface {
	// Upload stores content under key and returns its public URL.
	Upload(ctx context.Context, key string, content []byte, contentType string) (string, error)
	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a public URL previously returned by Upload back to
	// its object key, or "" when the URL is not ours.
	KeyFromURL(url string) string
}

// PhotoUpload is an image file received by a handler, decoded from the
// multipart form and handed to the service untouched.
type PhotoUpload struct {
	Filename string
	Content  []byte
}

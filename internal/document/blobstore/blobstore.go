// Package blobstore holds the raw bytes of uploaded documents. Records in
// the document store point here via locators.
package blobstore

import "context"

// Store is the blob persistence port.
type Store interface {
	// Put writes the content under key and returns a locator for it.
	Put(ctx context.Context, key string, content []byte, contentType string) (locator string, err error)
	// Delete removes the blob a locator points at. Deleting a missing
	// blob is not an error.
	Delete(ctx context.Context, locator string) error
}

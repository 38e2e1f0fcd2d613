package document

import (
	"motorcover/internal/document/blobstore"
	"motorcover/internal/document/service"
)

// Service uploads attachments and keeps one record per parent and type.
type Service = service.Service

// BlobStore is the blob persistence port.
type BlobStore = blobstore.Store

// NewService constructs the document service with required dependencies.
func NewService(documents service.DocumentStore, blobs blobstore.Store, opts ...service.Option) *Service {
	return service.New(documents, blobs, opts...)
}

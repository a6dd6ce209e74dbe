package auth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MaxUploadBytes caps a single identity document.
const MaxUploadBytes = 10 << 20

// Upload is a stored identity document. Contents are never inspected.
type Upload struct {
	Ref         string
	Name        string
	ContentType string
	Size        int
}

// UploadStore accepts identity documents and returns an opaque reference the
// flow record keeps in place of the file.
type UploadStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (Upload, error)
}

// MemoryUploads keeps uploads in memory.
type MemoryUploads struct {
	mu      sync.RWMutex
	uploads map[string]Upload
	data    map[string][]byte
}

// NewMemoryUploads returns an empty store.
func NewMemoryUploads() *MemoryUploads {
	return &MemoryUploads{
		uploads: make(map[string]Upload),
		data:    make(map[string][]byte),
	}
}

func (m *MemoryUploads) Put(ctx context.Context, name, contentType string, r io.Reader) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return Upload{}, fmt.Errorf("auth: read upload: %w", err)
	}
	if n > MaxUploadBytes {
		return Upload{}, fmt.Errorf("%w: %q exceeds %d bytes", ErrUploadTooLarge, name, MaxUploadBytes)
	}

	up := Upload{Ref: "upload-" + uuid.NewString(), Name: name, ContentType: contentType, Size: int(n)}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads[up.Ref] = up
	m.data[up.Ref] = buf.Bytes()
	return up, nil
}

// Get returns upload metadata by reference.
func (m *MemoryUploads) Get(ref string) (Upload, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	up, ok := m.uploads[ref]
	return up, ok
}

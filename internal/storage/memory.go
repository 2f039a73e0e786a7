package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryClient is an in-process Provider for tests, examples and single
// process prototypes. Buckets spring into existence on first use and nothing
// survives a restart.
type MemoryClient struct {
	mu      sync.Mutex
	buckets map[string]*MemoryBucket
}

// NewMemoryClient returns an empty in-memory provider.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{buckets: make(map[string]*MemoryBucket)}
}

// Bucket returns the bucket with the given name, creating it if needed.
func (c *MemoryClient) Bucket(name string) ObjectStorage {
	return c.MemoryBucket(name)
}

// MemoryBucket is Bucket with the concrete type, for seeding in tests.
func (c *MemoryClient) MemoryBucket(name string) *MemoryBucket {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buckets[name]
	if !ok {
		b = NewMemoryBucket()
		c.buckets[name] = b
	}
	return b
}

// MemoryBucket stores objects in a map guarded by an RWMutex. Data is copied
// on the way in and out.
type MemoryBucket struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryBucket returns an empty bucket.
func NewMemoryBucket() *MemoryBucket {
	return &MemoryBucket{objects: make(map[string][]byte)}
}

// Put stores a copy of data under key.
func (b *MemoryBucket) Put(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	b.objects[key] = cp
}

// Get returns a copy of the object at key.
func (b *MemoryBucket) Get(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, false
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true
}

// ListObjects returns matching keys in lexical order.
func (b *MemoryBucket) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	results := make([]ObjectInfo, 0, len(b.objects))
	for key, data := range b.objects {
		if strings.HasPrefix(key, prefix) {
			results = append(results, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	return results, nil
}

func (b *MemoryBucket) DownloadObject(ctx context.Context, key string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, ok := b.Get(key)
	if !ok {
		return markNotFound(fmt.Errorf("memory: no object %q", key))
	}
	_, err := w.Write(data)
	return err
}

func (b *MemoryBucket) UploadObject(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	if size >= 0 && int64(buf.Len()) != size {
		return fmt.Errorf("memory: short upload for %q: got %d bytes, want %d", key, buf.Len(), size)
	}
	b.Put(key, buf.Bytes())
	return nil
}

// DeleteObject removes key or reports ErrNotFound.
func (b *MemoryBucket) DeleteObject(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return markNotFound(fmt.Errorf("memory: no object %q", key))
	}
	delete(b.objects, key)
	return nil
}

var (
	_ Provider      = (*MemoryClient)(nil)
	_ ObjectStorage = (*MemoryBucket)(nil)
)

package s3

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// MemoryStore keeps uploaded assets in memory. It is safe for concurrent use
// and issues virtual-hosted style URLs for its bucket.
type MemoryStore struct {
	bucket  string
	prober  Prober
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty store. prober may be nil, in which case
// durations are reported as zero.
func NewMemoryStore(bucket string, prober Prober) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		prober:  prober,
		objects: make(map[string][]byte),
	}
}

func (m *MemoryStore) Upload(ctx context.Context, folder, localPath string) (*Asset, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	mtype := mimetype.Detect(data)
	key := objectKey(folder, localPath, mtype)

	asset := &Asset{
		URL:         m.URL(key),
		PublicID:    key,
		ContentType: mtype.String(),
		Size:        int64(len(data)),
	}
	if m.prober != nil {
		if asset.Duration, err = m.prober.Duration(ctx, localPath); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return asset, nil
}

func (m *MemoryStore) Exists(ctx context.Context, publicID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[publicID]
	return ok, nil
}

func (m *MemoryStore) Delete(ctx context.Context, publicID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[publicID]; !ok {
		return false, nil
	}
	delete(m.objects, publicID)
	return true, nil
}

func (m *MemoryStore) PublicIDFromURL(rawURL string) (string, error) {
	return PublicIDFromURL(m.bucket, rawURL)
}

// URL returns the address the store issues for key.
func (m *MemoryStore) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.memory.local/%s", m.bucket, key)
}

// Keys lists stored object keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

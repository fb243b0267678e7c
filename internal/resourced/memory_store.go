package resourced

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore はメモリ上のCollectionStore実装。
// テストと-memモードで使用し、プロセス終了とともにデータは消える。
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

// List はフィルタを満たす全ドキュメントを返す。
func (s *MemoryStore) List(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := []Document{}
	for _, doc := range s.collections[collection] {
		if filter.Matches(doc) {
			docs = append(docs, maps.Clone(doc))
		}
	}
	return docs, nil
}

// Get は指定IDのドキュメントを返す。見つからない場合はnilを返す。
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return maps.Clone(doc), nil
}

// Create はドキュメントを保存して返す。idフィールドがない場合は採番する。
func (s *MemoryStore) Create(ctx context.Context, collection string, doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := maps.Clone(doc)
	id, ok := stored["id"].(string)
	if !ok || id == "" {
		id = uuid.New().String()
		stored["id"] = id
	}

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	s.collections[collection][id] = stored
	return maps.Clone(stored), nil
}

// Replace は指定IDのドキュメント全体を置き換える。
func (s *MemoryStore) Replace(ctx context.Context, collection, id string, doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return nil, nil
	}

	stored := maps.Clone(doc)
	stored["id"] = id
	s.collections[collection][id] = stored
	return maps.Clone(stored), nil
}

// Patch は指定IDのドキュメントへ浅いマージを適用する。
func (s *MemoryStore) Patch(ctx context.Context, collection, id string, fields Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}

	merged := maps.Clone(doc)
	maps.Copy(merged, fields)
	merged["id"] = id
	s.collections[collection][id] = merged
	return maps.Clone(merged), nil
}

// Delete は指定IDのドキュメントを削除する。削除したかどうかを返す。
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return false, nil
	}
	delete(s.collections[collection], id)
	return true, nil
}

// compile-time interface check
var _ CollectionStore = (*MemoryStore)(nil)

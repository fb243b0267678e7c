package resourced

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore はPostgreSQLのdocumentsテーブルを使用したCollectionStore実装。
// ドキュメント本体はjsonbカラムに保持し、等値フィルタはjsonb演算子で評価する。
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore はPostgresStoreを生成する。
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// List はフィルタを満たす全ドキュメントを返す。
func (s *PostgresStore) List(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	query := "SELECT data FROM documents WHERE collection = $1"
	args := []any{collection}

	// map順序に依存しないようキーを安定させる
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, key, pq.Array(filter[key]))
		query += fmt.Sprintf(" AND data->>$%d = ANY($%d)", len(args)-1, len(args))
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc := Document{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// Get は指定IDのドキュメントを返す。見つからない場合はnilを返す。
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = $1 AND id = $2",
		collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// Create はドキュメントを保存して返す。idフィールドがない場合は採番する。
func (s *PostgresStore) Create(ctx context.Context, collection string, doc Document) (Document, error) {
	stored := make(Document, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	id, ok := stored["id"].(string)
	if !ok || id == "" {
		id = uuid.New().String()
		stored["id"] = id
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)",
		collection, id, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}
	return stored, nil
}

// Replace は指定IDのドキュメント全体を置き換える。
func (s *PostgresStore) Replace(ctx context.Context, collection, id string, doc Document) (Document, error) {
	stored := make(Document, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	stored["id"] = id

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE documents SET data = $3 WHERE collection = $1 AND id = $2",
		collection, id, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to replace document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return stored, nil
}

// Patch は指定IDのドキュメントへ浅いマージを適用する。
func (s *PostgresStore) Patch(ctx context.Context, collection, id string, fields Document) (Document, error) {
	// idフィールドの上書きは許可しない
	delete(fields, "id")

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch: %w", err)
	}

	var merged []byte
	err = s.db.QueryRowContext(ctx,
		"UPDATE documents SET data = data || $3::jsonb WHERE collection = $1 AND id = $2 RETURNING data",
		collection, id, raw).Scan(&merged)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to patch document: %w", err)
	}

	doc := Document{}
	if err := json.Unmarshal(merged, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// Delete は指定IDのドキュメントを削除する。削除したかどうかを返す。
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = $1 AND id = $2",
		collection, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// compile-time interface check
var _ CollectionStore = (*PostgresStore)(nil)

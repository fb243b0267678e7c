// Package resourced はjson-server互換の汎用リソースサーバーを提供する。
//
// コレクションごとにJSONドキュメントをそのまま保持し、クエリ文字列の
// 等値フィルタ・id指定のCRUD・PATCHの浅いマージだけを提供する。
// スキーマ検証や参照整合性は持たず、意味づけはすべてクライアント側が行う。
package resourced

import (
	"context"
	"fmt"
)

// Document はコレクションに格納されるJSONドキュメント。
type Document = map[string]any

// Filter はクエリ文字列の等値フィルタ。
// 同一キーの複数値はOR、キー間はANDで適用される。
type Filter map[string][]string

// Matches はドキュメントがフィルタを満たすかどうかを返す。
func (f Filter) Matches(doc Document) bool {
	for key, wanted := range f {
		value, ok := doc[key]
		if !ok {
			return false
		}
		str := fmt.Sprintf("%v", value)
		matched := false
		for _, w := range wanted {
			if str == w {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// CollectionStore はコレクション単位のドキュメント永続化インターフェース。
type CollectionStore interface {
	// List はフィルタを満たす全ドキュメントを返す。
	List(ctx context.Context, collection string, filter Filter) ([]Document, error)

	// Get は指定IDのドキュメントを返す。見つからない場合はnilを返す。
	Get(ctx context.Context, collection, id string) (Document, error)

	// Create はドキュメントを保存して返す。idフィールドがない場合は採番する。
	Create(ctx context.Context, collection string, doc Document) (Document, error)

	// Replace は指定IDのドキュメント全体を置き換える。
	// 存在しない場合は(nil, nil)を返す。
	Replace(ctx context.Context, collection, id string, doc Document) (Document, error)

	// Patch は指定IDのドキュメントへ浅いマージを適用する。
	// 存在しない場合は(nil, nil)を返す。
	Patch(ctx context.Context, collection, id string, fields Document) (Document, error)

	// Delete は指定IDのドキュメントを削除する。削除したかどうかを返す。
	Delete(ctx context.Context, collection, id string) (bool, error)
}

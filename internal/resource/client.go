// Package resource は外部リソースサーバーへの汎用コレクションクライアントを提供する。
//
// リソースサーバーはjson-server互換の契約を提供する外部コラボレーターとして扱う:
// コレクションのGETは配列、単一リソースのGETはオブジェクト、書き込みは
// 作成・更新後のオブジェクトを返し、等値クエリパラメータによる絞り込みに対応する。
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// 既知のコレクションパス。
const (
	CollectionUsers        = "users"
	CollectionOffers       = "offers"
	CollectionApplications = "applications"
)

// Error はリソースサーバーからの非成功レスポンスを表す。
// HTTPステータスとサーバーが返したメッセージを保持する。
type Error struct {
	StatusCode int
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("resource server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("resource server returned status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound はエラーがリソース未検出（404）かどうかを判定する。
// 呼び出し側はこれを「存在しない」という通常の結果として扱える。
func IsNotFound(err error) bool {
	var resErr *Error
	return errors.As(err, &resErr) && resErr.StatusCode == http.StatusNotFound
}

// Recorder はリソース呼び出しのメトリクス記録インターフェース。
type Recorder interface {
	RecordResourceCall(collection, method string, statusCode int, duration time.Duration)
}

// Client はリソースサーバーへのHTTPクライアント。
// リトライは行わず、明示的なタイムアウトも設定しない
// （注入されたhttp.Clientのデフォルトに従う）。失敗はすべて呼び出し側へ返す。
type Client struct {
	baseURL    string
	httpClient *http.Client
	recorder   Recorder // nil可
}

// New はClientを生成する。httpClientがnilの場合はhttp.DefaultClientを使用する。
func New(baseURL string, httpClient *http.Client, recorder Recorder) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		recorder:   recorder,
	}
}

// List はコレクションを等値フィルタ付きで取得し、destに配列をデコードする。
// 同一キーを複数回指定した場合はいずれかに一致（OR）、キー間はAND結合となる。
func (c *Client) List(ctx context.Context, collection string, filters url.Values, dest any) error {
	return c.do(ctx, http.MethodGet, collection, filters, nil, dest)
}

// Get は単一リソースを取得し、destにオブジェクトをデコードする。
// 未検出の場合は404を持つ*Errorを返す（IsNotFoundで判定できる）。
func (c *Client) Get(ctx context.Context, collection, id string, dest any) error {
	return c.do(ctx, http.MethodGet, collection+"/"+id, nil, nil, dest)
}

// Create はリソースを作成し、destに作成後のオブジェクトをデコードする。
func (c *Client) Create(ctx context.Context, collection string, body, dest any) error {
	return c.do(ctx, http.MethodPost, collection, nil, body, dest)
}

// Replace はリソース全体を置き換え、destに更新後のオブジェクトをデコードする。
func (c *Client) Replace(ctx context.Context, collection, id string, body, dest any) error {
	return c.do(ctx, http.MethodPut, collection+"/"+id, nil, body, dest)
}

// Patch はリソースを部分更新し、destに更新後のオブジェクトをデコードする。
func (c *Client) Patch(ctx context.Context, collection, id string, body, dest any) error {
	return c.do(ctx, http.MethodPatch, collection+"/"+id, nil, body, dest)
}

// Delete はリソースを削除する。
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, collection+"/"+id, nil, nil, nil)
}

// do はHTTPリクエストを1回だけ実行する。非成功ステータスは*Errorに変換する。
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	fullURL := c.baseURL + "/" + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("resource request failed: %w", err)
	}
	defer resp.Body.Close()

	if c.recorder != nil {
		c.recorder.RecordResourceCall(collectionOf(path), method, resp.StatusCode, time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newErrorFromResponse(resp)
	}

	if dest == nil {
		// ボディは読み捨ててコネクションを再利用可能にする
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// newErrorFromResponse は非成功レスポンスを*Errorに変換する。
// サーバーが{"message": ...}形式を返した場合はそのメッセージを採用し、
// それ以外はボディ全体をメッセージとして保持する。
func newErrorFromResponse(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	resErr := &Error{StatusCode: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		resErr.Message = body.Message
	} else {
		resErr.Message = string(bytes.TrimSpace(raw))
	}
	return resErr
}

// collectionOf はパス先頭のコレクション名を返す（メトリクスラベル用）。
func collectionOf(path string) string {
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return path
}

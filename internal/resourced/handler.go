package resourced

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// allowedCollections は公開するコレクションの許可リスト。
// 許可外のパスはドキュメントの有無にかかわらず404を返す。
var allowedCollections = map[string]bool{
	"users":        true,
	"offers":       true,
	"applications": true,
}

// Handler はjson-server互換のHTTPハンドラー。
type Handler struct {
	store  CollectionStore
	logger *slog.Logger
}

// NewHandler はHandlerを生成する。
func NewHandler(store CollectionStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Routes はリソースサーバーのルーティングを構築する。
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/{collection}", func(r chi.Router) {
		r.Use(h.requireKnownCollection)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.replace)
			r.Patch("/", h.patch)
			r.Delete("/", h.delete)
		})
	})
	return r
}

// requireKnownCollection は許可リスト外のコレクションを404にする。
func (h *Handler) requireKnownCollection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowedCollections[chi.URLParam(r, "collection")] {
			h.writeError(w, http.StatusNotFound, "指定されたコレクションは存在しません。")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	filter := Filter{}
	for key, values := range r.URL.Query() {
		filter[key] = values
	}

	docs, err := h.store.List(r.Context(), collection, filter)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Get(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if doc == nil {
		h.writeError(w, http.StatusNotFound, "指定されたドキュメントは存在しません。")
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}

	created, err := h.store.Create(r.Context(), chi.URLParam(r, "collection"), doc)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}

	replaced, err := h.store.Replace(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"), doc)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if replaced == nil {
		h.writeError(w, http.StatusNotFound, "指定されたドキュメントは存在しません。")
		return
	}
	h.writeJSON(w, http.StatusOK, replaced)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}

	patched, err := h.store.Patch(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if patched == nil {
		h.writeError(w, http.StatusNotFound, "指定されたドキュメントは存在しません。")
		return
	}
	h.writeJSON(w, http.StatusOK, patched)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.Delete(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if !deleted {
		h.writeError(w, http.StatusNotFound, "指定されたドキュメントは存在しません。")
		return
	}
	h.writeJSON(w, http.StatusOK, Document{})
}

func (h *Handler) decodeDocument(w http.ResponseWriter, r *http.Request) (Document, bool) {
	doc := Document{}
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.writeError(w, http.StatusBadRequest, "リクエストボディのJSONが不正です。")
		return nil, false
	}
	return doc, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("store operation failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	h.writeError(w, http.StatusInternalServerError, "サーバー内部でエラーが発生しました。")
}

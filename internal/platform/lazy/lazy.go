// Package lazy は初回利用時に一度だけ構築される共有ハンドルを提供します。
package lazy

import (
	"context"
	"sync"
)

// Handle は重いリソース（モデルクライアントなど）を初回の Get で構築し、以後は同じ値を返します。
//
// 同時に最初の Get が呼ばれた場合は1回だけ構築され、他の呼び出しはその結果を待ちます。
// 待機中の呼び出しは自身の ctx が終了すると待機をやめます。
// 構築に失敗した場合は結果を保持せず、次の Get で再試行します。
type Handle[T any] struct {
	build func(ctx context.Context) (T, error)
	// sem は構築権を表す容量1のセマフォです。
	sem chan struct{}

	mu    sync.RWMutex
	value T
	ready bool
}

// New は build を使うハンドルを生成します。
func New[T any](build func(ctx context.Context) (T, error)) *Handle[T] {
	return &Handle[T]{build: build, sem: make(chan struct{}, 1)}
}

// Get は構築済みの値を返します。未構築なら構築します。
// 構築は構築権を得た呼び出しの ctx で行われます。
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	if v, ok := h.load(); ok {
		return v, nil
	}

	select {
	case h.sem <- struct{}{}:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	defer func() { <-h.sem }()

	// 待機中に他の呼び出しが構築を終えている場合
	if v, ok := h.load(); ok {
		return v, nil
	}
	v, err := h.build(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	h.mu.Lock()
	h.value = v
	h.ready = true
	h.mu.Unlock()
	return v, nil
}

func (h *Handle[T]) load() (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value, h.ready
}

// Ready は値が構築済みかを返します。
func (h *Handle[T]) Ready() bool {
	_, ok := h.load()
	return ok
}

package conc

import (
	"runtime"

	"github.com/panjf2000/ants/v2"
)

// Pool 基于 ants 的协程池，提交任务返回 Future
type Pool[T any] struct {
	inner *ants.Pool
}

// NewPool 创建指定容量的协程池
func NewPool[T any](cap int, opts ...ants.Option) *Pool[T] {
	if cap <= 0 {
		cap = runtime.GOMAXPROCS(0)
	}
	opts = append([]ants.Option{ants.WithPreAlloc(false)}, opts...)
	pool, err := ants.NewPool(cap, opts...)
	if err != nil {
		panic(err)
	}
	return &Pool[T]{inner: pool}
}

// NewDefaultPool 创建容量为 GOMAXPROCS 的协程池
func NewDefaultPool[T any]() *Pool[T] {
	return NewPool[T](runtime.GOMAXPROCS(0))
}

// Submit 提交任务；池已关闭时返回的 Future 立即携带错误
func (p *Pool[T]) Submit(fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	if err := p.inner.Submit(func() { f.run(fn) }); err != nil {
		f.err = err
		close(f.ch)
	}
	return f
}

// Cap 池容量
func (p *Pool[T]) Cap() int {
	return p.inner.Cap()
}

// Running 正在运行的任务数
func (p *Pool[T]) Running() int {
	return p.inner.Running()
}

// Release 释放协程池
func (p *Pool[T]) Release() {
	p.inner.Release()
}

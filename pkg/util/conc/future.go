package conc

import (
	"fmt"
	"runtime/debug"
)

// Future 异步任务结果
type Future[T any] struct {
	ch    chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{ch: make(chan struct{})}
}

// Inner 返回任务完成信号通道，可用于 select
func (f *Future[T]) Inner() <-chan struct{} {
	return f.ch
}

// Await 阻塞直到任务完成
func (f *Future[T]) Await() (T, error) {
	<-f.ch
	return f.value, f.err
}

// Value 等待并返回结果值
func (f *Future[T]) Value() T {
	<-f.ch
	return f.value
}

// Err 等待并返回错误
func (f *Future[T]) Err() error {
	<-f.ch
	return f.err
}

// Done 任务是否已完成（不阻塞）
func (f *Future[T]) Done() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

// OK 等待任务完成并判断是否成功
func (f *Future[T]) OK() bool {
	<-f.ch
	return f.err == nil
}

func (f *Future[T]) run(fn func() (T, error)) {
	defer close(f.ch)
	defer func() {
		if r := recover(); r != nil {
			f.err = fmt.Errorf("conc: task panicked: %v\n%s", r, debug.Stack())
		}
	}()
	f.value, f.err = fn()
}

// Go 在新的 goroutine 中执行 fn，panic 会被转换为错误
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go f.run(fn)
	return f
}

// AwaitAll 等待所有任务完成，返回第一个错误
func AwaitAll[T any](futures ...*Future[T]) error {
	var first error
	for _, f := range futures {
		if err := f.Err(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

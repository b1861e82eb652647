package sentry

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/lk2023060901/dronecore/pkg/util/conc"
)

// AsyncReporter 在协程池中执行上报，调用方永不阻塞
// 池满时直接丢弃事件并计数
type AsyncReporter struct {
	inner   Reporter
	pool    *conc.Pool[struct{}]
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

var _ Reporter = (*AsyncReporter)(nil)

// NewAsyncReporter 创建异步上报器，workers <= 0 时取 GOMAXPROCS
func NewAsyncReporter(inner Reporter, workers int) *AsyncReporter {
	return &AsyncReporter{
		inner: inner,
		pool:  conc.NewPool[struct{}](workers, ants.WithNonblocking(true)),
	}
}

func (a *AsyncReporter) CaptureError(ctx context.Context, err error, tags map[string]string) {
	a.submit(func() { a.inner.CaptureError(ctx, err, tags) })
}

func (a *AsyncReporter) CapturePanic(ctx context.Context, recovered any, tags map[string]string) {
	a.submit(func() { a.inner.CapturePanic(ctx, recovered, tags) })
}

func (a *AsyncReporter) submit(fn func()) {
	a.wg.Add(1)
	f := a.pool.Submit(func() (struct{}, error) {
		defer a.wg.Done()
		fn()
		return struct{}{}, nil
	})
	// 提交失败时 Future 在 Submit 返回前就已完成
	if f.Done() {
		if err := f.Err(); errors.Is(err, ants.ErrPoolOverload) || errors.Is(err, ants.ErrPoolClosed) {
			a.wg.Done()
			a.dropped.Add(1)
		}
	}
}

// Dropped 因池满或已关闭而丢弃的事件数
func (a *AsyncReporter) Dropped() uint64 {
	return a.dropped.Load()
}

// Close 等待已提交的上报完成并释放协程池
func (a *AsyncReporter) Close() error {
	a.wg.Wait()
	a.pool.Release()
	return nil
}

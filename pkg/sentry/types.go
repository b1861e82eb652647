package sentry

import "context"

// Stats 统计信息
type Stats struct {
	EventsTotal    uint64 // 总事件数
	EventsCaptured uint64 // 成功捕获数
	EventsDropped  uint64 // 丢弃数
}

// Reporter 故障上报接口，tags 附加到本次事件
type Reporter interface {
	CaptureError(ctx context.Context, err error, tags map[string]string)
	CapturePanic(ctx context.Context, recovered any, tags map[string]string)
}

// NopReporter 丢弃所有上报
type NopReporter struct{}

func (NopReporter) CaptureError(context.Context, error, map[string]string) {}

func (NopReporter) CapturePanic(context.Context, any, map[string]string) {}

// ContextTags 从 context 中提取附加标签
type ContextTags func(ctx context.Context) map[string]string

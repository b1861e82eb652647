// Package tick 描述一次模拟步进，并通过 context 传递给行为树叶子节点
package tick

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Info 一次步进的信息
type Info struct {
	Seq   uint64        // 单调递增的步进序号
	Now   time.Time     // 模拟时钟，不一定等于墙上时间
	Delta time.Duration // 距上一步的时长
	Fixed bool          // 是否为固定步长更新
}

// Next 以 delta 推进一步
func (i Info) Next(delta time.Duration, fixed bool) Info {
	return Info{
		Seq:   i.Seq + 1,
		Now:   i.Now.Add(delta),
		Delta: delta,
		Fixed: fixed,
	}
}

type ctxKey struct{}

// NewContext 将 Info 放入 context
func NewContext(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext 取出 Info
func FromContext(ctx context.Context) (Info, bool) {
	info, ok := ctx.Value(ctxKey{}).(Info)
	return info, ok
}

// Now 返回 context 中的模拟时间，没有时退回墙上时间
func Now(ctx context.Context) time.Time {
	if info, ok := FromContext(ctx); ok {
		return info.Now
	}
	return time.Now()
}

// LogFields 日志 context 提取器，为日志附加 tick 序号
func LogFields(ctx context.Context) []zap.Field {
	info, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return []zap.Field{zap.Uint64("tick", info.Seq), zap.Bool("fixed", info.Fixed)}
}

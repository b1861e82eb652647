// Package idgen 生成场景对象 ID
package idgen

import (
	"sync/atomic"

	"github.com/lk2023060901/dronecore/pkg/entity"
)

// Generator ID生成器接口
type Generator interface {
	// NextID 生成下一个唯一ID，不会返回 entity.None
	NextID() (entity.ID, error)
}

type sequence struct {
	next atomic.Uint64
}

// NewSequence 创建从 start 开始自增的生成器，用于测试与可复现的模拟
func NewSequence(start uint64) Generator {
	if start == 0 {
		start = 1
	}
	s := &sequence{}
	s.next.Store(start)
	return s
}

func (s *sequence) NextID() (entity.ID, error) {
	return entity.ID(s.next.Add(1) - 1), nil
}

// Package blackboard 是单个 agent 私有的类型化键值存储
//
// 键在声明时固定值类型：
//
//	var AttackTarget = blackboard.NewKey[entity.TransformHandle]("attack_target")
//
//	blackboard.Set(bb, AttackTarget, h)
//	if h, ok := blackboard.Get(bb, AttackTarget); ok { ... }
//
// 未设置或已清空的键读取时 ok 为 false。键不会被删除，只能用 Clear 覆盖为 none。
// Blackboard 不是并发安全的，只能由所属 agent 的模拟协程访问。
package blackboard

import "sort"

// Key 类型化的键
type Key[T Storable] struct {
	name string
}

// NewKey 声明一个键
func NewKey[T Storable](name string) Key[T] {
	if name == "" {
		panic("blackboard: empty key name")
	}
	return Key[T]{name: name}
}

func (k Key[T]) Name() string { return k.name }

// Kind 键对应的值种类
func (k Key[T]) Kind() Kind { return kindOf[T]() }

func (k Key[T]) String() string { return k.name + ":" + k.Kind().String() }

// Blackboard 黑板
type Blackboard struct {
	values map[string]Value
}

// New 创建空黑板
func New() *Blackboard {
	return &Blackboard{values: make(map[string]Value)}
}

// Load 按名称读取原始值，未设置或为 none 时 ok 为 false
func (b *Blackboard) Load(name string) (Value, bool) {
	v, ok := b.values[name]
	if !ok || v.IsNone() {
		return Value{}, false
	}
	return v, true
}

// Store 按名称写入原始值，写入 None() 等同于清空
func (b *Blackboard) Store(name string, v Value) {
	b.values[name] = v
}

// Keys 返回当前持有非 none 值的键名，已排序
func (b *Blackboard) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for k, v := range b.values {
		if !v.IsNone() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Get 读取类型化的值；未设置、已清空或种类不符时 ok 为 false
func Get[T Storable](b *Blackboard, key Key[T]) (T, bool) {
	v, ok := b.Load(key.name)
	if !ok {
		var zero T
		return zero, false
	}
	return extract[T](v)
}

// Set 写入类型化的值，覆盖旧值
func Set[T Storable](b *Blackboard, key Key[T], v T) {
	b.values[key.name] = valueOf(v)
}

// Clear 将键覆盖为 none
func Clear[T Storable](b *Blackboard, key Key[T]) {
	b.values[key.name] = None()
}

// Has 键当前是否持有该类型的值
func Has[T Storable](b *Blackboard, key Key[T]) bool {
	_, ok := Get(b, key)
	return ok
}

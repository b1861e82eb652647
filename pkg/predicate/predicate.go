// Package predicate 提供无参布尔判定及其组合
package predicate

// Predicate 无参布尔判定，通常闭包捕获探测器或黑板
type Predicate func() bool

// Always 恒为真
func Always() Predicate { return func() bool { return true } }

// Never 恒为假
func Never() Predicate { return func() bool { return false } }

// Not 取反
func Not(p Predicate) Predicate {
	return func() bool { return !p() }
}

// And 全部为真时为真，按顺序短路求值
func And(ps ...Predicate) Predicate {
	return func() bool {
		for _, p := range ps {
			if !p() {
				return false
			}
		}
		return true
	}
}

// Or 任一为真时为真，按顺序短路求值
func Or(ps ...Predicate) Predicate {
	return func() bool {
		for _, p := range ps {
			if p() {
				return true
			}
		}
		return false
	}
}

// Eval nil 判定视为假
func (p Predicate) Eval() bool {
	return p != nil && p()
}

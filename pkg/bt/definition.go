package bt

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Kind 节点类型
type Kind string

const (
	KindSequence         Kind = "sequence"
	KindSelector         Kind = "selector"
	KindPrioritySelector Kind = "priority_selector"
	KindRandomSelector   Kind = "random_selector"
	KindParallel         Kind = "parallel"
	KindAction           Kind = "action"
	KindCondition        Kind = "condition"
	KindInverter         Kind = "inverter"
	KindRepeater         Kind = "repeater"
	KindUntilSuccess     Kind = "until_success"
	KindUntilFailure     Kind = "until_failure"
	KindDelay            Kind = "delay"
	KindTimeout          Kind = "timeout"
)

var kinds = map[Kind]struct{}{
	KindSequence: {}, KindSelector: {}, KindPrioritySelector: {}, KindRandomSelector: {},
	KindParallel: {}, KindAction: {}, KindCondition: {}, KindInverter: {},
	KindRepeater: {}, KindUntilSuccess: {}, KindUntilFailure: {}, KindDelay: {}, KindTimeout: {},
}

// ParseKind 解析节点类型，大小写不敏感
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := kinds[k]; !ok {
		return "", errors.Wrapf(ErrUnknownNodeKind, "%q", s)
	}
	return k, nil
}

// ParsePolicy 解析并行策略，空串为 success_on_all
func ParsePolicy(s string) (ParallelPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "success_on_all":
		return PolicySuccessOnAll, nil
	case "success_on_one":
		return PolicySuccessOnOne, nil
	default:
		return 0, errors.Wrapf(ErrInvalidDefinition, "unknown parallel policy %q", s)
	}
}

// Definition 声明式的行为树节点
type Definition struct {
	Type     string       `mapstructure:"type" yaml:"type" validate:"required"`
	Name     string       `mapstructure:"name" yaml:"name"`
	Children []Definition `mapstructure:"children" yaml:"children" validate:"dive"`

	// action / condition 引用的注册名
	Action    string `mapstructure:"action" yaml:"action"`
	Condition string `mapstructure:"condition" yaml:"condition"`

	// 在 priority_selector 父节点中的优先级
	Priority int `mapstructure:"priority" yaml:"priority"`

	// sequence / selector 系列，未设置时为 true
	ProcessMultiple *bool `mapstructure:"process_multiple" yaml:"process_multiple"`
	SortOnReset     bool  `mapstructure:"sort_on_reset" yaml:"sort_on_reset"`

	Policy   string        `mapstructure:"policy" yaml:"policy" validate:"omitempty,oneof=success_on_all success_on_one"`
	Count    int           `mapstructure:"count" yaml:"count" validate:"gte=0"`
	Duration time.Duration `mapstructure:"duration" yaml:"duration" validate:"gte=0"`
}

// ParseDefinitionYAML 从 YAML 文档解析行为树定义
func ParseDefinitionYAML(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, errors.Wrap(err, "bt: parse yaml definition")
	}
	return def, nil
}

// Registry 动作和条件的注册表
type Registry struct {
	actions    map[string]ActionFunc
	conditions map[string]ConditionFunc
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		actions:    make(map[string]ActionFunc),
		conditions: make(map[string]ConditionFunc),
	}
}

// RegisterAction 注册动作
func (r *Registry) RegisterAction(name string, fn ActionFunc) error {
	if name == "" || fn == nil {
		return errors.Wrap(ErrInvalidDefinition, "action needs a name and a func")
	}
	if _, ok := r.actions[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "action %q", name)
	}
	r.actions[name] = fn
	return nil
}

// RegisterCondition 注册条件
func (r *Registry) RegisterCondition(name string, fn ConditionFunc) error {
	if name == "" || fn == nil {
		return errors.Wrap(ErrInvalidDefinition, "condition needs a name and a func")
	}
	if _, ok := r.conditions[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "condition %q", name)
	}
	r.conditions[name] = fn
	return nil
}

// Action 查找动作
func (r *Registry) Action(name string) (ActionFunc, bool) {
	fn, ok := r.actions[name]
	return fn, ok
}

// Condition 查找条件
func (r *Registry) Condition(name string) (ConditionFunc, bool) {
	fn, ok := r.conditions[name]
	return fn, ok
}

type buildOptions struct {
	rng *rand.Rand
}

// BuildOption 构建选项
type BuildOption func(*buildOptions)

// WithRand 指定 random_selector 使用的随机源
func WithRand(rng *rand.Rand) BuildOption {
	return func(o *buildOptions) { o.rng = rng }
}

// Build 按定义构建节点树，错误信息携带出错节点的路径
func Build(def Definition, reg *Registry, opts ...BuildOption) (Node, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	b := &builder{reg: reg, opts: o}
	return b.build(def, "root")
}

// Validate 检查定义能否构建
func Validate(def Definition, reg *Registry) error {
	_, err := Build(def, reg)
	return err
}

type builder struct {
	reg  *Registry
	opts buildOptions
}

func (b *builder) build(def Definition, path string) (Node, error) {
	kind, err := ParseKind(def.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "at %s", path)
	}
	name := def.Name
	if name == "" {
		name = string(kind)
	}
	if def.Name != "" {
		path = fmt.Sprintf("%s(%s)", path, def.Name)
	}

	switch kind {
	case KindAction:
		if len(def.Children) > 0 {
			return nil, errors.Wrapf(ErrInvalidDefinition, "at %s: action has children", path)
		}
		fn, ok := b.reg.Action(def.Action)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownAction, "at %s: %q", path, def.Action)
		}
		if def.Name == "" {
			name = def.Action
		}
		return NewAction(name, fn), nil

	case KindCondition:
		if len(def.Children) > 0 {
			return nil, errors.Wrapf(ErrInvalidDefinition, "at %s: condition has children", path)
		}
		fn, ok := b.reg.Condition(def.Condition)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownCondition, "at %s: %q", path, def.Condition)
		}
		if def.Name == "" {
			name = def.Condition
		}
		return NewCondition(name, fn), nil
	}

	children, err := b.children(def, path)
	if err != nil {
		return nil, err
	}

	processMultiple := def.ProcessMultiple == nil || *def.ProcessMultiple

	switch kind {
	case KindSequence:
		return NewSequence(name, children...).WithProcessMultiple(processMultiple), nil
	case KindSelector:
		return NewSelector(name, children...).WithProcessMultiple(processMultiple), nil
	case KindRandomSelector:
		return NewRandomSelector(name, b.opts.rng, children...), nil
	case KindPrioritySelector:
		entries := make([]PriorityChild, len(children))
		for i, c := range children {
			entries[i] = Prioritized(def.Children[i].Priority, c)
		}
		return NewPrioritySelector(name, entries...).
			WithSortOnReset(def.SortOnReset).
			WithProcessMultiple(processMultiple), nil
	case KindParallel:
		policy, err := ParsePolicy(def.Policy)
		if err != nil {
			return nil, errors.Wrapf(err, "at %s", path)
		}
		return NewParallel(name, policy, children...), nil
	}

	// 其余均为装饰器
	if len(children) != 1 {
		return nil, errors.Wrapf(ErrInvalidDefinition,
			"at %s: %s needs exactly one child, got %d", path, kind, len(children))
	}
	child := children[0]

	switch kind {
	case KindInverter:
		return NewInverter(name, child), nil
	case KindRepeater:
		count := def.Count
		if count == 0 {
			count = RepeatForever
		}
		return NewRepeater(name, count, child), nil
	case KindUntilSuccess:
		return NewUntilSuccess(name, child), nil
	case KindUntilFailure:
		return NewUntilFailure(name, child), nil
	case KindDelay:
		return NewDelay(name, def.Duration, child), nil
	case KindTimeout:
		if def.Duration <= 0 {
			return nil, errors.Wrapf(ErrInvalidDefinition, "at %s: timeout needs a positive duration", path)
		}
		return NewTimeout(name, def.Duration, child), nil
	}

	return nil, errors.Wrapf(ErrUnknownNodeKind, "at %s: %q", path, def.Type)
}

func (b *builder) children(def Definition, path string) ([]Node, error) {
	if len(def.Children) == 0 {
		return nil, errors.Wrapf(ErrInvalidDefinition, "at %s: %s has no children", path, def.Type)
	}
	nodes := make([]Node, 0, len(def.Children))
	for i, c := range def.Children {
		n, err := b.build(c, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

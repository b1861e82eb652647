package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// StructDefaults 按 mapstructure 标签把结构体展开成嵌套 map 并挂到 key 下，配合 WithDefaults 使用
// 文件中缺失的键取结构体中的值，文件中显式写出的零值保持为零。
// 嵌套结构体展开为子 map，切片作为整体；含 map 字段的结构体不适合作为默认值。
func StructDefaults(key string, v any) (map[string]any, error) {
	var out map[string]any
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, fmt.Errorf("failed to expand defaults for %q: %w", key, err)
	}
	if key == "" {
		return out, nil
	}
	return map[string]any{key: out}, nil
}

package fonts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Mappings 是用户维护的字体替换表：原字体名 → 替换字体名。
type Mappings map[string]string

// LoadMappings 读取 JSON 替换表；文件不存在时返回空表。
func LoadMappings(path string) (Mappings, error) {
	m := Mappings{}
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取字体映射 %s 失败: %w", path, err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("解析字体映射 %s 失败: %w", path, err)
	}
	return m, nil
}

// SaveMappings 将替换表写回磁盘，必要时创建父目录。
func SaveMappings(path string, m Mappings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	if m == nil {
		m = Mappings{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

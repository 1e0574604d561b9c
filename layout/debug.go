package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteDebugJSON 将排版结果输出为 JSON，便于调试或交给重建 PDF 的下游。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadPages 读取提取阶段产出的页面 JSON（[]Page）。
func ReadPages(r io.Reader) ([]Page, error) {
	var pages []Page
	if err := json.NewDecoder(r).Decode(&pages); err != nil {
		return nil, fmt.Errorf("解析页面 JSON 失败: %w", err)
	}
	return pages, nil
}

// ReadPagesFile 是 ReadPages 的文件版本。
func ReadPagesFile(path string) ([]Page, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开页面文件 %s: %w", path, err)
	}
	defer file.Close()
	return ReadPages(file)
}

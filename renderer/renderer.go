package renderer

import "github.com/ByLCY/reflow/layout"

// Renderer 将排版后的页面输出为最终文件，例如 PDF 校样。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(pages []layout.Page) ([]byte, error)
}

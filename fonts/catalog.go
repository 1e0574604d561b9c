package fonts

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// FontRef 指向磁盘上的一个字体面。Index 是字体集合（.ttc/.otc）中的序号，单字体文件为 0。
type FontRef struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Index int    `json:"index"`
}

// Catalog 是按全名索引的可用字体表。同名字体以先加入者为准。
type Catalog struct {
	byName map[string]FontRef
	names  []string
}

// NewCatalog 由给定字体构造目录，主要用于测试与外部注入。
func NewCatalog(refs ...FontRef) *Catalog {
	c := &Catalog{byName: map[string]FontRef{}}
	for _, ref := range refs {
		c.add(ref)
	}
	return c
}

func (c *Catalog) add(ref FontRef) {
	if ref.Name == "" {
		return
	}
	if _, ok := c.byName[ref.Name]; ok {
		return
	}
	c.byName[ref.Name] = ref
	i := sort.SearchStrings(c.names, ref.Name)
	c.names = append(c.names, "")
	copy(c.names[i+1:], c.names[i:])
	c.names[i] = ref.Name
}

// Lookup 按全名精确查找。
func (c *Catalog) Lookup(name string) (FontRef, bool) {
	if c == nil {
		return FontRef{}, false
	}
	ref, ok := c.byName[name]
	return ref, ok
}

// Names 返回按字典序排列的全部字体名。
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// DefaultDirs 返回当前操作系统的常见字体目录。
func DefaultDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		return []string{
			filepath.Join(windir, "Fonts"),
			filepath.Join(home, "AppData", "Local", "Microsoft", "Windows", "Fonts"),
		}
	case "darwin":
		return []string{"/System/Library/Fonts", "/Library/Fonts", filepath.Join(home, "Library", "Fonts")}
	default:
		return []string{"/usr/share/fonts", "/usr/local/share/fonts", filepath.Join(home, ".fonts")}
	}
}

var fontExts = map[string]bool{".ttf": true, ".otf": true, ".ttc": true, ".otc": true}

// ScanSystemFonts 递归扫描目录中的字体文件并读取其全名；dirs 为空时使用 DefaultDirs。
// 不存在的目录与无法解析的文件会被跳过。
func ScanSystemFonts(dirs []string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}
	c := NewCatalog()
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Debug("skip font path", "path", path, "err", err)
				return nil
			}
			if d.IsDir() || !fontExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			refs, err := readFontFile(path)
			if err != nil {
				logger.Debug("unreadable font file", "path", path, "err", err)
				return nil
			}
			for _, ref := range refs {
				c.add(ref)
			}
			return nil
		})
	}
	logger.Info("system fonts scanned", "dirs", len(dirs), "fonts", c.Len())
	return c
}

// readFontFile 读取文件中每个字体面的全名；集合文件会被展开。
func readFontFile(path string) ([]FontRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	coll, err := sfnt.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	var (
		refs []FontRef
		buf  sfnt.Buffer
	)
	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			continue
		}
		if name := fullName(f, &buf); name != "" {
			refs = append(refs, FontRef{Name: name, Path: path, Index: i})
		}
	}
	return refs, nil
}

func fullName(f *sfnt.Font, buf *sfnt.Buffer) string {
	for _, id := range []sfnt.NameID{sfnt.NameIDFull, sfnt.NameIDFamily} {
		if name, err := f.Name(buf, id); err == nil && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

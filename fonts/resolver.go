package fonts

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
)

// ErrNoFonts 表示系统中找不到任何可用字体，此时无法进行真实测量。
var ErrNoFonts = errors.New("fonts: no fonts available on this system")

// DefaultFamily 是未配置默认字体时使用的回退字体名。
const DefaultFamily = "Arial"

// Strategy 是字体解析链中的一环。
type Strategy interface {
	Name() string
	Resolve(name string, c *Catalog) (FontRef, bool)
}

// OverrideStrategy 查询用户替换表。
type OverrideStrategy struct{ Mappings Mappings }

func (OverrideStrategy) Name() string { return "override" }

func (s OverrideStrategy) Resolve(name string, c *Catalog) (FontRef, bool) {
	repl, ok := s.Mappings[name]
	if !ok {
		return FontRef{}, false
	}
	return c.Lookup(repl)
}

// ExactStrategy 直接使用同名系统字体。
type ExactStrategy struct{}

func (ExactStrategy) Name() string { return "exact" }

func (ExactStrategy) Resolve(name string, c *Catalog) (FontRef, bool) { return c.Lookup(name) }

// FamilyStrategy 回退到配置的默认字体。
type FamilyStrategy struct{ Family string }

func (FamilyStrategy) Name() string { return "family" }

func (s FamilyStrategy) Resolve(_ string, c *Catalog) (FontRef, bool) { return c.Lookup(s.Family) }

// AnyStrategy 回退到目录中字典序第一个字体，保证结果可复现。
type AnyStrategy struct{}

func (AnyStrategy) Name() string { return "any" }

func (AnyStrategy) Resolve(_ string, c *Catalog) (FontRef, bool) {
	names := c.Names()
	if len(names) == 0 {
		return FontRef{}, false
	}
	return c.Lookup(names[0])
}

// Resolution 说明一次解析由哪一步给出。
type Resolution struct {
	Requested string `json:"requested"`
	Strategy  string `json:"strategy"`
	Fallback  bool   `json:"fallback"`
}

// ResolverOptions 配置解析器。Strategies 为空时使用默认链：
// override → exact → family → any。
type ResolverOptions struct {
	Mappings      Mappings
	DefaultFamily string
	Strategies    []Strategy
	Logger        *slog.Logger
}

type resolved struct {
	ref FontRef
	res Resolution
}

// Resolver 将文档中的字体名映射到系统字体。解析结果按名字缓存，可并发使用。
type Resolver struct {
	catalog    *Catalog
	strategies []Strategy
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[string]resolved
}

// NewResolver 创建解析器。替换表在排版期间只读。
func NewResolver(catalog *Catalog, opts ResolverOptions) *Resolver {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DefaultFamily == "" {
		opts.DefaultFamily = DefaultFamily
	}
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = []Strategy{
			OverrideStrategy{Mappings: opts.Mappings},
			ExactStrategy{},
			FamilyStrategy{Family: opts.DefaultFamily},
			AnyStrategy{},
		}
	}
	return &Resolver{
		catalog:    catalog,
		strategies: strategies,
		logger:     opts.Logger,
		cache:      map[string]resolved{},
	}
}

// Catalog 返回解析器使用的字体目录。
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// Resolve 依次尝试各策略，返回第一个命中的字体。目录为空时返回 ErrNoFonts。
func (r *Resolver) Resolve(name string) (FontRef, Resolution, error) {
	if r.catalog.Len() == 0 {
		return FontRef{}, Resolution{}, ErrNoFonts
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit, ok := r.cache[name]; ok {
		return hit.ref, hit.res, nil
	}
	for _, s := range r.strategies {
		ref, ok := s.Resolve(name, r.catalog)
		if !ok {
			continue
		}
		res := Resolution{Requested: name, Strategy: s.Name(), Fallback: isFallback(s)}
		if res.Fallback {
			r.logger.Warn("font not found, using fallback",
				"font", name,
				"replacement", ref.Name,
				"strategy", s.Name())
		}
		r.cache[name] = resolved{ref: ref, res: res}
		return ref, res, nil
	}
	return FontRef{}, Resolution{}, ErrNoFonts
}

func isFallback(s Strategy) bool {
	switch s.(type) {
	case OverrideStrategy, ExactStrategy:
		return false
	default:
		return true
	}
}

// Availability 是字体可用性检查的结果。
type Availability struct {
	Missing     []string          `json:"missing"`
	Suggestions map[string]string `json:"suggestions"`
	AllPresent  bool              `json:"allPresent"`
}

// Check 报告哪些字体不在系统中，并为每个缺失字体给出一个替换建议。
func (r *Resolver) Check(names []string) Availability {
	out := Availability{Suggestions: map[string]string{}}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		if _, ok := r.catalog.Lookup(n); ok {
			continue
		}
		out.Missing = append(out.Missing, n)
		out.Suggestions[n] = r.suggest()
	}
	sort.Strings(out.Missing)
	out.AllPresent = len(out.Missing) == 0
	return out
}

func (r *Resolver) suggest() string {
	for _, s := range r.strategies {
		if f, ok := s.(FamilyStrategy); ok {
			if _, found := r.catalog.Lookup(f.Family); found {
				return f.Family
			}
		}
	}
	if names := r.catalog.Names(); len(names) > 0 {
		return names[0]
	}
	return ""
}

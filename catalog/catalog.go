package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/slip"
	"gopkg.in/yaml.v3"
)

var (
	ErrDupID   = errs.NewFatal("duplicate type id")
	ErrDupName = errs.NewFatal("duplicate type name")
)

// Catalog 是投注類型目錄 {typeid, typename}。
//
// 名稱一律以 trim + 小寫存放，查詢大小寫不敏感。可同時被多個請求讀取，
// 由後端刷新時整份替換（Replace）。
type Catalog struct {
	mu     sync.RWMutex
	byID   map[int]slip.Type
	byName map[string]slip.Type
	ids    []int // 用來穩定排序
	config *multiFS
}

// New 建立空目錄；cfg 為種子檔來源（可為空，之後由後端 Replace）。
func New(cfg ...fs.FS) (*Catalog, error) {
	c := &Catalog{
		byID:   map[int]slip.Type{},
		byName: map[string]slip.Type{},
		ids:    make([]int, 0, 8),
	}
	if len(cfg) == 0 {
		return c, nil
	}
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	c.config = multFS
	return c, nil
}

// Default 回傳只含 slip.DefaultTypes 的目錄。
func Default() *Catalog {
	c, _ := New()
	types := make([]slip.Type, 0, len(slip.Categories))
	for _, cat := range slip.Categories {
		types = append(types, slip.DefaultTypes[cat])
	}
	_ = c.Register(types...)
	return c
}

// Register 驗證後加入；任何一筆不合法則整批不加入。
func (c *Catalog) Register(types ...slip.Type) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clean, err := checkTypes(types, c.byID, c.byName)
	if err != nil {
		return err
	}
	for _, t := range clean {
		c.byID[t.ID] = t
		c.byName[t.Name] = t
		c.ids = append(c.ids, t.ID)
	}
	sort.Ints(c.ids)
	return nil
}

// Replace 以 types 整份取代目前內容（後端 /types 刷新）。驗證失敗時保留原內容。
func (c *Catalog) Replace(types []slip.Type) error {
	clean, err := checkTypes(types, nil, nil)
	if err != nil {
		return err
	}
	byID := make(map[int]slip.Type, len(clean))
	byName := make(map[string]slip.Type, len(clean))
	ids := make([]int, 0, len(clean))
	for _, t := range clean {
		byID[t.ID] = t
		byName[t.Name] = t
		ids = append(ids, t.ID)
	}
	sort.Ints(ids)

	c.mu.Lock()
	c.byID, c.byName, c.ids = byID, byName, ids
	c.mu.Unlock()
	return nil
}

func checkTypes(types []slip.Type, byID map[int]slip.Type, byName map[string]slip.Type) ([]slip.Type, error) {
	seenID := map[int]struct{}{}
	seenName := map[string]struct{}{}
	out := make([]slip.Type, 0, len(types))
	for _, t := range types {
		t.Name = strings.ToLower(strings.TrimSpace(t.Name))
		if t.Name == "" {
			return nil, errs.NewFatal("type name required")
		}
		if t.ID <= 0 {
			return nil, errs.NewFatal(fmt.Sprintf("type id must be > 0: %q=%d", t.Name, t.ID))
		}
		if _, ok := byID[t.ID]; ok {
			return nil, ErrDupID.With(fmt.Sprint(t.ID))
		}
		if _, ok := byName[t.Name]; ok {
			return nil, ErrDupName.With(t.Name)
		}
		if _, ok := seenID[t.ID]; ok {
			return nil, ErrDupID.With(fmt.Sprint(t.ID))
		}
		if _, ok := seenName[t.Name]; ok {
			return nil, ErrDupName.With(t.Name)
		}
		seenID[t.ID] = struct{}{}
		seenName[t.Name] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

func (c *Catalog) GetByName(name string) (slip.Type, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byName[name]
	return t, ok
}

// Resolve 實作 slip.TypeResolver。
func (c *Catalog) Resolve(cat slip.Category) (slip.Type, bool) {
	return c.GetByName(string(cat))
}

// All 依 typeid 排序。
func (c *Catalog) All() []slip.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]slip.Type, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}

// Missing 回傳目錄中找不到的類型名稱（依 slip.Categories 順序），用來在啟動時提示。
func (c *Catalog) Missing() []slip.Category {
	var out []slip.Category
	for _, cat := range slip.Categories {
		if _, ok := c.Resolve(cat); !ok {
			out = append(out, cat)
		}
	}
	return out
}

// seedFile 是種子檔的格式：
//
//	types:
//	  - typeid: 1
//	    typename: Open
type seedFile struct {
	Types []slip.Type `json:"types" yaml:"types"`
}

// LoadSeeds 讀取所有來源中的 YAML/JSON 種子檔（依檔名排序）並 Register。
func (c *Catalog) LoadSeeds() error {
	if c.config == nil {
		return nil
	}
	names := c.config.Names()
	for _, name := range names {
		src, _ := c.config.GetFS(name)
		raw, err := fs.ReadFile(src, name)
		if err != nil {
			return errs.Wrap(err, "catalog read seed error")
		}
		types, err := parseSeedByExt(name, raw)
		if err != nil {
			return errs.WrapWithExtra(err, "catalog parse seed error", name)
		}
		if err := c.Register(types...); err != nil {
			return errs.WrapWithExtra(err, "catalog register seed error", name)
		}
	}
	return nil
}

func parseSeedByExt(filename string, raw []byte) ([]slip.Type, error) {
	sf := seedFile{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true) // 嚴格檢查：多寫/拼錯欄位就報錯
		if err := dec.Decode(&sf); err != nil {
			return nil, errs.Wrap(err, "failed to unmarshall yaml")
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sf); err != nil {
			return nil, errs.Wrap(err, "can not unmarshall json byte")
		}
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported seed format: %q", filename))
	}
	return sf.Types, nil
}

// Sources exposes seed FS sources for read-only iteration.
func (c *Catalog) Sources() []fs.FS {
	return c.config.Sources()
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 16),
	}

	for i := 0; i < len(src); i++ {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// 種子目錄必須是平的，只允許根目錄
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("seed FS must be flat (no subdirectories): %q", path))
			}

			// 只索引 yaml/json，其他檔案忽略
			lower := strings.ToLower(path)
			if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate seed %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}

// Names 依字典序回傳所有索引到的檔名。
func (m *multiFS) Names() []string {
	out := make([]string, 0, len(m.index))
	for name := range m.index {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *multiFS) Sources() []fs.FS {
	if m == nil || len(m.src) == 0 {
		return nil
	}
	return append([]fs.FS(nil), m.src...)
}

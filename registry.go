package sqlbind

import (
	"reflect"
	"sync"
)

// nullKey 解析缓存中 nil 类型对应的 key
type nullKey struct{}

type registryEntry struct {
	key    reflect.Type            // 为 nil 时使用 match
	match  func(reflect.Type) bool // 谓词
	desc   string                  // 日志用
	mapper Mapper
}

// matches key 为 t 本身或 t 实现的接口
func (e *registryEntry) matches(t reflect.Type) bool {
	if e.match != nil {
		return e.match(t)
	}
	if e.key == t {
		return true
	}
	return e.key.Kind() == reflect.Interface && t.Implements(e.key)
}

// mapperTier 按注册顺序保存
type mapperTier struct {
	entries []*registryEntry
	exact   map[reflect.Type]*registryEntry
	null    Mapper
}

func newMapperTier() *mapperTier {
	return &mapperTier{exact: make(map[reflect.Type]*registryEntry)}
}

func (t *mapperTier) put(key reflect.Type, m Mapper) {
	if key == nil {
		t.null = m
		return
	}
	// 替换时保留原来的位置
	if e, ok := t.exact[key]; ok {
		e.mapper = m
		return
	}
	e := &registryEntry{key: key, desc: key.String(), mapper: m}
	t.exact[key] = e
	t.entries = append(t.entries, e)
}

func (t *mapperTier) putFunc(desc string, match func(reflect.Type) bool, m Mapper) {
	t.entries = append(t.entries, &registryEntry{match: match, desc: desc, mapper: m})
}

func (t *mapperTier) find(typ reflect.Type, tierName string) Mapper {
	if e, ok := t.exact[typ]; ok {
		return e.mapper
	}
	for _, e := range t.entries {
		if e.matches(typ) {
			sLog.Infof("no exact mapper found for %s, but %s matches so %s mapper %T will be used", typ, e.desc, tierName, e.mapper)
			return e.mapper
		}
	}
	return nil
}

// Registry 类型 => Mapper
// 查找顺序: 已解析缓存 > 自定义(精确, 按注册顺序的祖先) > 默认(精确, 按注册顺序的祖先)
// 已解析的结果不会因为后续注册而改变, 所以注册应在第一次使用前完成
type Registry struct {
	mu       sync.RWMutex
	custom   *mapperTier
	defaults *mapperTier
	resolved sync.Map // key: reflect.Type 或 nullKey

	cacheSize int
}

// NewRegistry 带默认 mapper 的 Registry
func NewRegistry(opts ...Option) *Registry {
	r := NewBareRegistry(opts...)
	registerDefaults(r, r.cacheSize)
	return r
}

// NewBareRegistry 没有任何 mapper 的 Registry
func NewBareRegistry(opts ...Option) *Registry {
	o := newOptions(opts...)
	return &Registry{
		custom:    newMapperTier(),
		defaults:  newMapperTier(),
		cacheSize: o.cacheSize,
	}
}

// Register 注册自定义 mapper, t 为 nil 时为 null 参数的处理
// t 为接口时, 所有实现该接口且没有精确注册的类型都会匹配到
func (r *Registry) Register(t reflect.Type, m Mapper) {
	r.mu.Lock()
	r.custom.put(t, m)
	r.mu.Unlock()
}

// RegisterFunc 注册按谓词匹配的自定义 mapper, 与 Register 的祖先一起按注册顺序匹配
func (r *Registry) RegisterFunc(desc string, match func(reflect.Type) bool, m Mapper) {
	r.mu.Lock()
	r.custom.putFunc(desc, match, m)
	r.mu.Unlock()
}

// RegisterDefault 注册默认 mapper, 优先级低于所有自定义 mapper
func (r *Registry) RegisterDefault(t reflect.Type, m Mapper) {
	r.mu.Lock()
	r.defaults.put(t, m)
	r.mu.Unlock()
}

// RegisterDefaultFunc 注册按谓词匹配的默认 mapper
func (r *Registry) RegisterDefaultFunc(desc string, match func(reflect.Type) bool, m Mapper) {
	r.mu.Lock()
	r.defaults.putFunc(desc, match, m)
	r.mu.Unlock()
}

// Find 查找 t 对应的 mapper, t 为 nil 时返回 null 参数的处理
func (r *Registry) Find(t reflect.Type) (Mapper, error) {
	key := resolvedKey(t)
	if m, ok := r.resolved.Load(key); ok {
		return m.(Mapper), nil
	}

	r.mu.RLock()
	m := r.resolve(t)
	r.mu.RUnlock()
	if m == nil {
		return nil, &ResolutionError{Type: t}
	}

	// 并发时以先存入的为准
	actual, _ := r.resolved.LoadOrStore(key, m)
	return actual.(Mapper), nil
}

// MustFind 找不到时 panic
func (r *Registry) MustFind(t reflect.Type) Mapper {
	m, err := r.Find(t)
	if err != nil {
		panic(err)
	}
	return m
}

func (r *Registry) resolve(t reflect.Type) Mapper {
	if t == nil {
		if r.custom.null != nil {
			return r.custom.null
		}
		return r.defaults.null
	}
	if m := r.custom.find(t, "user defined"); m != nil {
		return m
	}
	return r.defaults.find(t, "default")
}

func resolvedKey(t reflect.Type) interface{} {
	if t == nil {
		return nullKey{}
	}
	return t
}

// TypeOf 支持传入 reflect.Type 或值
func TypeOf(v interface{}) reflect.Type {
	switch t := v.(type) {
	case nil:
		return nil
	case reflect.Type:
		return t
	}
	return reflect.TypeOf(v)
}

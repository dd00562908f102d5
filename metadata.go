package sqlbind

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// MetaData 一条 sql 参数或结果的位置信息, Names/Types 按下标对齐
type MetaData struct {
	Count int
	Names []string  // 参数名, 未知时为 ""; 结果为列名
	Types []SQLType // 驱动声明的类型
}

// NewMetaData 以 names 的长度为准
func NewMetaData(names []string, types []SQLType) *MetaData {
	md := &MetaData{Count: len(names), Names: names, Types: types}
	if len(types) < md.Count {
		md.Types = make([]SQLType, md.Count)
		copy(md.Types, types)
		for i := len(types); i < md.Count; i++ {
			md.Types[i] = SQLTypeOther
		}
	}
	return md
}

// Name 获取第 index 个名字
func (m *MetaData) Name(index int) string {
	if index < 0 || index >= len(m.Names) {
		return ""
	}
	return m.Names[index]
}

// Type 获取第 index 个类型
func (m *MetaData) Type(index int) SQLType {
	if index < 0 || index >= len(m.Types) {
		return SQLTypeOther
	}
	return m.Types[index]
}

// MappingFactory 持有 Registry 和 sql 相关的缓存
type MappingFactory struct {
	registry *Registry
	parsed   *lru.Cache[string, *ParsedSql] // key: 原始 sql
	params   *lru.Cache[string, *MetaData]  // key: 替换后的 sql + 参数名
	results  *lru.Cache[string, *MetaData]  // key: 替换后的 sql
}

// NewMappingFactory 初始化, 未指定 Registry 时使用 NewRegistry()
func NewMappingFactory(opts ...Option) *MappingFactory {
	o := newOptions(opts...)
	if o.registry == nil {
		o.registry = NewRegistry(WithCacheSize(o.cacheSize))
	}
	return &MappingFactory{
		registry: o.registry,
		parsed:   newLRU[string, *ParsedSql](o.cacheSize),
		params:   newLRU[string, *MetaData](o.cacheSize),
		results:  newLRU[string, *MetaData](o.cacheSize),
	}
}

// Registry
func (f *MappingFactory) Registry() *Registry {
	return f.registry
}

// ParseSql 带缓存的 ParseSql
func (f *MappingFactory) ParseSql(sqlStr string) *ParsedSql {
	if p, ok := f.parsed.Get(sqlStr); ok {
		return p
	}
	p := ParseSql(sqlStr)
	f.parsed.Add(sqlStr, p)
	return p
}

// ParamMetaData 参数的元信息, 下标超出命名参数个数的位置名字为空
// 不同的命名参数可能替换为同一条 sql, 所以 key 需要带上参数名
func (f *MappingFactory) ParamMetaData(p *ParsedSql, stmt Statement) (*MetaData, error) {
	key := p.cacheKey()
	if md, ok := f.params.Get(key); ok {
		return md, nil
	}

	count, err := stmt.ParamCount()
	if err != nil {
		return nil, &MetaDataError{Sql: p.Sql(), Direction: DirectionParam, Err: err}
	}
	names := make([]string, count)
	types := make([]SQLType, count)
	paramNames := p.ParameterNames()
	for i := 0; i < count; i++ {
		if i < len(paramNames) {
			names[i] = paramNames[i]
		}
		if types[i], err = stmt.ParamType(i + 1); err != nil {
			return nil, &MetaDataError{Sql: p.Sql(), Direction: DirectionParam, Err: err}
		}
	}
	md := &MetaData{Count: count, Names: names, Types: types}
	f.params.Add(key, md)
	return md, nil
}

// ResultMetaData 结果的元信息
func (f *MappingFactory) ResultMetaData(p *ParsedSql, rows RowSet) (*MetaData, error) {
	if md, ok := f.results.Get(p.Sql()); ok {
		return md, nil
	}

	count, err := rows.ColumnCount()
	if err != nil {
		return nil, &MetaDataError{Sql: p.Sql(), Direction: DirectionResult, Err: err}
	}
	names := make([]string, count)
	types := make([]SQLType, count)
	for i := 0; i < count; i++ {
		if names[i], err = rows.ColumnLabel(i + 1); err != nil {
			return nil, &MetaDataError{Sql: p.Sql(), Direction: DirectionResult, Err: err}
		}
		if types[i], err = rows.ColumnType(i + 1); err != nil {
			return nil, &MetaDataError{Sql: p.Sql(), Direction: DirectionResult, Err: err}
		}
	}
	md := &MetaData{Count: count, Names: names, Types: types}
	f.results.Add(p.Sql(), md)
	return md, nil
}

func newLRU[K comparable, V any](size int) *lru.Cache[K, V] {
	if size <= 0 {
		size = lruSize
	}
	c, err := lru.New[K, V](size)
	if err != nil {
		// size > 0 时不会出错
		panic(err)
	}
	return c
}

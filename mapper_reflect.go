package sqlbind

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jmoiron/sqlx/reflectx"
)

// beanField 结构体的一个属性
type beanField struct {
	name  string
	index []int
	typ   reflect.Type
}

// beanInfo 按 cmp 排好序的属性, 名字等价时后出现的覆盖先出现的
type beanInfo struct {
	fields []*beanField
	cmp    NameComparator
}

func (b *beanInfo) get(name string) (*beanField, bool) {
	i := sort.Search(len(b.fields), func(i int) bool { return b.cmp(b.fields[i].name, name) >= 0 })
	if i < len(b.fields) && b.cmp(b.fields[i].name, name) == 0 {
		return b.fields[i], true
	}
	return nil, false
}

// beanCache 缓存结构体的属性信息, 每个 cmp 一份
type beanCache struct {
	cache  *lru.Cache[reflect.Type, *beanInfo]
	mapper *reflectx.Mapper
}

func newBeanCache(size int) *beanCache {
	return &beanCache{
		cache:  newLRU[reflect.Type, *beanInfo](size),
		mapper: reflectx.NewMapperFunc(defaultBeanTag, func(s string) string { return s }),
	}
}

func (c *beanCache) get(t reflect.Type, cmp NameComparator) *beanInfo {
	if info, ok := c.cache.Get(t); ok {
		return info
	}

	// 只取顶层字段和匿名嵌入提升的字段, 嵌入的 tag 带名字时不会提升
	sm := c.mapper.TypeMap(t)
	fields := make([]*beanField, 0, len(sm.Index))
	for _, fi := range sm.Index {
		if fi.Embedded || strings.Contains(fi.Path, ".") || sm.Paths[fi.Path] != fi {
			continue
		}
		fields = append(fields, &beanField{name: fi.Name, index: fi.Index, typ: fi.Field.Type})
	}
	sort.SliceStable(fields, func(i, j int) bool { return cmp(fields[i].name, fields[j].name) < 0 })
	deduped := fields[:0]
	for _, f := range fields {
		if n := len(deduped); n > 0 && cmp(deduped[n-1].name, f.name) == 0 {
			deduped[n-1] = f
			continue
		}
		deduped = append(deduped, f)
	}

	info := &beanInfo{fields: deduped, cmp: cmp}
	c.cache.Add(t, info)
	return info
}

type reflectAccessor struct {
	cmp   NameComparator
	beans *beanCache
}

// NewReflectObjectMapper 结构体, 字段名取 db tag, 没有 tag 时取字段名
// cmp 为 nil 时按名字精确匹配
func NewReflectObjectMapper(cmp NameComparator) *ObjectMapper {
	return newReflectObjectMapper(cmp, lruSize)
}

func newReflectObjectMapper(cmp NameComparator, cacheSize int) *ObjectMapper {
	if cmp == nil {
		cmp = exactCompare
	}
	return NewObjectMapper(&reflectAccessor{cmp: cmp, beans: newBeanCache(cacheSize)})
}

func (a *reflectAccessor) NewInstance(md *MetaData, t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%s is not a struct", t)
	}
	return reflect.New(t), nil
}

func (a *reflectAccessor) field(obj reflect.Value, name string) (*beanField, error) {
	if obj.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct", obj.Type())
	}
	f, ok := a.beans.get(obj.Type(), a.cmp).get(name)
	if !ok {
		return nil, fmt.Errorf("property %q not found on %s", name, obj.Type())
	}
	return f, nil
}

func (a *reflectAccessor) PropertyType(md *MetaData, obj reflect.Value, name string, index int) (reflect.Type, error) {
	f, err := a.field(obj, name)
	if err != nil {
		return nil, err
	}
	return valueType(f.typ, fieldByIndexReadOnly(obj, f.index)), nil
}

func (a *reflectAccessor) PropertyValue(md *MetaData, obj reflect.Value, name string, index int) (interface{}, error) {
	f, err := a.field(obj, name)
	if err != nil {
		return nil, err
	}
	v := fieldByIndexReadOnly(obj, f.index)
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

func (a *reflectAccessor) SetPropertyValue(md *MetaData, obj reflect.Value, name string, index int, v interface{}) error {
	f, err := a.field(obj, name)
	if err != nil {
		return err
	}
	if !obj.CanAddr() {
		return fmt.Errorf("%s is not addressable", obj.Type())
	}
	return setValue(reflectx.FieldByIndexes(obj, f.index), v)
}

// fieldByIndexReadOnly 嵌入的指针为 nil 时返回无效值
func fieldByIndexReadOnly(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 {
			if v.Kind() == reflect.Ptr {
				if v.IsNil() {
					return reflect.Value{}
				}
				v = v.Elem()
			}
		}
		v = v.Field(x)
	}
	return v
}

package sqlbind

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ObjectMapper 复合对象, 从 index 开始占用剩余的所有位置, 每个位置按属性类型递归查找 mapper
// 属性的 mapper 也是复合类型时, 剩余位置都交给它处理
type ObjectMapper struct {
	accessor Accessor
}

// NewObjectMapper 由 accessor 决定如何存取属性
func NewObjectMapper(accessor Accessor) *ObjectMapper {
	return &ObjectMapper{accessor: accessor}
}

// Composite
func (o *ObjectMapper) Composite(r *Registry, t reflect.Type) bool {
	return true
}

func (o *ObjectMapper) Write(r *Registry, stmt Statement, md *MetaData, index int, t reflect.Type, v interface{}) error {
	obj := removeValuePtr(reflect.ValueOf(v))
	if !obj.IsValid() {
		return &PropertyError{Op: OpGetValue, Name: md.Name(index), Object: v, Type: t, Err: ErrNilParams}
	}

	for i := index; i < md.Count; i++ {
		name := md.Name(i)
		value, err := o.accessor.PropertyValue(md, obj, name, i)
		if err != nil {
			return o.propertyErr(OpGetValue, name, obj, err)
		}
		valueType, err := o.accessor.PropertyType(md, obj, name, i)
		if err != nil {
			return o.propertyErr(OpGetType, name, obj, err)
		}
		valueMapper, err := r.Find(valueType)
		if err != nil {
			return err
		}
		if err := valueMapper.Write(r, stmt, md, i, valueType, value); err != nil {
			return err
		}
		if isComposite(r, valueMapper, valueType) {
			break
		}
	}
	return nil
}

func (o *ObjectMapper) Read(r *Registry, rows RowSet, md *MetaData, index int, t reflect.Type, existing interface{}) (interface{}, error) {
	obj, result, err := o.target(md, t, existing)
	if err != nil {
		return nil, err
	}

	for i := index; i < md.Count; i++ {
		name := md.Name(i)
		valueType, err := o.accessor.PropertyType(md, obj, name, i)
		if err != nil {
			return nil, o.propertyErr(OpGetType, name, obj, err)
		}
		valueMapper, err := r.Find(valueType)
		if err != nil {
			return nil, err
		}
		value, err := valueMapper.Read(r, rows, md, i, valueType, nil)
		if err != nil {
			return nil, err
		}
		if err := o.accessor.SetPropertyValue(md, obj, name, i, value); err != nil {
			return nil, o.propertyErr(OpSetValue, name, obj, err)
		}
		if isComposite(r, valueMapper, valueType) {
			break
		}
	}
	return result(), nil
}

// target 返回可寻址的待填充对象, result 为最终返回值
// 传入的 existing 为指针时原地填充
func (o *ObjectMapper) target(md *MetaData, t reflect.Type, existing interface{}) (obj reflect.Value, result func() interface{}, err error) {
	if !isNilValue(existing) {
		ev := reflect.ValueOf(existing)
		if ev.Kind() == reflect.Ptr {
			if obj = removeValuePtr(ev); obj.IsValid() {
				return obj, func() interface{} { return existing }, nil
			}
		} else {
			p := reflect.New(ev.Type())
			p.Elem().Set(ev)
			return p.Elem(), func() interface{} { return p.Elem().Interface() }, nil
		}
	}

	base := t
	depth := 0
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
		depth++
	}
	p, err := o.accessor.NewInstance(md, base)
	if err != nil {
		return reflect.Value{}, nil, &InstantiationError{Type: t, Err: err}
	}
	return p.Elem(), func() interface{} {
		if depth == 0 {
			return p.Elem().Interface()
		}
		out := p
		for i := 1; i < depth; i++ {
			pp := reflect.New(out.Type())
			pp.Elem().Set(out)
			out = pp
		}
		return out.Interface()
	}, nil
}

func (o *ObjectMapper) propertyErr(op, name string, obj reflect.Value, err error) error {
	pe := &PropertyError{Op: op, Name: name, Type: obj.Type(), Err: err}
	if obj.CanInterface() {
		pe.Object = obj.Interface()
	}
	return pe
}

func isComposite(r *Registry, m Mapper, t reflect.Type) bool {
	if c, ok := m.(CompositeMapper); ok {
		return c.Composite(r, t)
	}
	return false
}

// valueType 接口类型的属性取当前值的动态类型, 值为 nil 时返回 nil, 即按 null 处理
func valueType(static reflect.Type, v reflect.Value) reflect.Type {
	if static.Kind() != reflect.Interface {
		return static
	}
	if !v.IsValid() || v.IsNil() {
		return nil
	}
	return v.Elem().Type()
}

// *******************************************************************************
// *                             list                                            *
// *******************************************************************************

type listAccessor struct{}

// NewListObjectMapper 切片, 位置下标即为切片下标
func NewListObjectMapper() *ObjectMapper {
	return NewObjectMapper(listAccessor{})
}

func (listAccessor) NewInstance(md *MetaData, t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.Slice {
		return reflect.Value{}, fmt.Errorf("%s is not a slice", t)
	}
	p := reflect.New(t)
	p.Elem().Set(reflect.MakeSlice(t, md.Count, md.Count))
	return p, nil
}

func (listAccessor) PropertyType(md *MetaData, obj reflect.Value, name string, index int) (reflect.Type, error) {
	if index < obj.Len() {
		return valueType(obj.Type().Elem(), obj.Index(index)), nil
	}
	return valueType(obj.Type().Elem(), reflect.Value{}), nil
}

func (listAccessor) PropertyValue(md *MetaData, obj reflect.Value, name string, index int) (interface{}, error) {
	if index >= obj.Len() {
		return nil, fmt.Errorf("index %d out of range [0:%d]", index, obj.Len())
	}
	return obj.Index(index).Interface(), nil
}

func (listAccessor) SetPropertyValue(md *MetaData, obj reflect.Value, name string, index int, v interface{}) error {
	if l := obj.Len(); index >= l {
		if !obj.CanSet() {
			return fmt.Errorf("index %d out of range [0:%d]", index, l)
		}
		obj.Set(reflect.AppendSlice(obj, reflect.MakeSlice(obj.Type(), index+1-l, index+1-l)))
	}
	return setValue(obj.Index(index), v)
}

// *******************************************************************************
// *                             map                                             *
// *******************************************************************************

type mapAccessor struct {
	cmp NameComparator
}

// NewMapObjectMapper key 为字符串的 map, cmp 不为 nil 时按 cmp 匹配已有的 key
func NewMapObjectMapper(cmp NameComparator) *ObjectMapper {
	return NewObjectMapper(mapAccessor{cmp: cmp})
}

func (m mapAccessor) NewInstance(md *MetaData, t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.Map || t.Key().Kind() != reflect.String {
		return reflect.Value{}, fmt.Errorf("%s is not a map keyed by string", t)
	}
	p := reflect.New(t)
	p.Elem().Set(reflect.MakeMapWithSize(t, md.Count))
	return p, nil
}

// lookup 先精确匹配, 再按 cmp 匹配, 多个 key 等价时取字典序最小的
func (m mapAccessor) lookup(obj reflect.Value, name string) (reflect.Value, bool) {
	key := reflect.ValueOf(name).Convert(obj.Type().Key())
	if obj.IsNil() {
		return key, false
	}
	if obj.MapIndex(key).IsValid() {
		return key, true
	}
	if m.cmp == nil {
		return key, false
	}

	keys := obj.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	for _, k := range keys {
		if m.cmp(k.String(), name) == 0 {
			return k, true
		}
	}
	return key, false
}

func (m mapAccessor) PropertyType(md *MetaData, obj reflect.Value, name string, index int) (reflect.Type, error) {
	k, ok := m.lookup(obj, name)
	if !ok {
		return valueType(obj.Type().Elem(), reflect.Value{}), nil
	}
	return valueType(obj.Type().Elem(), obj.MapIndex(k)), nil
}

func (m mapAccessor) PropertyValue(md *MetaData, obj reflect.Value, name string, index int) (interface{}, error) {
	k, ok := m.lookup(obj, name)
	if !ok {
		return nil, nil
	}
	return obj.MapIndex(k).Interface(), nil
}

func (m mapAccessor) SetPropertyValue(md *MetaData, obj reflect.Value, name string, index int, v interface{}) error {
	if obj.IsNil() {
		if !obj.CanSet() {
			return errors.New("map is nil")
		}
		obj.Set(reflect.MakeMap(obj.Type()))
	}
	k, _ := m.lookup(obj, name)
	ev := reflect.New(obj.Type().Elem()).Elem()
	if err := setValue(ev, v); err != nil {
		return err
	}
	obj.SetMapIndex(k, ev)
	return nil
}

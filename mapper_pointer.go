package sqlbind

import (
	"reflect"
)

// PointerMapper 指针, nil 按 null 处理, 其余交给元素类型的 mapper
// 元素为复合类型时直接把指针交给最内层元素的 mapper, 以便原地填充
type PointerMapper struct{}

// NewPointerMapper
func NewPointerMapper() *PointerMapper {
	return &PointerMapper{}
}

// elem 多级指针时, 复合类型取最内层元素的 mapper, 由它按 t 重建指针链
// 否则只去掉一层, 交给下一层的 mapper
func (p *PointerMapper) elem(r *Registry, t reflect.Type) (Mapper, bool, error) {
	base := t.Elem()
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	if base != t.Elem() {
		m, err := r.Find(base)
		if err != nil {
			return nil, false, err
		}
		if isComposite(r, m, base) {
			return m, true, nil
		}
	}
	m, err := r.Find(t.Elem())
	if err != nil {
		return nil, false, err
	}
	return m, isComposite(r, m, t.Elem()), nil
}

// Composite 与元素类型一致
func (p *PointerMapper) Composite(r *Registry, t reflect.Type) bool {
	_, composite, err := p.elem(r, t)
	return err == nil && composite
}

func (p *PointerMapper) Write(r *Registry, stmt Statement, md *MetaData, index int, t reflect.Type, v interface{}) error {
	elemMapper, composite, err := p.elem(r, t)
	if err != nil {
		return err
	}
	if composite {
		return elemMapper.Write(r, stmt, md, index, t, v)
	}

	if isNilValue(v) {
		nullMapper, err := r.Find(nil)
		if err != nil {
			return err
		}
		return nullMapper.Write(r, stmt, md, index, t, nil)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		v = rv.Elem().Interface()
	}
	return elemMapper.Write(r, stmt, md, index, t.Elem(), v)
}

func (p *PointerMapper) Read(r *Registry, rows RowSet, md *MetaData, index int, t reflect.Type, existing interface{}) (interface{}, error) {
	elemMapper, composite, err := p.elem(r, t)
	if err != nil {
		return nil, err
	}
	if composite {
		return elemMapper.Read(r, rows, md, index, t, existing)
	}

	v, err := elemMapper.Read(r, rows, md, index, t.Elem(), nil)
	if err != nil || v == nil {
		return nil, err
	}
	ptr := reflect.New(t.Elem())
	if err := setValue(ptr.Elem(), v); err != nil {
		return nil, &ConversionError{Value: v, From: reflect.TypeOf(v), To: t, Err: err}
	}
	return ptr.Interface(), nil
}

package sqlbind

import (
	"fmt"
	"reflect"
)

// ConverterOption
type ConverterOption func(*converterConfig)

type converterConfig struct {
	nullSafe bool
}

// NullSafe 为 true 时 nil 值不会经过转换函数, 默认 true
func NullSafe(nullSafe bool) ConverterOption {
	return func(c *converterConfig) {
		c.nullSafe = nullSafe
	}
}

// ConverterMapper 把驱动不认识的 T 转为 N 后交给 N 的 mapper 处理, 可多级串联
type ConverterMapper[T, N any] struct {
	toNative   func(T) (N, error)
	fromNative func(N) (T, error)
	nativeType reflect.Type
	nullSafe   bool
}

// NewConverterMapper toNative 用于写, fromNative 用于读
func NewConverterMapper[T, N any](toNative func(T) (N, error), fromNative func(N) (T, error), opts ...ConverterOption) *ConverterMapper[T, N] {
	c := &converterConfig{nullSafe: true}
	for _, opt := range opts {
		opt(c)
	}
	return &ConverterMapper[T, N]{
		toNative:   toNative,
		fromNative: fromNative,
		nativeType: reflect.TypeOf((*N)(nil)).Elem(),
		nullSafe:   c.nullSafe,
	}
}

func (c *ConverterMapper[T, N]) Write(r *Registry, stmt Statement, md *MetaData, index int, t reflect.Type, v interface{}) error {
	if c.nullSafe && isNilValue(v) {
		nullMapper, err := r.Find(nil)
		if err != nil {
			return err
		}
		return nullMapper.Write(r, stmt, md, index, t, nil)
	}

	var value T
	if v != nil {
		tv, ok := v.(T)
		if !ok {
			return &ConversionError{Value: v, From: t, To: c.nativeType, Err: fmt.Errorf("value type %T is not %s", v, reflect.TypeOf((*T)(nil)).Elem())}
		}
		value = tv
	}
	nativeValue, err := c.toNative(value)
	if err != nil {
		return &ConversionError{Value: v, From: t, To: c.nativeType, Err: err}
	}

	nativeMapper, err := r.Find(c.nativeType)
	if err != nil {
		return err
	}
	return nativeMapper.Write(r, stmt, md, index, c.nativeType, nativeValue)
}

func (c *ConverterMapper[T, N]) Read(r *Registry, rows RowSet, md *MetaData, index int, t reflect.Type, existing interface{}) (interface{}, error) {
	nativeMapper, err := r.Find(c.nativeType)
	if err != nil {
		return nil, err
	}
	nv, err := nativeMapper.Read(r, rows, md, index, c.nativeType, nil)
	if err != nil {
		return nil, err
	}
	if nv == nil && c.nullSafe {
		return nil, nil
	}

	var nativeValue N
	if nv != nil {
		n, ok := nv.(N)
		if !ok {
			// 驱动返回的类型与 N 不一致时, 按 database/sql 的规则转换
			if err := convertAssign(&n, nv); err != nil {
				return nil, &ConversionError{Value: nv, From: c.nativeType, To: t, Err: err}
			}
		}
		nativeValue = n
	}
	value, err := c.fromNative(nativeValue)
	if err != nil {
		return nil, &ConversionError{Value: nv, From: c.nativeType, To: t, Err: err}
	}
	return value, nil
}

func (c *ConverterMapper[T, N]) String() string {
	return fmt.Sprintf("ConverterMapper(%s => %s)", reflect.TypeOf((*T)(nil)).Elem(), c.nativeType)
}

package sqlbind

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNullRow     = errors.New("row is null")
	ErrTooManyRows = errors.New("more than one row returned")
	ErrNilParams   = errors.New("params is nil")
	ErrNotSettable = errors.New("params must be a non-nil pointer or map")
	errNilPtr      = errors.New("destination pointer is nil")
)

// ResolutionError 找不到类型对应的 mapper, 属于配置问题
type ResolutionError struct {
	Type reflect.Type
}

func (e *ResolutionError) Error() string {
	return "no mapper found for type " + typeName(e.Type)
}

// ConversionError 转换函数执行失败
type ConversionError struct {
	Value    interface{}
	From, To reflect.Type
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("unable to convert value '%v' of type %s to type %s, err: %v", e.Value, typeName(e.From), typeName(e.To), e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// 属性操作
const (
	OpGetValue = "get value from"
	OpGetType  = "get type from"
	OpSetValue = "set value into"
)

// PropertyError 读写对象属性失败
type PropertyError struct {
	Op     string
	Name   string
	Object interface{}
	Type   reflect.Type
	Err    error
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("unable to %s property %q of object '%v' type %s, err: %v", e.Op, e.Name, e.Object, typeName(e.Type), e.Err)
}

func (e *PropertyError) Unwrap() error { return e.Err }

// InstantiationError 新建对象失败
type InstantiationError struct {
	Type reflect.Type
	Err  error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("unable to create instance of %s, err: %v", typeName(e.Type), e.Err)
}

func (e *InstantiationError) Unwrap() error { return e.Err }

// 元信息方向
const (
	DirectionParam  = "param"
	DirectionResult = "result"
)

// MetaDataError 无法从 statement/rows 中获取元信息
type MetaDataError struct {
	Sql       string
	Direction string
	Err       error
}

func (e *MetaDataError) Error() string {
	return fmt.Sprintf("unable to extract %s meta data, err: %v, sqlStr: %s", e.Direction, e.Err, e.Sql)
}

func (e *MetaDataError) Unwrap() error { return e.Err }

// DriverError 驱动层的绑定/读取失败
type DriverError struct {
	Op    string
	Index int // 从 1 开始
	Err   error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s at position %d is failed, err: %v", e.Op, e.Index, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

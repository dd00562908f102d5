package sqlbind

import (
	"reflect"
)

// ScalarMapper 直接交给驱动处理的类型, 只占一个位置
type ScalarMapper struct {
	typ reflect.Type // 为 nil 时按驱动默认类型读取
}

// NewScalarMapper t 为读取时指定的类型
func NewScalarMapper(t reflect.Type) *ScalarMapper {
	return &ScalarMapper{typ: t}
}

func (s *ScalarMapper) Write(r *Registry, stmt Statement, md *MetaData, index int, t reflect.Type, v interface{}) error {
	sqlType := md.Type(index)
	if isNilValue(v) {
		if err := stmt.SetNull(index+1, sqlType); err != nil {
			return &DriverError{Op: "set null", Index: index + 1, Err: err}
		}
		return nil
	}
	if err := stmt.SetObject(index+1, v, sqlType); err != nil {
		return &DriverError{Op: "set object", Index: index + 1, Err: err}
	}
	return nil
}

func (s *ScalarMapper) Read(r *Registry, rows RowSet, md *MetaData, index int, t reflect.Type, existing interface{}) (interface{}, error) {
	var (
		v   interface{}
		err error
	)
	if s.typ == nil {
		v, err = rows.Object(index + 1)
	} else {
		v, err = rows.ObjectAs(index+1, s.typ)
	}
	if err != nil {
		return nil, &DriverError{Op: "get object", Index: index + 1, Err: err}
	}
	return v, nil
}

func (s *ScalarMapper) String() string {
	return "ScalarMapper(" + typeName(s.typ) + ")"
}

// isNilValue nil 或 nil 指针/map/切片等
func isNilValue(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

package sqlbind

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Str 将内容转为 string
func Str(src interface{}) string {
	if src == nil {
		return ""
	}

	switch value := src.(type) {
	case int:
		return strconv.Itoa(value)
	case int8:
		return strconv.Itoa(int(value))
	case int16:
		return strconv.Itoa(int(value))
	case int32:
		return strconv.Itoa(int(value))
	case int64:
		return strconv.FormatInt(value, 10)
	case uint:
		return strconv.FormatUint(uint64(value), 10)
	case uint8:
		return strconv.FormatUint(uint64(value), 10)
	case uint16:
		return strconv.FormatUint(uint64(value), 10)
	case uint32:
		return strconv.FormatUint(uint64(value), 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case string:
		return value
	case []byte:
		return string(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// joinArgs 打印 sql 参数用
func joinArgs(args []interface{}) string {
	buf := getTmpBuf(len(args) * 8)
	defer putTmpBuf(buf)
	buf.WriteByte('[')
	for i, arg := range args {
		if i > 0 {
			buf.WriteString(", ")
		}
		if arg == nil {
			buf.WriteString("NULL")
			continue
		}
		buf.WriteString(Str(arg))
	}
	buf.WriteByte(']')
	return buf.String()
}

// removeValuePtr 移除多指针
func removeValuePtr(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return v
}

// setValue 把 mapper 读出的值设置到 dst, v 为 nil 时设置为零值
func setValue(dst reflect.Value, v interface{}) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	sv := reflect.ValueOf(v)
	dt := dst.Type()
	switch {
	case sv.Type().AssignableTo(dt):
		dst.Set(sv)
		return nil
	case dt.Kind() == reflect.Ptr && sv.Type().AssignableTo(dt.Elem()):
		p := reflect.New(dt.Elem())
		p.Elem().Set(sv)
		dst.Set(p)
		return nil
	case sv.Kind() == reflect.Ptr && !sv.IsNil() && sv.Elem().Type().AssignableTo(dt):
		dst.Set(sv.Elem())
		return nil
	}

	if dst.CanAddr() {
		return convertAssign(dst.Addr().Interface(), v)
	}
	tmp := reflect.New(dt)
	if err := convertAssign(tmp.Interface(), v); err != nil {
		return err
	}
	dst.Set(tmp.Elem())
	return nil
}

// isBasicKind 驱动能直接处理的基础类型
func isBasicKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	}
	return false
}

// trimLower 去空格转小写
func trimLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

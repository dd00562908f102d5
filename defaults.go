package sqlbind

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net/url"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Char 单个字符, 以字符串的形式存储
type Char rune

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	valuerType  = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	anyType     = reflect.TypeOf((*interface{})(nil)).Elem()
)

// registerDefaults 注册顺序即为祖先匹配的优先级
func registerDefaults(r *Registry, cacheSize int) {
	// 驱动直接支持的类型
	r.RegisterDefault(nil, NewScalarMapper(nil))
	for _, v := range []interface{}{
		"", false,
		int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		float32(0), float64(0),
		[]byte(nil), sql.RawBytes(nil),
		time.Time{}, decimal.Decimal{}, uuid.UUID{},
	} {
		t := reflect.TypeOf(v)
		r.RegisterDefault(t, NewScalarMapper(t))
	}

	// 需要转换的类型
	r.RegisterDefault(reflect.TypeOf(url.URL{}), NewConverterMapper(urlToString, stringToURL))
	r.RegisterDefault(reflect.TypeOf(&url.URL{}), NewConverterMapper(urlPtrToString, stringToURLPtr))
	r.RegisterDefault(reflect.TypeOf(Char(0)), NewConverterMapper(charToString, stringToChar))
	r.RegisterDefault(reflect.TypeOf(time.Duration(0)), NewConverterMapper(durationToInt64, int64ToDuration))
	r.RegisterDefault(reflect.TypeOf(&timestamppb.Timestamp{}), NewConverterMapper(timestampToTime, timeToTimestamp))
	r.RegisterDefault(reflect.TypeOf(&durationpb.Duration{}), NewConverterMapper(pbDurationToDuration, durationToPbDuration))

	// 按类型特征匹配
	r.RegisterDefaultFunc("sql.Scanner and driver.Valuer", isScannerValuer, scalarFor{})
	r.RegisterDefaultFunc("pointer", func(t reflect.Type) bool { return t.Kind() == reflect.Ptr }, NewPointerMapper())
	r.RegisterDefaultFunc("basic kind", isBasicKind, scalarFor{})
	r.RegisterDefaultFunc("slice", func(t reflect.Type) bool { return t.Kind() == reflect.Slice }, NewListObjectMapper())
	r.RegisterDefaultFunc("map[string]", func(t reflect.Type) bool {
		return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
	}, NewMapObjectMapper(UpperUnderscoreCompare))

	// 兜底
	r.RegisterDefault(anyType, newReflectObjectMapper(UpperUnderscoreCompare, cacheSize))
}

// isScannerValuer 非指针类型, 指针实现了 sql.Scanner 且值实现了 driver.Valuer, 如: sql.NullString
func isScannerValuer(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr || t.Kind() == reflect.Interface {
		return false
	}
	return reflect.PointerTo(t).Implements(scannerType) && t.Implements(valuerType)
}

// scalarFor 按请求的类型读取的 ScalarMapper
type scalarFor struct{}

func (scalarFor) Write(r *Registry, stmt Statement, md *MetaData, index int, t reflect.Type, v interface{}) error {
	return NewScalarMapper(t).Write(r, stmt, md, index, t, v)
}

func (scalarFor) Read(r *Registry, rows RowSet, md *MetaData, index int, t reflect.Type, existing interface{}) (interface{}, error) {
	return NewScalarMapper(t).Read(r, rows, md, index, t, existing)
}

func urlToString(u url.URL) (string, error) {
	return u.String(), nil
}

func stringToURL(s string) (url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return url.URL{}, err
	}
	return *u, nil
}

func urlPtrToString(u *url.URL) (string, error) {
	return u.String(), nil
}

func stringToURLPtr(s string) (*url.URL, error) {
	return url.Parse(s)
}

func charToString(c Char) (string, error) {
	return string(rune(c)), nil
}

func stringToChar(s string) (Char, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.New("string length should be 1")
	}
	r, _ := utf8.DecodeRuneInString(s)
	return Char(r), nil
}

func durationToInt64(d time.Duration) (int64, error) {
	return int64(d), nil
}

func int64ToDuration(i int64) (time.Duration, error) {
	return time.Duration(i), nil
}

func timestampToTime(ts *timestamppb.Timestamp) (time.Time, error) {
	if err := ts.CheckValid(); err != nil {
		return time.Time{}, err
	}
	return ts.AsTime(), nil
}

func timeToTimestamp(t time.Time) (*timestamppb.Timestamp, error) {
	return timestamppb.New(t), nil
}

func pbDurationToDuration(d *durationpb.Duration) (time.Duration, error) {
	if err := d.CheckValid(); err != nil {
		return 0, err
	}
	return d.AsDuration(), nil
}

func durationToPbDuration(d time.Duration) (*durationpb.Duration, error) {
	return durationpb.New(d), nil
}

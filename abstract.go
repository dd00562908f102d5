package sqlbind

import (
	"context"
	"database/sql"
	"reflect"
)

// DBer *sql.DB, *sql.Tx, *sqlx.DB 都满足
type DBer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Logger
type Logger interface {
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warning(v ...interface{})
	Warningf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Statement 参数绑定的目标, 位置从 1 开始
type Statement interface {
	ParamCount() (int, error)
	ParamType(index int) (SQLType, error)
	SetNull(index int, sqlType SQLType) error
	SetObject(index int, v interface{}, sqlType SQLType) error
}

// RowSet 结果行的来源, 位置从 1 开始
type RowSet interface {
	ColumnCount() (int, error)
	ColumnLabel(index int) (string, error)
	ColumnType(index int) (SQLType, error)
	Object(index int) (interface{}, error)
	ObjectAs(index int, t reflect.Type) (interface{}, error)
}

// Mapper 无状态, 负责把 t 类型的值写到 stmt 的 index 位置, 或从 rows 的 index 位置读出
// index 为 MetaData 中的下标, 从 0 开始
type Mapper interface {
	Write(r *Registry, stmt Statement, md *MetaData, index int, t reflect.Type, v interface{}) error
	Read(r *Registry, rows RowSet, md *MetaData, index int, t reflect.Type, existing interface{}) (interface{}, error)
}

// CompositeMapper 复合 mapper, 会占用从 index 开始到结尾的所有位置
type CompositeMapper interface {
	Mapper
	Composite(r *Registry, t reflect.Type) bool
}

// Accessor ObjectMapper 对具体对象的属性存取, obj 均为可寻址的非指针值
type Accessor interface {
	// NewInstance 返回指向新对象的指针
	NewInstance(md *MetaData, t reflect.Type) (reflect.Value, error)
	PropertyType(md *MetaData, obj reflect.Value, name string, index int) (reflect.Type, error)
	PropertyValue(md *MetaData, obj reflect.Value, name string, index int) (interface{}, error)
	SetPropertyValue(md *MetaData, obj reflect.Value, name string, index int, v interface{}) error
}

// NameComparator 名字比较, 返回值同 strings.Compare
type NameComparator func(a, b string) int

// SelectCallBackFn 对每行查询结果进行处理
type SelectCallBackFn[T any] func(row T) error

// TxFn 事务内执行
type TxFn func(s *Session) error

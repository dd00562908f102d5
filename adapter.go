package sqlbind

import (
	"database/sql"
	"fmt"
	"reflect"
)

// 以下为对接 database/sql 的 Statement/RowSet

// *******************************************************************************
// *                             statement                                       *
// *******************************************************************************

// ArgsStatement 把绑定的参数收集为 database/sql 的 args
// database/sql 无法获取参数的声明类型, 统一为 SQLTypeOther
type ArgsStatement struct {
	args []interface{}
}

// NewArgsStatement 参数个数与命名参数一致
func NewArgsStatement(p *ParsedSql) *ArgsStatement {
	return &ArgsStatement{args: make([]interface{}, p.ParameterCount())}
}

func (a *ArgsStatement) ParamCount() (int, error) {
	return len(a.args), nil
}

func (a *ArgsStatement) ParamType(index int) (SQLType, error) {
	if err := a.check(index); err != nil {
		return SQLTypeOther, err
	}
	return SQLTypeOther, nil
}

func (a *ArgsStatement) SetNull(index int, sqlType SQLType) error {
	if err := a.check(index); err != nil {
		return err
	}
	a.args[index-1] = nil
	return nil
}

func (a *ArgsStatement) SetObject(index int, v interface{}, sqlType SQLType) error {
	if err := a.check(index); err != nil {
		return err
	}
	a.args[index-1] = v
	return nil
}

// Args 绑定后的参数
func (a *ArgsStatement) Args() []interface{} {
	return a.args
}

func (a *ArgsStatement) check(index int) error {
	if index < 1 || index > len(a.args) {
		return fmt.Errorf("parameter index %d out of range [1:%d]", index, len(a.args))
	}
	return nil
}

// *******************************************************************************
// *                             rows                                            *
// *******************************************************************************

// Rows 包装 *sql.Rows, 调用 Next 后缓存当前行
type Rows struct {
	rows   *sql.Rows
	cols   []string
	types  []*sql.ColumnType
	values []interface{}
}

// NewRows
func NewRows(rows *sql.Rows) *Rows {
	return &Rows{rows: rows}
}

// Next 读取下一行
func (r *Rows) Next() (bool, error) {
	if !r.rows.Next() {
		return false, r.rows.Err()
	}
	if err := r.initCols(); err != nil {
		return false, err
	}

	values := make([]interface{}, len(r.cols))
	dest := make([]interface{}, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := r.rows.Scan(dest...); err != nil {
		return false, fmt.Errorf("rows scan is failed, err: %w", err)
	}
	r.values = values
	return true, nil
}

// Close
func (r *Rows) Close() error {
	return r.rows.Close()
}

func (r *Rows) initCols() (err error) {
	if r.cols != nil {
		return nil
	}
	if r.cols, err = r.rows.Columns(); err != nil {
		return err
	}
	r.types, err = r.rows.ColumnTypes()
	return err
}

func (r *Rows) ColumnCount() (int, error) {
	if err := r.initCols(); err != nil {
		return 0, err
	}
	return len(r.cols), nil
}

func (r *Rows) ColumnLabel(index int) (string, error) {
	if err := r.check(index); err != nil {
		return "", err
	}
	return r.cols[index-1], nil
}

func (r *Rows) ColumnType(index int) (SQLType, error) {
	if err := r.check(index); err != nil {
		return SQLTypeOther, err
	}
	if index > len(r.types) {
		return SQLTypeOther, nil
	}
	return SQLTypeOf(r.types[index-1].DatabaseTypeName()), nil
}

func (r *Rows) Object(index int) (interface{}, error) {
	if err := r.check(index); err != nil {
		return nil, err
	}
	if index > len(r.values) {
		return nil, fmt.Errorf("column %d is not fetched, should call Next first", index)
	}
	return r.values[index-1], nil
}

func (r *Rows) ObjectAs(index int, t reflect.Type) (interface{}, error) {
	src, err := r.Object(index)
	if err != nil {
		return nil, err
	}
	return objectAs(src, t)
}

func (r *Rows) check(index int) error {
	if err := r.initCols(); err != nil {
		return err
	}
	if index < 1 || index > len(r.cols) {
		return fmt.Errorf("column index %d out of range [1:%d]", index, len(r.cols))
	}
	return nil
}

// *******************************************************************************
// *                             values                                          *
// *******************************************************************************

// ValueRows 内存中的一行, 如: 把 LastInsertId 回写到参数对象
type ValueRows struct {
	labels []string
	types  []SQLType
	values []interface{}
}

// NewValueRows labels 与 values 按下标对应
func NewValueRows(labels []string, values ...interface{}) *ValueRows {
	types := make([]SQLType, len(labels))
	for i := range types {
		types[i] = SQLTypeOther
	}
	return &ValueRows{labels: labels, types: types, values: values}
}

// WithTypes 指定列类型
func (v *ValueRows) WithTypes(types ...SQLType) *ValueRows {
	copy(v.types, types)
	return v
}

func (v *ValueRows) ColumnCount() (int, error) {
	return len(v.labels), nil
}

func (v *ValueRows) ColumnLabel(index int) (string, error) {
	if err := v.check(index); err != nil {
		return "", err
	}
	return v.labels[index-1], nil
}

func (v *ValueRows) ColumnType(index int) (SQLType, error) {
	if err := v.check(index); err != nil {
		return SQLTypeOther, err
	}
	return v.types[index-1], nil
}

func (v *ValueRows) Object(index int) (interface{}, error) {
	if err := v.check(index); err != nil {
		return nil, err
	}
	if index > len(v.values) {
		return nil, nil
	}
	return v.values[index-1], nil
}

func (v *ValueRows) ObjectAs(index int, t reflect.Type) (interface{}, error) {
	src, err := v.Object(index)
	if err != nil {
		return nil, err
	}
	return objectAs(src, t)
}

func (v *ValueRows) check(index int) error {
	if index < 1 || index > len(v.labels) {
		return fmt.Errorf("column index %d out of range [1:%d]", index, len(v.labels))
	}
	return nil
}

// objectAs 把驱动返回的值转为 t, NULL 返回 nil
func objectAs(src interface{}, t reflect.Type) (interface{}, error) {
	if src == nil {
		return nil, nil
	}
	if st := reflect.TypeOf(src); st == t {
		return src, nil
	}
	dest := reflect.New(t)
	if err := convertAssign(dest.Interface(), src); err != nil {
		return nil, err
	}
	return dest.Elem().Interface(), nil
}

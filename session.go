package sqlbind

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/jmoiron/sqlx"
)

// Session 在 DBer 上执行带命名参数的 sql
// 参数对象的属性按 :name 绑定, 结果行按列名映射到结果对象
type Session struct {
	db       DBer
	factory  *MappingFactory
	bindType int
	printSql bool
}

// NewSession db 可以为 *sql.DB, *sql.Tx, *sqlx.DB 等
func NewSession(db DBer, opts ...Option) *Session {
	o := newOptions(opts...)
	factory := DefaultFactory()
	if o.registry != nil {
		factory = NewMappingFactory(opts...)
	}
	return newSession(db, factory, o)
}

func newSession(db DBer, factory *MappingFactory, o *options) *Session {
	return &Session{
		db:       db,
		factory:  factory,
		bindType: sqlx.BindType(trimLower(o.driverName)),
		printSql: o.printSql,
	}
}

// Factory
func (s *Session) Factory() *MappingFactory {
	return s.factory
}

// bind 解析 sql 并绑定参数, 返回可执行的 sql 和参数
func (s *Session) bind(sqlStr string, params interface{}) (*ParsedSql, string, []interface{}, error) {
	p := s.factory.ParseSql(sqlStr)
	stmt := NewArgsStatement(p)
	if params == nil {
		if p.ParameterCount() > 0 {
			return nil, "", nil, fmt.Errorf("%w, sqlStr: %s", ErrNilParams, sqlStr)
		}
	} else {
		md, err := s.factory.ParamMetaData(p, stmt)
		if err != nil {
			return nil, "", nil, err
		}
		if md.Count > 0 {
			reg := s.factory.Registry()
			t := reflect.TypeOf(params)
			m, err := reg.Find(t)
			if err != nil {
				return nil, "", nil, err
			}
			if err := m.Write(reg, stmt, md, 0, t, params); err != nil {
				return nil, "", nil, err
			}
		}
	}

	execSql := p.Sql()
	if s.bindType != sqlx.QUESTION && s.bindType != sqlx.UNKNOWN {
		execSql = sqlx.Rebind(s.bindType, execSql)
	}
	if s.printSql {
		sLog.Info("sqlStr:", execSql, "args:", joinArgs(stmt.Args()))
	}
	return p, execSql, stmt.Args(), nil
}

// Exec 执行 sql, 返回影响的行数, params 可以为 nil
func (s *Session) Exec(ctx context.Context, sqlStr string, params interface{}) (int64, error) {
	res, err := s.exec(ctx, sqlStr, params)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExecReturning 执行 sql, 并将 LastInsertId 回写到 params 中名为 returning 的属性
// params 须为非 nil 的指针或 map, 否则回写的是副本, 直接返回 ErrNotSettable 且不执行 sql
func (s *Session) ExecReturning(ctx context.Context, sqlStr string, params interface{}, returning string) (int64, error) {
	if !settable(params) {
		return 0, fmt.Errorf("%w, got: %T", ErrNotSettable, params)
	}
	res, err := s.exec(ctx, sqlStr, params)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return affected, fmt.Errorf("get last insert id is failed, err: %w", err)
	}

	reg := s.factory.Registry()
	t := reflect.TypeOf(params)
	m, err := reg.Find(t)
	if err != nil {
		return affected, err
	}
	rows := NewValueRows([]string{returning}, id).WithTypes(SQLTypeBigInt)
	md := NewMetaData([]string{returning}, []SQLType{SQLTypeBigInt})
	if _, err := m.Read(reg, rows, md, 0, t, params); err != nil {
		return affected, err
	}
	return affected, nil
}

func settable(v interface{}) bool {
	if isNilValue(v) {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Ptr, reflect.Map:
		return true
	}
	return false
}

func (s *Session) exec(ctx context.Context, sqlStr string, params interface{}) (sql.Result, error) {
	_, execSql, args, err := s.bind(sqlStr, params)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, execSql, args...)
	if err != nil {
		return nil, fmt.Errorf("exec is failed, err: %w, sqlStr: %s", err, execSql)
	}
	return res, nil
}

// Refresh 查询一行并回填到 params 中, params 应为指针
func (s *Session) Refresh(ctx context.Context, sqlStr string, params interface{}) error {
	if params == nil {
		return ErrNilParams
	}
	t := reflect.TypeOf(params)
	found := false
	err := s.query(ctx, sqlStr, params, func(reg *Registry, rows RowSet, md *MetaData) error {
		if found {
			return ErrTooManyRows
		}
		found = true
		m, err := reg.Find(t)
		if err != nil {
			return err
		}
		_, err = m.Read(reg, rows, md, 0, t, params)
		return err
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNullRow
	}
	return nil
}

// query 对每一行调用 fn
func (s *Session) query(ctx context.Context, sqlStr string, params interface{}, fn func(reg *Registry, rows RowSet, md *MetaData) error) error {
	p, execSql, args, err := s.bind(sqlStr, params)
	if err != nil {
		return err
	}
	sqlRows, err := s.db.QueryContext(ctx, execSql, args...)
	if err != nil {
		return fmt.Errorf("query is failed, err: %w, sqlStr: %s", err, execSql)
	}
	rows := NewRows(sqlRows)
	defer rows.Close()

	reg := s.factory.Registry()
	var md *MetaData
	for {
		ok, err := rows.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if md == nil {
			if md, err = s.factory.ResultMetaData(p, rows); err != nil {
				return err
			}
		}
		if err := fn(reg, rows, md); err != nil {
			return err
		}
	}
	return nil
}

// QueryFn 查询多行, 每行映射为 T 后交给 fn 处理, 不会缓存所有结果
func QueryFn[T any](ctx context.Context, s *Session, sqlStr string, params interface{}, fn SelectCallBackFn[T]) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return s.query(ctx, sqlStr, params, func(reg *Registry, rows RowSet, md *MetaData) error {
		v, err := readAs[T](reg, rows, md, t)
		if err != nil {
			return err
		}
		return fn(v)
	})
}

// Query 查询多行, 每行映射为 T
func Query[T any](ctx context.Context, s *Session, sqlStr string, params interface{}) ([]T, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	res := make([]T, 0)
	err := s.query(ctx, sqlStr, params, func(reg *Registry, rows RowSet, md *MetaData) error {
		v, err := readAs[T](reg, rows, md, t)
		if err != nil {
			return err
		}
		res = append(res, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// QueryOne 查询一行, 没有数据时返回 ErrNullRow, 多于一行时返回 ErrTooManyRows
func QueryOne[T any](ctx context.Context, s *Session, sqlStr string, params interface{}) (T, error) {
	var (
		res   T
		found bool
	)
	t := reflect.TypeOf((*T)(nil)).Elem()
	err := s.query(ctx, sqlStr, params, func(reg *Registry, rows RowSet, md *MetaData) (err error) {
		if found {
			return ErrTooManyRows
		}
		found = true
		res, err = readAs[T](reg, rows, md, t)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if !found {
		return res, ErrNullRow
	}
	return res, nil
}

func readAs[T any](reg *Registry, rows RowSet, md *MetaData, t reflect.Type) (T, error) {
	var res T
	m, err := reg.Find(t)
	if err != nil {
		return res, err
	}
	v, err := m.Read(reg, rows, md, 0, t, nil)
	if err != nil {
		return res, err
	}
	if v == nil {
		return res, nil
	}
	if tv, ok := v.(T); ok {
		return tv, nil
	}
	if err := setValue(reflect.ValueOf(&res).Elem(), v); err != nil {
		return res, &ConversionError{Value: v, From: reflect.TypeOf(v), To: t, Err: err}
	}
	return res, nil
}

package sqlbind

import (
	"context"
	"errors"
)

// *******************************************************************************
// *                             常用封装, 使用 DefaultFactory                      *
// *******************************************************************************

// IsNullRow 根据 err 判断是否结果为空
func IsNullRow(err error) bool {
	return errors.Is(err, ErrNullRow)
}

// ExecForSql 执行 INSERT/UPDATE/DELETE 等操作, 返回影响的行数
func ExecForSql(ctx context.Context, db DBer, sqlStr string, params interface{}) (int64, error) {
	return NewSession(db).Exec(ctx, sqlStr, params)
}

// FindAll 查询多行
func FindAll[T any](ctx context.Context, db DBer, sqlStr string, params interface{}) ([]T, error) {
	return Query[T](ctx, NewSession(db), sqlStr, params)
}

// FindOne 查询一行
func FindOne[T any](ctx context.Context, db DBer, sqlStr string, params interface{}) (T, error) {
	return QueryOne[T](ctx, NewSession(db), sqlStr, params)
}

// FindFn 逐行处理
func FindFn[T any](ctx context.Context, db DBer, sqlStr string, params interface{}, fn SelectCallBackFn[T]) error {
	return QueryFn[T](ctx, NewSession(db), sqlStr, params, fn)
}

// Count 获取总数, sql 应只返回一列
func Count(ctx context.Context, db DBer, sqlStr string, params interface{}) (int64, error) {
	return QueryOne[int64](ctx, NewSession(db), sqlStr, params)
}

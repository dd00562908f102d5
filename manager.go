package sqlbind

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Manager 持有连接池和 MappingFactory, 并发安全, 一般全局一个
type Manager struct {
	db      *sql.DB
	factory *MappingFactory
	opts    *options
}

// Open 打开连接, mysql 会强制 parseTime=true, 以便时间类型读为 time.Time
func Open(driverName, dsn string, opts ...Option) (*Manager, error) {
	if trimLower(driverName) == "mysql" {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("mysql parse dsn is failed, err: %w", err)
		}
		cfg.ParseTime = true
		dsn = cfg.FormatDSN()
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s is failed, err: %w", driverName, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s is failed, err: %w", driverName, err)
	}
	return FromDB(db, driverName, opts...), nil
}

// FromDB 使用已有的 *sql.DB
func FromDB(db *sql.DB, driverName string, opts ...Option) *Manager {
	o := newOptions(append([]Option{WithDriverName(driverName)}, opts...)...)
	return &Manager{
		db:      db,
		factory: NewMappingFactory(opts...),
		opts:    o,
	}
}

// FromGorm 复用 gorm 的连接池, 驱动名取 gorm 的 Dialector
func FromGorm(g *gorm.DB, opts ...Option) (*Manager, error) {
	db, err := g.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm get db is failed, err: %w", err)
	}
	return FromDB(db, g.Dialector.Name(), opts...), nil
}

// DB
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Factory
func (m *Manager) Factory() *MappingFactory {
	return m.factory
}

// Registry
func (m *Manager) Registry() *Registry {
	return m.factory.Registry()
}

// Session 非事务
func (m *Manager) Session() *Session {
	return newSession(m.db, m.factory, m.opts)
}

// Tx 在事务中执行 fn, fn 返回错误或 panic 时回滚
func (m *Manager) Tx(ctx context.Context, fn TxFn) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx is failed, err: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				sLog.Errorf("rollback is failed, err: %v", rbErr)
			}
			return
		}
		err = tx.Commit()
	}()
	return fn(newSession(tx, m.factory, m.opts))
}

// Close
func (m *Manager) Close() error {
	return m.db.Close()
}

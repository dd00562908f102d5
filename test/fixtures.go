package test

import (
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	NoEqErr = "src, dest is not eq"

	SureName = "测试1"
	SureAge  = int32(20)
)

// ManDDL 测试表
const ManDDL = `CREATE TABLE man (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name VARCHAR(10) NOT NULL,
	s_name VARCHAR(10) DEFAULT '',
	age INTEGER NOT NULL,
	addr VARCHAR(50) DEFAULT NULL,
	nickname VARCHAR(30) DEFAULT '',
	created_at TIMESTAMP
)`

type Man struct {
	Id        int64     `db:"id"`
	Name      string    `db:"name"`   // 姓名
	SName     string    `db:"s_name"` // 学名
	Age       int32     `db:"age"`
	Addr      *string   `db:"addr"`
	NickName  string    `db:"nickname"`
	CreatedAt time.Time // 没有 tag, 按字段名匹配 created_at
}

// NewMemDB 内存 sqlite, 只有一个连接, 否则每个连接都是一个新库
func NewMemDB(t testing.TB, ddl ...string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q is failed, err: %v", stmt, err)
		}
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func StructValEqual(dest, src interface{}) bool {
	destVal := reflect.ValueOf(dest)
	srcVal := reflect.ValueOf(src)
	if destVal.NumField() != srcVal.NumField() {
		fmt.Printf("dest: %v\n", dest)
		fmt.Printf("src: %v\n", src)
		return false
	}
	for i := 0; i < destVal.NumField(); i++ {
		if ok := Equal(destVal.Field(i).Interface(), srcVal.Field(i).Interface()); !ok {
			return false
		}
	}
	return true
}

func Equal(dest, src interface{}) bool {
	ok := reflect.DeepEqual(dest, src)
	if !ok {
		fmt.Printf("dest: %v\n", dest)
		fmt.Printf("src: %v\n", src)
	}
	return ok
}

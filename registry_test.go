package sqlbind

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Named interface {
	GetName() string
}

type Entity interface {
	GetId() int64
}

type user struct {
	Id   int64
	Name string
}

func (u user) GetName() string { return u.Name }
func (u user) GetId() int64    { return u.Id }

type myString string

// stubMapper 只用于区分 mapper
type stubMapper struct {
	name string
}

func (s *stubMapper) Write(r *Registry, stmt Statement, md *MetaData, index int, t reflect.Type, v interface{}) error {
	return nil
}

func (s *stubMapper) Read(r *Registry, rows RowSet, md *MetaData, index int, t reflect.Type, existing interface{}) (interface{}, error) {
	return s.name, nil
}

var (
	userType   = reflect.TypeOf(user{})
	namedType  = reflect.TypeOf((*Named)(nil)).Elem()
	entityType = reflect.TypeOf((*Entity)(nil)).Elem()
)

func TestRegistryExact(t *testing.T) {
	r := NewBareRegistry()
	exact := &stubMapper{name: "exact"}
	r.Register(userType, exact)
	r.Register(namedType, &stubMapper{name: "named"})
	r.Register(anyType, &stubMapper{name: "any"})

	m, err := r.Find(userType)
	require.NoError(t, err)
	assert.Same(t, exact, m)

	// 替换精确注册的 mapper
	r2 := NewBareRegistry()
	r2.Register(userType, &stubMapper{name: "old"})
	r2.Register(userType, exact)
	assert.Same(t, exact, r2.MustFind(userType))
}

func TestRegistryAncestorOrder(t *testing.T) {
	named := &stubMapper{name: "named"}
	entity := &stubMapper{name: "entity"}

	t.Run("named 先注册", func(t *testing.T) {
		r := NewBareRegistry()
		r.Register(namedType, named)
		r.Register(entityType, entity)
		assert.Same(t, named, r.MustFind(userType))
	})

	t.Run("entity 先注册", func(t *testing.T) {
		r := NewBareRegistry()
		r.Register(entityType, entity)
		r.Register(namedType, named)
		assert.Same(t, entity, r.MustFind(userType))
	})

	t.Run("谓词与接口按注册顺序", func(t *testing.T) {
		r := NewBareRegistry()
		pred := &stubMapper{name: "struct"}
		r.RegisterFunc("struct", func(t reflect.Type) bool { return t.Kind() == reflect.Struct }, pred)
		r.Register(namedType, named)
		assert.Same(t, pred, r.MustFind(userType))
	})
}

func TestRegistrySticky(t *testing.T) {
	t.Run("先解析再注册更具体的祖先", func(t *testing.T) {
		r := NewBareRegistry()
		entity := &stubMapper{name: "entity"}
		r.Register(entityType, entity)
		assert.Same(t, entity, r.MustFind(userType))

		r.Register(namedType, &stubMapper{name: "named"})
		r.Register(userType, &stubMapper{name: "exact"})
		assert.Same(t, entity, r.MustFind(userType))
	})

	t.Run("先注册再解析", func(t *testing.T) {
		r := NewBareRegistry()
		exact := &stubMapper{name: "exact"}
		r.Register(entityType, &stubMapper{name: "entity"})
		r.Register(userType, exact)
		assert.Same(t, exact, r.MustFind(userType))
	})
}

func TestRegistryCustomBeforeDefault(t *testing.T) {
	r := NewBareRegistry()
	def := &stubMapper{name: "default"}
	custom := &stubMapper{name: "custom"}
	r.RegisterDefault(userType, def)
	r.RegisterDefault(anyType, def)
	r.Register(namedType, custom)

	// 自定义的祖先优先于默认的精确匹配
	assert.Same(t, custom, r.MustFind(userType))
	assert.Same(t, def, r.MustFind(reflect.TypeOf(0)))
}

func TestRegistryResolutionError(t *testing.T) {
	r := NewBareRegistry()
	_, err := r.Find(userType)
	require.Error(t, err)
	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, userType, re.Type)
	assert.Contains(t, err.Error(), "sqlbind.user")

	// nil 只匹配 null 处理
	r.Register(anyType, &stubMapper{name: "any"})
	_, err = r.Find(nil)
	require.True(t, errors.As(err, &re))
	assert.Nil(t, re.Type)
	assert.Contains(t, err.Error(), "<nil>")

	null := &stubMapper{name: "null"}
	r2 := NewBareRegistry()
	r2.RegisterDefault(nil, &stubMapper{name: "default null"})
	r2.Register(nil, null)
	assert.Same(t, null, r2.MustFind(nil))

	assert.Panics(t, func() { NewBareRegistry().MustFind(userType) })
}

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()
	testCases := []struct {
		desc string
		typ  reflect.Type
		ok   string
	}{
		{desc: "null", typ: nil, ok: "*sqlbind.ScalarMapper"},
		{desc: "string", typ: reflect.TypeOf(""), ok: "*sqlbind.ScalarMapper"},
		{desc: "time", typ: reflect.TypeOf(time.Time{}), ok: "*sqlbind.ScalarMapper"},
		{desc: "自定义 string", typ: reflect.TypeOf(myString("")), ok: "sqlbind.scalarFor"},
		{desc: "Scanner", typ: reflect.TypeOf(sql.NullString{}), ok: "sqlbind.scalarFor"},
		{desc: "url", typ: reflect.TypeOf(url.URL{}), ok: "*sqlbind.ConverterMapper["},
		{desc: "char", typ: reflect.TypeOf(Char(0)), ok: "*sqlbind.ConverterMapper["},
		{desc: "指针", typ: reflect.TypeOf(new(int)), ok: "*sqlbind.PointerMapper"},
		{desc: "切片", typ: reflect.TypeOf([]interface{}{}), ok: "*sqlbind.ObjectMapper"},
		{desc: "map", typ: reflect.TypeOf(map[string]interface{}{}), ok: "*sqlbind.ObjectMapper"},
		{desc: "结构体", typ: userType, ok: "*sqlbind.ObjectMapper"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m, err := r.Find(tC.typ)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(fmt.Sprintf("%T", m), tC.ok), "%T", m)
		})
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	types := []reflect.Type{
		reflect.TypeOf(""), reflect.TypeOf(0), userType, reflect.TypeOf(&user{}),
		reflect.TypeOf([]string{}), reflect.TypeOf(map[string]int{}), nil,
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if j%10 == 0 {
					r.RegisterFunc(fmt.Sprintf("never %d-%d", i, j), func(reflect.Type) bool { return false }, &stubMapper{})
				}
				typ := types[(i+j)%len(types)]
				m, err := r.Find(typ)
				if assert.NoError(t, err) {
					assert.Same(t, r.MustFind(typ), m)
				}
			}
		}(i)
	}
	wg.Wait()
}

package sqlbind

import (
	"database/sql"
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Id        int64 `db:"id"`
	Name      string
	Active    bool
	Level     int8
	Score     float64
	Ratio     float32
	Avatar    []byte
	Balance   decimal.Decimal
	CreatedAt time.Time
	Uid       uuid.UUID
	Home      url.URL
	Site      *url.URL
	Grade     Char
	Ttl       time.Duration
	Nick      *string
	Remark    sql.NullString
}

var accountNames = []string{
	"id", "name", "active", "level", "score", "ratio", "avatar", "balance",
	"created_at", "uid", "home", "site", "grade", "ttl", "nick", "remark",
}

// writeArgs 把 v 按 names 写到 ArgsStatement
func writeArgs(t *testing.T, r *Registry, v interface{}, names ...string) []interface{} {
	t.Helper()
	stmt := &ArgsStatement{args: make([]interface{}, len(names))}
	md := NewMetaData(names, nil)
	typ := TypeOf(v)
	require.NoError(t, r.MustFind(typ).Write(r, stmt, md, 0, typ, v))
	return stmt.Args()
}

// readRow 把一行读为 typ
func readRow(t *testing.T, r *Registry, typ reflect.Type, existing interface{}, names []string, values ...interface{}) interface{} {
	t.Helper()
	md := NewMetaData(names, nil)
	v, err := r.MustFind(typ).Read(r, NewValueRows(names, values...), md, 0, typ, existing)
	require.NoError(t, err)
	return v
}

func TestObjectMapperRoundTrip(t *testing.T) {
	r := NewRegistry()
	site, _ := url.Parse("https://gitee.com/xuesongtao")
	src := account{
		Id:        1,
		Name:      "测试1",
		Active:    true,
		Level:     3,
		Score:     99.5,
		Ratio:     0.25,
		Avatar:    []byte{0x1, 0x2},
		Balance:   decimal.RequireFromString("12.34"),
		CreatedAt: time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC),
		Uid:       uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Home:      url.URL{Scheme: "http", Host: "localhost:8080", Path: "/home"},
		Site:      site,
		Grade:     'A',
		Ttl:       time.Minute,
		Remark:    sql.NullString{String: "remark", Valid: true},
	}

	args := writeArgs(t, r, src, accountNames...)
	require.Len(t, args, len(accountNames))
	assert.Equal(t, "http://localhost:8080/home", args[10])
	assert.Equal(t, "https://gitee.com/xuesongtao", args[11])
	assert.Equal(t, "A", args[12])
	assert.Equal(t, int64(time.Minute), args[13])
	assert.Nil(t, args[14])

	got := readRow(t, r, reflect.TypeOf(account{}), nil, accountNames, args...)
	assert.Equal(t, src, got)

	// 指针原地填充
	dest := &account{Name: "old", Level: 9}
	res := readRow(t, r, reflect.TypeOf(dest), dest, accountNames, args...)
	assert.Same(t, dest, res)
	assert.Equal(t, src, *dest)
}

func TestObjectMapperPtrWrite(t *testing.T) {
	r := NewRegistry()
	u := &user{Id: 1, Name: "name"}
	args := writeArgs(t, r, &u, "name", "id")
	assert.Equal(t, []interface{}{"name", int64(1)}, args)

	// 双重指针读出
	pp := readRow(t, r, reflect.TypeOf((**user)(nil)), nil, []string{"Name"}, "new")
	require.IsType(t, (**user)(nil), pp)
	assert.Equal(t, "new", (**pp.(**user)).Name)
}

func TestPointerMapperMultiLevel(t *testing.T) {
	r := NewRegistry()

	t.Run("原地填充", func(t *testing.T) {
		u := &user{Id: 1}
		got := readRow(t, r, reflect.TypeOf((**user)(nil)), &u, []string{"Name"}, "in")
		assert.Same(t, &u, got)
		assert.Equal(t, user{Id: 1, Name: "in"}, *u)
	})

	t.Run("三级指针", func(t *testing.T) {
		got := readRow(t, r, reflect.TypeOf((***user)(nil)), nil, []string{"Id", "Name"}, int64(2), "three")
		require.IsType(t, (***user)(nil), got)
		assert.Equal(t, user{Id: 2, Name: "three"}, ***got.(***user))

		u := &user{Id: 3, Name: "w"}
		pu := &u
		assert.Equal(t, []interface{}{"w", int64(3)}, writeArgs(t, r, &pu, "name", "id"))
	})

	t.Run("map", func(t *testing.T) {
		got := readRow(t, r, reflect.TypeOf((**map[string]interface{})(nil)), nil, []string{"a"}, int64(1))
		require.IsType(t, (**map[string]interface{})(nil), got)
		assert.Equal(t, map[string]interface{}{"a": int64(1)}, **got.(**map[string]interface{}))
	})

	t.Run("标量", func(t *testing.T) {
		got := readRow(t, r, reflect.TypeOf((**int64)(nil)), nil, []string{"n"}, int64(5))
		require.IsType(t, (**int64)(nil), got)
		assert.Equal(t, int64(5), **got.(**int64))

		assert.Nil(t, readRow(t, r, reflect.TypeOf((**int64)(nil)), nil, []string{"n"}, nil))

		n := int64(6)
		pn := &n
		assert.Equal(t, []interface{}{int64(6)}, writeArgs(t, r, &pn, "n"))
	})

	t.Run("nil", func(t *testing.T) {
		var u *user
		stmt := &ArgsStatement{args: make([]interface{}, 1)}
		md := NewMetaData([]string{"name"}, nil)
		typ := reflect.TypeOf(&u)
		err := r.MustFind(typ).Write(r, stmt, md, 0, typ, &u)
		var pe *PropertyError
		assert.True(t, errors.As(err, &pe))
	})
}

func TestListMapEquivalent(t *testing.T) {
	r := NewRegistry()
	names := []string{"a", "b", "c"}

	list := writeArgs(t, r, []interface{}{int64(1), "x", nil}, names...)
	m := writeArgs(t, r, map[string]interface{}{"a": int64(1), "B": "x", "c": nil}, names...)
	assert.Equal(t, list, m)
	assert.Equal(t, []interface{}{int64(1), "x", nil}, m)

	gotList := readRow(t, r, reflect.TypeOf([]interface{}{}), nil, names, int64(1), "x", nil).([]interface{})
	gotMap := readRow(t, r, reflect.TypeOf(map[string]interface{}{}), nil, names, int64(1), "x", nil).(map[string]interface{})
	require.Len(t, gotList, len(names))
	require.Len(t, gotMap, len(names))
	for i, name := range names {
		assert.Equal(t, gotList[i], gotMap[name], name)
	}

	// 类型化的切片和 map
	ints := readRow(t, r, reflect.TypeOf([]int{}), nil, names, int64(1), "2", []byte("3"))
	assert.Equal(t, []int{1, 2, 3}, ints)
	strs := readRow(t, r, reflect.TypeOf(map[string]string{}), nil, names, int64(1), "2", []byte("3"))
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, strs)
}

func TestMapMapperComparator(t *testing.T) {
	r := NewRegistry()
	m := map[string]interface{}{"CREATED_AT": int64(1), "Name": "name"}
	args := writeArgs(t, r, m, "createdAt", "name", "missing")
	assert.Equal(t, []interface{}{int64(1), "name", nil}, args)

	// 已有等价的 key 时复用
	res := readRow(t, r, reflect.TypeOf(m), m, []string{"created_at"}, int64(2))
	assert.Equal(t, map[string]interface{}{"CREATED_AT": int64(2), "Name": "name"}, res)
}

type withTags struct {
	Id   int64         `db:"id"`
	Tags []interface{} `db:"tags"`
}

func TestNestedComposite(t *testing.T) {
	r := NewRegistry()
	names := []string{"id", "tags", "other"}

	// 切片下标与位置一致, 占用剩余所有位置
	args := writeArgs(t, r, withTags{Id: 1, Tags: []interface{}{"skip", "a", "b"}}, names...)
	assert.Equal(t, []interface{}{int64(1), "a", "b"}, args)

	got := readRow(t, r, reflect.TypeOf(withTags{}), nil, names, int64(1), "a", "b").(withTags)
	assert.Equal(t, int64(1), got.Id)
	assert.Equal(t, []interface{}{nil, "a", "b"}, got.Tags)
}

type base struct {
	Id        int64 `db:"id"`
	CreatedAt time.Time
}

type article struct {
	base
	Title string `db:"title"`
	Value interface{}
}

func TestReflectMapperEmbedded(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	src := article{base: base{Id: 2, CreatedAt: now}, Title: "title", Value: int32(7)}
	names := []string{"id", "CREATED_AT", "title", "value"}
	args := writeArgs(t, r, src, names...)
	assert.Equal(t, []interface{}{int64(2), now, "title", int32(7)}, args)

	// 接口类型的属性为 nil 时按 null 处理
	src.Value = nil
	args = writeArgs(t, r, src, names...)
	assert.Nil(t, args[3])

	got := readRow(t, r, reflect.TypeOf(article{}), nil, names, int64(2), now, "title", "v").(article)
	assert.Equal(t, article{base: base{Id: 2, CreatedAt: now}, Title: "title", Value: "v"}, got)
}

func TestReflectMapperExactCompare(t *testing.T) {
	r := NewBareRegistry()
	r.Register(nil, NewScalarMapper(nil))
	r.Register(reflect.TypeOf(int64(0)), NewScalarMapper(reflect.TypeOf(int64(0))))
	r.Register(reflect.TypeOf(""), NewScalarMapper(reflect.TypeOf("")))
	r.Register(anyType, NewReflectObjectMapper(nil))

	args := writeArgs(t, r, user{Id: 1, Name: "name"}, "Id", "Name")
	assert.Equal(t, []interface{}{int64(1), "name"}, args)

	stmt := &ArgsStatement{args: make([]interface{}, 1)}
	err := r.MustFind(userType).Write(r, stmt, NewMetaData([]string{"name"}, nil), 0, userType, user{})
	var pe *PropertyError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "name", pe.Name)
	assert.Equal(t, OpGetValue, pe.Op)
	assert.Equal(t, userType, pe.Type)
}

func TestConverterNullSafe(t *testing.T) {
	type cents struct{ v int64 }
	var to, from int
	newMapper := func(opts ...ConverterOption) *ConverterMapper[cents, int64] {
		return NewConverterMapper(func(c cents) (int64, error) {
			to++
			return c.v, nil
		}, func(i int64) (cents, error) {
			from++
			return cents{v: i}, nil
		}, opts...)
	}
	centsType := reflect.TypeOf(cents{})
	md := NewMetaData([]string{"c"}, []SQLType{SQLTypeBigInt})

	r := NewRegistry()
	m := newMapper()
	r.Register(centsType, m)

	stmt := &ArgsStatement{args: []interface{}{"placeholder"}}
	require.NoError(t, m.Write(r, stmt, md, 0, centsType, nil))
	assert.Nil(t, stmt.Args()[0])
	v, err := m.Read(r, NewValueRows([]string{"c"}, nil), md, 0, centsType, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Zero(t, to)
	assert.Zero(t, from)

	require.NoError(t, m.Write(r, stmt, md, 0, centsType, cents{v: 5}))
	assert.Equal(t, int64(5), stmt.Args()[0])
	v, err = m.Read(r, NewValueRows([]string{"c"}, "6"), md, 0, centsType, nil)
	require.NoError(t, err)
	assert.Equal(t, cents{v: 6}, v)
	assert.Equal(t, 1, to)
	assert.Equal(t, 1, from)

	// 关闭后 nil 也会经过转换函数
	notSafe := newMapper(NullSafe(false))
	require.NoError(t, notSafe.Write(r, stmt, md, 0, centsType, nil))
	assert.Equal(t, int64(0), stmt.Args()[0])
	v, err = notSafe.Read(r, NewValueRows([]string{"c"}, nil), md, 0, centsType, nil)
	require.NoError(t, err)
	assert.Equal(t, cents{}, v)
	assert.Equal(t, 2, to)
	assert.Equal(t, 2, from)
}

func TestConverterChain(t *testing.T) {
	type level int
	type badge struct{ l level }

	r := NewRegistry()
	r.Register(reflect.TypeOf(level(0)), NewConverterMapper(func(l level) (time.Duration, error) {
		return time.Duration(l) * time.Second, nil
	}, func(d time.Duration) (level, error) {
		return level(d / time.Second), nil
	}))
	r.Register(reflect.TypeOf(badge{}), NewConverterMapper(func(b badge) (level, error) {
		return b.l, nil
	}, func(l level) (badge, error) {
		return badge{l: l}, nil
	}))

	args := writeArgs(t, r, []interface{}{badge{l: 2}}, "b")
	assert.Equal(t, []interface{}{int64(2 * time.Second)}, args)

	got := readRow(t, r, reflect.TypeOf([]badge{}), nil, []string{"b"}, int64(3*time.Second))
	assert.Equal(t, []badge{{l: 3}}, got)
}

func TestMapperErrors(t *testing.T) {
	r := NewRegistry()

	t.Run("转换失败", func(t *testing.T) {
		md := NewMetaData([]string{"grade"}, nil)
		charType := reflect.TypeOf(Char(0))
		_, err := r.MustFind(charType).Read(r, NewValueRows([]string{"grade"}, "AB"), md, 0, charType, nil)
		var ce *ConversionError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, charType, ce.To)
		assert.Equal(t, "AB", ce.Value)
	})

	t.Run("属性不存在", func(t *testing.T) {
		md := NewMetaData([]string{"unknown"}, nil)
		_, err := r.MustFind(userType).Read(r, NewValueRows([]string{"unknown"}, 1), md, 0, userType, nil)
		var pe *PropertyError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, OpGetType, pe.Op)
		assert.Equal(t, "unknown", pe.Name)
	})

	t.Run("参数为 nil", func(t *testing.T) {
		stmt := &ArgsStatement{args: make([]interface{}, 1)}
		var u *user
		err := r.MustFind(reflect.TypeOf(u)).Write(r, stmt, NewMetaData([]string{"id"}, nil), 0, reflect.TypeOf(u), u)
		assert.ErrorIs(t, err, ErrNilParams)
	})

	t.Run("无法实例化", func(t *testing.T) {
		intType := reflect.TypeOf(0)
		_, err := NewReflectObjectMapper(nil).Read(r, NewValueRows([]string{"id"}, 1), NewMetaData([]string{"id"}, nil), 0, intType, nil)
		var ie *InstantiationError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, intType, ie.Type)
	})

	t.Run("驱动绑定失败", func(t *testing.T) {
		stmt := &ArgsStatement{args: make([]interface{}, 1)}
		md := NewMetaData([]string{"id", "name"}, nil)
		err := r.MustFind(userType).Write(r, stmt, md, 0, userType, user{Id: 1, Name: "name"})
		var de *DriverError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, 2, de.Index)
	})

	t.Run("无法解析", func(t *testing.T) {
		bare := NewBareRegistry()
		bare.RegisterFunc("struct", func(t reflect.Type) bool { return t.Kind() == reflect.Struct }, NewReflectObjectMapper(UpperUnderscoreCompare))
		err := bare.MustFind(userType).Write(bare, &ArgsStatement{args: make([]interface{}, 1)}, NewMetaData([]string{"id"}, nil), 0, userType, user{})
		var re *ResolutionError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, reflect.TypeOf(int64(0)), re.Type)
	})
}

func TestPointerMapper(t *testing.T) {
	r := NewRegistry()
	intPtr := reflect.TypeOf((*int)(nil))
	m := r.MustFind(intPtr)
	md := NewMetaData([]string{"n"}, nil)

	stmt := &ArgsStatement{args: make([]interface{}, 1)}
	n := 5
	require.NoError(t, m.Write(r, stmt, md, 0, intPtr, &n))
	assert.Equal(t, 5, stmt.Args()[0])
	require.NoError(t, m.Write(r, stmt, md, 0, intPtr, (*int)(nil)))
	assert.Nil(t, stmt.Args()[0])

	v, err := m.Read(r, NewValueRows([]string{"n"}, int64(6)), md, 0, intPtr, nil)
	require.NoError(t, err)
	require.IsType(t, &n, v)
	assert.Equal(t, 6, *v.(*int))

	v, err = m.Read(r, NewValueRows([]string{"n"}, nil), md, 0, intPtr, nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.False(t, isComposite(r, m, intPtr))
	assert.True(t, isComposite(r, m, reflect.TypeOf(&user{})))
}

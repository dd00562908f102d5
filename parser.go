package sqlbind

const positionalMarker = '?'

// ParsedSql 解析后的 sql, 命名参数(:name)已替换为 ?
type ParsedSql struct {
	sql   string
	names []string // 与 ? 一一对应, 重复的名字不去重
}

// ParseSql 解析命名参数, 如:
// ParseSql("INSERT INTO T (A, B) VALUES (:x, :y)")
// => "INSERT INTO T (A, B) VALUES (?, ?)", [x y]
//
// 冒号前必须有一个非冒号的字符, 所以 sql 开头的 :name 和 ::name 都不会被替换
func ParseSql(sqlStr string) *ParsedSql {
	l := len(sqlStr)
	buf := getTmpBuf(l)
	defer putTmpBuf(buf)

	var names []string
	last := 0 // 未拷贝部分的起点
	for i := 1; i < l; i++ {
		if sqlStr[i] != ':' || sqlStr[i-1] == ':' {
			continue
		}
		if i+1 >= l || !isIdentStart(sqlStr[i+1]) {
			continue
		}
		end := i + 2
		for end < l && isIdentPart(sqlStr[end]) {
			end++
		}
		buf.WriteString(sqlStr[last:i])
		buf.WriteByte(positionalMarker)
		names = append(names, sqlStr[i+1:end])
		last = end

		// 匹配会吃掉冒号前的字符, 所以紧跟在名字后的第一个字符不能再做前导字符
		i = end
	}
	if last == 0 {
		return &ParsedSql{sql: sqlStr}
	}
	buf.WriteString(sqlStr[last:])
	return &ParsedSql{sql: buf.String(), names: names}
}

// Sql 替换后的 sql
func (p *ParsedSql) Sql() string {
	return p.sql
}

// ParameterNames 参数名, 按出现顺序
func (p *ParsedSql) ParameterNames() []string {
	return p.names
}

// ParameterCount 参数个数
func (p *ParsedSql) ParameterCount() int {
	return len(p.names)
}

func (p *ParsedSql) String() string {
	return p.sql
}

func (p *ParsedSql) cacheKey() string {
	if len(p.names) == 0 {
		return p.sql
	}
	buf := getTmpBuf(len(p.sql) + 8*len(p.names))
	defer putTmpBuf(buf)
	buf.WriteString(p.sql)
	for _, name := range p.names {
		buf.WriteByte(0)
		buf.WriteString(name)
	}
	return buf.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

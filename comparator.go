package sqlbind

import (
	"unicode"
	"unicode/utf8"
)

// UpperUnderscoreCompare 忽略大小写和下划线比较, 用于匹配 sql 列名和结构体字段名
// 如: "CREATED_AT", "createdAt", "CreatedAt" 相等, "A_B" 与 "AB" 相等
func UpperUnderscoreCompare(a, b string) int {
	i, j := 0, 0
	for {
		for i < len(a) && a[i] == '_' {
			i++
		}
		for j < len(b) && b[j] == '_' {
			j++
		}

		switch {
		case i >= len(a) && j >= len(b):
			return 0
		case i >= len(a):
			return -1
		case j >= len(b):
			return 1
		}

		c1, s1 := utf8.DecodeRuneInString(a[i:])
		c2, s2 := utf8.DecodeRuneInString(b[j:])
		if c1 != c2 {
			c1 = unicode.ToUpper(c1)
			c2 = unicode.ToUpper(c2)
			if c1 != c2 {
				c1 = unicode.ToLower(c1)
				c2 = unicode.ToLower(c2)
				if c1 != c2 {
					if c1 < c2 {
						return -1
					}
					return 1
				}
			}
		}
		i += s1
		j += s2
	}
}

// exactCompare 未指定比较器时按名字精确匹配
func exactCompare(a, b string) int {
	switch {
	case a == b:
		return 0
	case a < b:
		return -1
	}
	return 1
}

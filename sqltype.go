package sqlbind

import (
	"strconv"
	"strings"
)

// SQLType 驱动声明的类型码, 取值与 JDBC java.sql.Types 一致
type SQLType int

const (
	SQLTypeNull      SQLType = 0
	SQLTypeBit       SQLType = -7
	SQLTypeTinyInt   SQLType = -6
	SQLTypeSmallInt  SQLType = 5
	SQLTypeInteger   SQLType = 4
	SQLTypeBigInt    SQLType = -5
	SQLTypeReal      SQLType = 7
	SQLTypeDouble    SQLType = 8
	SQLTypeDecimal   SQLType = 3
	SQLTypeChar      SQLType = 1
	SQLTypeVarChar   SQLType = 12
	SQLTypeText      SQLType = -1
	SQLTypeBinary    SQLType = -2
	SQLTypeDate      SQLType = 91
	SQLTypeTime      SQLType = 92
	SQLTypeTimestamp SQLType = 93
	SQLTypeBoolean   SQLType = 16
	SQLTypeBlob      SQLType = 2004
	SQLTypeOther     SQLType = 1111
)

func (s SQLType) String() string {
	switch s {
	case SQLTypeNull:
		return "NULL"
	case SQLTypeBit:
		return "BIT"
	case SQLTypeTinyInt:
		return "TINYINT"
	case SQLTypeSmallInt:
		return "SMALLINT"
	case SQLTypeInteger:
		return "INTEGER"
	case SQLTypeBigInt:
		return "BIGINT"
	case SQLTypeReal:
		return "REAL"
	case SQLTypeDouble:
		return "DOUBLE"
	case SQLTypeDecimal:
		return "DECIMAL"
	case SQLTypeChar:
		return "CHAR"
	case SQLTypeVarChar:
		return "VARCHAR"
	case SQLTypeText:
		return "TEXT"
	case SQLTypeBinary:
		return "BINARY"
	case SQLTypeDate:
		return "DATE"
	case SQLTypeTime:
		return "TIME"
	case SQLTypeTimestamp:
		return "TIMESTAMP"
	case SQLTypeBoolean:
		return "BOOLEAN"
	case SQLTypeBlob:
		return "BLOB"
	case SQLTypeOther:
		return "OTHER"
	}
	return "SQLType(" + strconv.Itoa(int(s)) + ")"
}

// SQLTypeOf 根据 sql.ColumnType.DatabaseTypeName() 解析类型码
// 如: "VARCHAR(20)" => SQLTypeVarChar, "UNSIGNED BIGINT" => SQLTypeBigInt
func SQLTypeOf(databaseTypeName string) SQLType {
	name := strings.ToUpper(strings.TrimSpace(databaseTypeName))
	if i := strings.IndexByte(name, '('); i > -1 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.TrimSpace(strings.TrimPrefix(name, "UNSIGNED"))
	name = strings.TrimSpace(strings.TrimSuffix(name, "UNSIGNED"))

	switch name {
	case "NULL":
		return SQLTypeNull
	case "BIT":
		return SQLTypeBit
	case "BOOL", "BOOLEAN":
		return SQLTypeBoolean
	case "TINYINT", "INT1":
		return SQLTypeTinyInt
	case "SMALLINT", "INT2", "YEAR":
		return SQLTypeSmallInt
	case "INT", "INTEGER", "MEDIUMINT", "INT4":
		return SQLTypeInteger
	case "BIGINT", "INT8":
		return SQLTypeBigInt
	case "REAL", "FLOAT", "FLOAT4":
		return SQLTypeReal
	case "DOUBLE", "DOUBLE PRECISION", "FLOAT8":
		return SQLTypeDouble
	case "DECIMAL", "NUMERIC":
		return SQLTypeDecimal
	case "CHAR", "BPCHAR", "NCHAR":
		return SQLTypeChar
	case "VARCHAR", "NVARCHAR", "CHARACTER VARYING":
		return SQLTypeVarChar
	case "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "JSON", "CLOB":
		return SQLTypeText
	case "BINARY", "VARBINARY":
		return SQLTypeBinary
	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BYTEA":
		return SQLTypeBlob
	case "DATE":
		return SQLTypeDate
	case "TIME":
		return SQLTypeTime
	case "TIMESTAMP", "DATETIME", "TIMESTAMPTZ":
		return SQLTypeTimestamp
	}
	return SQLTypeOther
}

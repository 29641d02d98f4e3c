package mssql

import "strings"

// mapSQLServerType normalizes SQL Server type names to generic SQL type names.
func mapSQLServerType(sqlServerType string) string {
	sqlServerType = strings.ToUpper(sqlServerType)

	switch sqlServerType {
	// Integer types
	case "TINYINT":
		return "TINYINT"
	case "SMALLINT":
		return "SMALLINT"
	case "INT":
		return "INTEGER"
	case "BIGINT":
		return "BIGINT"

	// Decimal types
	case "DECIMAL", "NUMERIC":
		return "NUMERIC"
	case "MONEY", "SMALLMONEY":
		return "MONEY"
	case "FLOAT":
		return "DOUBLE PRECISION"
	case "REAL":
		return "REAL"

	// String types
	case "CHAR", "NCHAR":
		return "CHAR"
	case "VARCHAR", "NVARCHAR":
		return "VARCHAR"
	case "TEXT", "NTEXT":
		return "TEXT"

	// Binary types
	case "BINARY", "VARBINARY":
		return "BYTEA"
	case "IMAGE":
		return "BLOB"

	// Date/Time types
	case "DATE":
		return "DATE"
	case "TIME":
		return "TIME"
	case "DATETIME", "DATETIME2", "SMALLDATETIME":
		return "TIMESTAMP"
	case "DATETIMEOFFSET":
		return "TIMESTAMPTZ"

	// Other types
	case "BIT":
		return "BOOL"
	case "UNIQUEIDENTIFIER":
		return "UUID"
	case "XML":
		return "XML"

	default:
		return sqlServerType
	}
}

// isStringType returns true if the type is a character type in SQL Server.
func isStringType(sqlType string) bool {
	sqlType = strings.ToUpper(sqlType)
	stringTypes := []string{
		"CHAR", "NCHAR", "VARCHAR", "NVARCHAR",
		"TEXT", "NTEXT",
	}

	for _, t := range stringTypes {
		if sqlType == t {
			return true
		}
	}
	return false
}

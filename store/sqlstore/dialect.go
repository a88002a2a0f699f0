package sqlstore

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect captures what differs between the supported databases.
type Dialect struct {
	Name string
	// Bind is the sqlx bind type queries are rebound to.
	Bind int
	// BlobType is the column type of "Value".
	BlobType string
	// MaxParams is the most bind parameters one statement may carry.
	MaxParams int
	// Schemas reports whether tables may be placed under a schema.
	Schemas bool
}

var (
	SQLite = Dialect{
		Name:      "sqlite",
		Bind:      sqlx.QUESTION,
		BlobType:  "BLOB",
		MaxParams: 32766,
	}
	Postgres = Dialect{
		Name:      "postgres",
		Bind:      sqlx.DOLLAR,
		BlobType:  "BYTEA",
		MaxParams: 65535,
		Schemas:   true,
	}
)

// DialectFor maps a database/sql driver name to a known dialect.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "pgx", "cloudsqlpostgres":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("sqlstore: no dialect for driver %q", driverName)
}

// quoteIdent returns s as a double-quoted identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func createTableSQL(d Dialect, table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("Key" TEXT NOT NULL PRIMARY KEY, "Value" %s, "Updated" BIGINT NOT NULL, "Expiry" BIGINT NULL)`,
		table, d.BlobType)
}

func createIndexSQL(index, table string) string {
	return fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s ("Expiry")`, index, table)
}

// tableToken stands in for the table while a statement is rebound; quoted
// identifiers may contain '?' and must not be rewritten by sqlx.Rebind.
const tableToken = "{table}"

func bind(d Dialect, table, tmpl string) string {
	return strings.Replace(sqlx.Rebind(d.Bind, tmpl), tableToken, table, 1)
}

func selectSQL(d Dialect, table string, n int) string {
	var b strings.Builder
	b.WriteString(`SELECT "Key", "Value", "Updated", "Expiry" FROM ` + tableToken + ` WHERE "Key" IN (`)
	placeholders(&b, n, "?")
	b.WriteString(`) AND ("Expiry" IS NULL OR "Expiry" > ?)`)
	return bind(d, table, b.String())
}

func upsertSQL(d Dialect, table string, n int) string {
	var b strings.Builder
	b.WriteString(`INSERT INTO ` + tableToken + ` ("Key", "Value", "Updated", "Expiry") VALUES `)
	placeholders(&b, n, "(?, ?, ?, ?)")
	b.WriteString(` ON CONFLICT ("Key") DO UPDATE SET "Value" = excluded."Value", "Updated" = excluded."Updated", "Expiry" = excluded."Expiry"`)
	return bind(d, table, b.String())
}

func deleteSQL(d Dialect, table string, n int) string {
	var b strings.Builder
	b.WriteString(`DELETE FROM ` + tableToken + ` WHERE "Key" IN (`)
	placeholders(&b, n, "?")
	b.WriteString(")")
	return bind(d, table, b.String())
}

func sweepSQL(d Dialect, table string) string {
	return bind(d, table, `DELETE FROM `+tableToken+` WHERE "Expiry" IS NOT NULL AND "Expiry" <= ?`)
}

func placeholders(b *strings.Builder, n int, group string) {
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(group)
	}
}

package discovery

import (
	"database/sql"
	"regexp"
	"strings"

	"github.com/reloquent/modelts/internal/schema"
)

var typeArgs = regexp.MustCompile(`\s*\(.*\)`)

// normalizeDeclaredType lower-cases a declared column type and drops length
// or precision arguments: VARCHAR(255) becomes varchar.
func normalizeDeclaredType(t string) string {
	return strings.TrimSpace(strings.ToLower(typeArgs.ReplaceAllString(t, "")))
}

// scanColumns reads rows shaped as
// (name, type, is_nullable, default, max_length, precision, scale).
// The nullable flag is true when is_nullable is YES or Y.
func scanColumns(rows *sql.Rows, normalize func(string) string) ([]schema.Column, error) {
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var (
			name, dataType, nullable string
			def                      sql.NullString
			maxLen, precision, scale sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &nullable, &def, &maxLen, &precision, &scale); err != nil {
			return nil, err
		}
		if normalize != nil {
			dataType = normalize(dataType)
		}
		cols = append(cols, schema.Column{
			Name:         name,
			DataType:     dataType,
			Nullable:     strings.EqualFold(nullable, "YES") || strings.EqualFold(nullable, "Y"),
			DefaultValue: nullString(def),
			MaxLength:    nullInt(maxLen),
			Precision:    nullInt(precision),
			Scale:        nullInt(scale),
		})
	}
	return cols, rows.Err()
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

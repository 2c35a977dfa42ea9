package discovery

import (
	"fmt"
	"strings"
)

// ScriptGenerator generates offline SQL scripts whose output is a schema
// YAML snapshot usable as a fixture source. It serves databases the
// generator cannot reach directly.
type ScriptGenerator struct {
	DBType string
	Schema string   // schema/owner name
	Tables []string // tables to describe, in output order
}

// GenerateScript returns a SQL script that queries the database catalog
// and prints YAML matching the schema.Schema format.
func (sg *ScriptGenerator) GenerateScript() string {
	switch sg.DBType {
	case "postgresql":
		return sg.postgresScript()
	case "mysql":
		return sg.mysqlScript()
	case "oracle":
		return sg.oracleScript()
	default:
		return fmt.Sprintf("-- Unsupported database type: %s\n", sg.DBType)
	}
}

// GenerateShellWrapper returns a bash wrapper script that runs the SQL
// and captures the output.
func (sg *ScriptGenerator) GenerateShellWrapper() string {
	var client string
	switch sg.DBType {
	case "postgresql":
		client = `psql "$@" -f "$(dirname "$0")/discover.sql" -t -A -q -o "${OUTPUT}"`
	case "mysql":
		client = `mysql "$@" -N -B -r < "$(dirname "$0")/discover.sql" > "${OUTPUT}"`
	case "oracle":
		client = `sqlplus -S "$1" @"$(dirname "$0")/discover.sql" > "${OUTPUT}"`
	default:
		return fmt.Sprintf("#!/bin/bash\necho 'Unsupported database type: %s'\nexit 1\n", sg.DBType)
	}

	return fmt.Sprintf(`#!/bin/bash
# modelts offline discovery (%[1]s)

set -euo pipefail

OUTPUT="${MODELTS_OUTPUT:-schema.yaml}"

echo "Reading %[1]s columns into ${OUTPUT}..."
%[2]s

echo "Done. Generate with source.type: fixture and source.path: ${OUTPUT}"
`, sg.DBType, client)
}

func (sg *ScriptGenerator) postgresScript() string {
	schemaName := sg.Schema
	if schemaName == "" {
		schemaName = "public"
	}

	return fmt.Sprintf(`-- modelts offline discovery (PostgreSQL)
-- Run: psql -h HOST -U USER -d DB -f discover.sql -t -A -q -o schema.yaml

SELECT 'database_type: postgresql';
SELECT 'schema_name: %[1]s';
SELECT 'tables:';

SELECT '- name: ' || t.name || E'\n  columns:' || COALESCE((
         SELECT string_agg(
                  E'\n  - name: ' || c.column_name ||
                  E'\n    data_type: ' || c.udt_name ||
                  E'\n    nullable: ' || CASE WHEN c.is_nullable = 'YES' THEN 'true' ELSE 'false' END,
                  '' ORDER BY c.ordinal_position)
         FROM information_schema.columns c
         WHERE c.table_schema = %[2]s
           AND c.table_name = t.name), ' []')
FROM unnest(ARRAY[%[3]s]::text[]) WITH ORDINALITY AS t(name, ord)
ORDER BY t.ord;
`, schemaName, sqlLiteral(schemaName), sg.tableList())
}

func (sg *ScriptGenerator) mysqlScript() string {
	return fmt.Sprintf(`-- modelts offline discovery (MySQL)
-- Run: mysql -h HOST -u USER -p DB -N -B -r < discover.sql > schema.yaml

SET SESSION group_concat_max_len = 1048576;

SELECT 'database_type: mysql';
SELECT 'tables:';

SELECT CONCAT('- name: ', t.name, CHAR(10), '  columns:', COALESCE((
         SELECT GROUP_CONCAT(
                  CONCAT(CHAR(10), '  - name: ', c.COLUMN_NAME,
                         CHAR(10), '    data_type: ', c.DATA_TYPE,
                         CHAR(10), '    nullable: ', IF(c.IS_NULLABLE = 'YES', 'true', 'false'))
                  ORDER BY c.ORDINAL_POSITION SEPARATOR '')
         FROM information_schema.COLUMNS c
         WHERE c.TABLE_SCHEMA = DATABASE()
           AND c.TABLE_NAME = t.name), ' []'))
FROM (%s) t
ORDER BY t.ord;
`, sg.tableRows(""))
}

func (sg *ScriptGenerator) oracleScript() string {
	owner := "USER"
	if sg.Schema != "" {
		owner = sqlLiteral(sg.Schema)
	}

	return fmt.Sprintf(`-- modelts offline discovery (Oracle)
-- Run: sqlplus -S USER/PASS@HOST:PORT/SID @discover.sql > schema.yaml

SET LINESIZE 32767
SET LONG 1000000
SET PAGESIZE 0
SET FEEDBACK OFF
SET HEADING OFF
SET TRIMSPOOL ON

SELECT 'database_type: oracle' FROM DUAL;
SELECT 'tables:' FROM DUAL;

SELECT '- name: ' || t.name || CHR(10) || '  columns:' || NVL((
         SELECT LISTAGG(
                  CHR(10) || '  - name: ' || LOWER(c.COLUMN_NAME) ||
                  CHR(10) || '    data_type: ' || LOWER(REGEXP_REPLACE(c.DATA_TYPE, '\(.*\)', '')) ||
                  CHR(10) || '    nullable: ' || CASE WHEN c.NULLABLE = 'Y' THEN 'true' ELSE 'false' END,
                  '') WITHIN GROUP (ORDER BY c.COLUMN_ID)
         FROM ALL_TAB_COLUMNS c
         WHERE c.OWNER = %s
           AND c.TABLE_NAME = UPPER(t.name)), ' []')
FROM (%s) t
ORDER BY t.ord;

EXIT;
`, owner, sg.tableRows(" FROM DUAL"))
}

// tableList renders the tables as a comma-separated list of literals.
func (sg *ScriptGenerator) tableList() string {
	quoted := make([]string, len(sg.Tables))
	for i, t := range sg.Tables {
		quoted[i] = sqlLiteral(t)
	}
	return strings.Join(quoted, ", ")
}

// tableRows renders the tables as an (ord, name) derived table.
func (sg *ScriptGenerator) tableRows(from string) string {
	if len(sg.Tables) == 0 {
		return "SELECT 0 AS ord, '' AS name" + from + " WHERE 1 = 0"
	}
	rows := make([]string, len(sg.Tables))
	for i, t := range sg.Tables {
		rows[i] = fmt.Sprintf("SELECT %d AS ord, %s AS name%s", i+1, sqlLiteral(t), from)
	}
	return strings.Join(rows, " UNION ALL ")
}

func sqlLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

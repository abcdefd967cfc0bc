package core

import (
	"strings"

	"github.com/ryanuber/columnize"
)

// tableDelim separates columns. NUL cannot occur in a path.
const tableDelim = "\x00"

// tableRow joins fields into one row for formatTable. NUL bytes in a
// field are dropped so a value never spans columns.
func tableRow(fields ...string) string {
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, tableDelim, "")
	}
	return strings.Join(fields, tableDelim)
}

func formatTable(rows []string) string {
	config := columnize.DefaultConfig()
	config.Delim = tableDelim
	return columnize.Format(rows, config)
}

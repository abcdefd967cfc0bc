package core

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/slackpad/picmeta/metadata"
)

// Inspect resolves a single file and prints what was found.
func Inspect(logger hclog.Logger, path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	out := metadata.Resolve(logger, path)
	fmt.Fprintln(stdout, formatTable(inspectRows(path, out)))
	return nil
}

func inspectRows(path string, out metadata.Outcome) []string {
	rows := []string{
		tableRow("Field", "Value"),
		tableRow("Path", path),
		tableRow("Outcome", out.Kind.String()),
	}
	if out.Cause != nil {
		rows = append(rows, tableRow("Cause", out.Cause.Error()))
	}

	info, ok := out.Information()
	if !ok {
		return rows
	}
	date := "-"
	if t, ok := info.DateTaken(); ok {
		date = t.Format(dateFormat)
	}
	id := info.UniqueID()
	if id == "" {
		id = "-"
	}
	return append(rows,
		tableRow("Orientation", fmt.Sprintf("%d", info.Orientation())),
		tableRow("Transposed", fmt.Sprintf("%t", info.Transposed())),
		tableRow("Width", fmt.Sprintf("%d", info.Width())),
		tableRow("Height", fmt.Sprintf("%d", info.Height())),
		tableRow("Date Taken", date),
		tableRow("Delete Tag", fmt.Sprintf("%t", info.HasDeleteTag())),
		tableRow("Unique ID", id),
	)
}

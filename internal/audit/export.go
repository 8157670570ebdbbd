package audit

import (
	"bytes"
	"context"
	"strings"
	"time"
)

// ExportFilename is the suggested filename for audit log downloads.
const ExportFilename = "audit-logs.csv"

// csvHeader is the fixed export header row.
var csvHeader = []string{"Timestamp", "Action", "Resource Type", "Resource ID", "User Agent"}

// Sink accepts an in-memory payload and a suggested filename and delivers it
// to the user - a browser download, an object store upload, or a local file.
// It is a pure side-effecting leaf capability.
type Sink interface {
	Deliver(ctx context.Context, filename string, data []byte) error
}

// ToCSV serializes entries into a delimited text table. Every field is
// double-quoted (embedded quotes doubled) so embedded delimiters survive a
// round trip through standard CSV parsers.
func ToCSV(entries []Entry) []byte {
	var buf bytes.Buffer
	writeCSVRow(&buf, csvHeader)
	for _, e := range entries {
		writeCSVRow(&buf, []string{
			e.Timestamp.Format(time.RFC3339),
			e.Action,
			e.ResourceType,
			e.ResourceID,
			e.UserAgent,
		})
	}
	return buf.Bytes()
}

func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

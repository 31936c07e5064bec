package nsv

import "bytes"

// rowSink receives the structure of an NSV buffer. Every row is bracketed by
// beginRow and endRow; cells arrive in column order with the raw (still
// escaped) cell-line.
type rowSink interface {
	beginRow()
	cell(col int, line []byte, pos Position) error
	endRow()
}

// tokenize splits data into rows and cell-lines.
//
// A non-empty line is a cell of the current row. An empty line closes the
// current row, or stands for an empty row when no row is open. Empty rows are
// only reported once a later non-empty row follows, so blank lines at the end
// of the input never produce rows. A final row without its terminating blank
// line or newline is still reported.
func tokenize(data []byte, sink rowSink) error {
	var (
		row          int
		col          int
		open         bool
		pendingEmpty int
		lineNo       = 1
	)

	for start := 0; start < len(data); lineNo++ {
		end := bytes.IndexByte(data[start:], newline)
		next := 0
		if end < 0 {
			end = len(data)
			next = len(data)
		} else {
			end += start
			next = end + 1
		}
		line := data[start:end]

		if len(line) == 0 {
			if open {
				sink.endRow()
				open = false
				row++
				col = 0
			} else {
				pendingEmpty++
			}
			start = next
			continue
		}

		if !open {
			for ; pendingEmpty > 0; pendingEmpty-- {
				sink.beginRow()
				sink.endRow()
				row++
			}
			sink.beginRow()
			open = true
		}

		pos := Position{Row: row, Col: col, Line: lineNo, Offset: start}
		if err := sink.cell(col, line, pos); err != nil {
			return err
		}
		col++
		start = next
	}

	if open {
		sink.endRow()
	}
	return nil
}

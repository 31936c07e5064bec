package nsv

import "bytes"

const (
	newline   = '\n'
	backslash = '\\'
)

// appendUnescaped appends the decoded form of one cell-line to dst.
//
// It returns the index in line of the first malformed backslash, or -1. In
// strict mode decoding stops at that point and the caller discards the output;
// in lenient mode the backslash is copied literally and decoding continues.
func appendUnescaped(dst, line []byte, lenient bool) ([]byte, int) {
	if len(line) == 1 && line[0] == backslash {
		return dst, -1
	}

	first := bytes.IndexByte(line, backslash)
	if first < 0 {
		return append(dst, line...), -1
	}

	dst = append(dst, line[:first]...)
	bad := -1
	for i := first; i < len(line); i++ {
		c := line[i]
		if c != backslash {
			dst = append(dst, c)
			continue
		}
		if i+1 < len(line) {
			switch line[i+1] {
			case 'n':
				dst = append(dst, newline)
				i++
				continue
			case backslash:
				dst = append(dst, backslash)
				i++
				continue
			}
		}
		if bad < 0 {
			bad = i
		}
		if !lenient {
			return dst, bad
		}
		dst = append(dst, backslash)
	}
	return dst, bad
}

// appendEscaped appends the wire form of a cell value, without the line
// terminator. Empty values become a single backslash.
func appendEscaped(dst, value []byte) []byte {
	if len(value) == 0 {
		return append(dst, backslash)
	}
	if bytes.IndexByte(value, backslash) < 0 && bytes.IndexByte(value, newline) < 0 {
		return append(dst, value...)
	}
	for _, c := range value {
		switch c {
		case backslash:
			dst = append(dst, backslash, backslash)
		case newline:
			dst = append(dst, backslash, 'n')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

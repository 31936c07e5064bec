// Package nsv implements the NSV (Newline-Separated Values) codec.
//
// In NSV every field occupies its own line and a blank line ends a record:
//
//	name
//	age
//
//	Alice
//	30
//
// The format has exactly two escape sequences. A backslash followed by "n"
// stands for a newline inside a value and two backslashes stand for one. A
// line holding a single backslash is the empty value; NSV has no separate
// representation for NULL, so a decoded empty cell and an absent cell are the
// same thing.
//
// Decode turns a buffer into a Document holding every cell, DecodeProjected
// materializes only selected columns in a single pass, and Encoder builds the
// wire form back from cells. None of these functions perform I/O or start
// goroutines; a Document is safe for concurrent reads once returned.
package nsv

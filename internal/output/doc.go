// Package output writes pipeline records to stdout in one of three formats:
// indented JSON per record, a single {"count": N, ...} envelope, or an
// aligned text table of summary fields.
package output

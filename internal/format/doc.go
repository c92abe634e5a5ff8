// Package format turns mapping files into table fragments.
//
// Every supported on-disk shape has a Reader. Readers sniff cheaply with
// CanRead and parse with Read. Several readers may accept the same bytes, so
// Detect tries them in a fixed priority order and keeps the first successful
// parse. Readers whose rows are keyed on names of an existing namespace
// implement BaseReader and parse later against a view of the aggregate.
package format

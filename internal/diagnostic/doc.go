// Package diagnostic collects structured errors, warnings and notes produced
// while validating a batch declaration and resolving it.
//
// Key capabilities:
//   - Batch validation errors (duplicate ids, unknown presets or formats)
//   - Resolution warnings (dropped namespaces, skipped files)
//   - Propagation reports (ambiguous ancestors)
package diagnostic

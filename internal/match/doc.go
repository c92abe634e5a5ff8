// Package match provides name normalization and Levenshtein distance for
// "did you mean" suggestions on namespace, preset and format names.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - Suggest: picks the closest known name for a misspelled one
package match

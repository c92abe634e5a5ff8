// Package plan resolves a batch of mapping entries into one table.
//
// Resolution pipeline:
//  1. Fingerprint the batch and try the cache
//  2. Fetch, unpack and detect every entry concurrently
//  3. Compute each entry's behavior from the detected format
//  4. Merge entries in rounds: the first pending entry whose requirements
//     are present is renamed, transformed and merged as one step
//  5. Merge the stub last, run post-merge hooks, propagate per unit
//  6. Build the table and store it under the fingerprint
//
// Nothing is cached when any step fails.
package plan

// Package naming defines the identities a code element carries in each
// namespace, and helpers for JVM descriptors.
//
// Key types:
//   - Namespace: one named coordinate system (official, intermediary, yarn, ...)
//   - Namespaces: ordered, duplicate free namespace list
//   - Ident: a member identity (name + descriptor)
//   - ClassNames / MemberNames / LocalNames: per-namespace identity maps
//
// Descriptors use the JVM internal form ("(ILjava/lang/String;)V").
// RemapDescriptor rewrites the class references inside a descriptor and is
// what lets a table reconstruct a member descriptor in namespaces where only
// the class names are known.
package naming

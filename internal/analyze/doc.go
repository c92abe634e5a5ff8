// Package analyze loads compiled JVM classes and extracts their structure.
//
// It reads class files directly (from loose files, jars or directories) and
// builds an in-memory class graph used by the propagator to find the
// ancestors that declare a member.
//
// Key types:
//   - ClassInfo: class name, superclass, interfaces, access and members
//   - Member: field or method declared on a class, with access flags
//   - ClassGraph: every loaded class keyed by internal name
package analyze

// Package propagate copies member names down a class hierarchy.
//
// A method declared by a class but missing from the table in some namespace
// takes the name of the nearest ancestor declaration that has one. The walk
// is breadth first: the superclass before the interfaces, interfaces in
// declaration order. Constructors and class initializers are never copied
// and private or static ancestor methods never lend their names.
package propagate

// Package visitor provides the push based traversal protocol over mapping
// tables and the transform chain used to inspect or rewrite elements while
// they flow from a source to a destination visitor.
//
// A traversal calls VisitHeader once, then VisitClass per class. Each class
// visitor receives its comment, methods and fields; method visitors receive
// parameters and local variables. Returning a nil child visitor closes that
// subtree. Any error stops the traversal immediately.
//
// Transforms are plain values implementing Transform. Apply composes an
// ordered list of them in front of a visitor: every element passes through
// the transforms left to right, and any transform may drop the element
// together with its children.
package visitor

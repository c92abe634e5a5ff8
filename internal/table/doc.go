// Package table implements the multi-namespace symbol table.
//
// A Table holds one row per class, method, field, parameter and local
// variable. Each row maps namespaces to the element's identity in that
// namespace. Member rows are scoped to their class row, parameters and
// locals to their method row.
//
// Tables are immutable. A Builder is the only way to grow one: fragments are
// merged into it by correlating their rows with existing rows through an
// anchor namespace. Build freezes the builder and returns the Table.
//
// A member row records one descriptor together with the namespace it was
// recorded in. Descriptors for the other namespaces are reconstructed during
// traversal by remapping the class references through the table's class
// rows; classes without a name in the target namespace are kept as-is.
//
// Write and Read implement the line oriented cache format:
//
//	mappings	1	official	intermediary	yarn
//	c	a	net/minecraft/class_1	net/minecraft/Foo
//		#	escaped class comment
//		m	official	(I)V	a	method_1	tick
//			p	1	0		p_1	delta
//			v	2	-1	-1		l_1	tmp
//		f	official	I	b	field_1	count
//
// Empty cells mean "no name in this namespace".
package table

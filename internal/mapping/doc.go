// Package mapping provides the batch file schema, parsing, validation,
// mapping presets and the transform registry that turn a declared batch
// into a plan.Batch.
//
// # Schema Overview
//
// A YAML batch file has the following structure:
//
//	key: 1.20.1-yarn
//	environment: joined      # joined, client or server
//	split: false             # client and server jars obfuscated apart
//	cache:
//	  dir: .cache/mappings
//	stub: stub.mappings      # merged last, overwriting
//	entries:
//	  - id: intermediary
//	    preset: intermediary
//	    source: intermediary-1.20.1-v2.jar
//	  - id: yarn
//	    preset: yarn
//	    source: yarn-1.20.1+build.1-v2.jar
//	  - id: extra
//	    source: extra.tiny
//	    renames: {named: extra}
//	    requires: intermediary
//	    provides: [{extra: true}]
//	    transforms:
//	      - kind: replace-class-names
//	        namespace: extra
//	        old: __
//	        new: $
//	    hooks:
//	      - kind: renest
//	        from: intermediary
//	        to: extra
//	propagation:
//	  - name: joined
//	    anchor: official
//	    sources: minecraft-1.20.1-merged.jar
//
// The same batch can be written in HCL, with entry, rename, transform,
// hook and propagation blocks; see hclBatchFile.
//
// # Presets
//
// A preset fills in the renames, requires, provides, transforms and hooks
// of a known mapping set. Fields declared on the entry are applied on top:
// renames after the preset renames, the rest added to the preset values.
//
// # Transform Registry
//
// Transforms and hooks are referenced by kind. The registry validates the
// kind and its parameters and builds the visitor.Transform or plan.Hook.
package mapping

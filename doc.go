// Package jdgen generates coordinated source artifacts for entity fragments of
// a Java web application: configuration classes, data objects and managers,
// request processors, JSP pages and SQL scripts.
//
// The root package holds the error types shared by all subpackages. The
// generator itself lives in compiler/gen, the definition model in schema,
// and the command line tool in cmd/jdgen.
//
// # Packages
//
//   - [naming]: identifier case conversions and pluralization
//   - [templates]: the immutable template catalog
//   - [schema]: attributes, fragments, view options and relationships
//   - compiler/load: YAML and GraphQL definition loading
//   - compiler/alloc: per-namespace constant index allocation
//   - compiler/doc: slot based document model
//   - compiler/state: persisted project state
//   - compiler/gen: emitters, transactions and the atomic writer
//   - dialect/sql: executing generated SQL scripts
package jdgen

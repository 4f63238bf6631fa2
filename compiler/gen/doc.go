// Package gen generates the configuration, persistence, page, processor,
// security, lookup and schema artifacts of entity fragments for a web
// application built on the BWS framework.
//
// # Architecture
//
// Every operation runs as one transaction over a copy of the project state:
//
//	Fragment or Relationship definition
//	        ↓
//	   Generator (preconditions)
//	        ↓
//	   Emitters, in fixed order, filling catalog templates
//	        ↓
//	   Tx (documents, symbols, ids, migration)
//	        ↓
//	   validation (constant references, tables)
//	        ↓
//	   Plan  →  Commit (staged, renamed into place, rolled back on failure)
//
// Emitters never touch the file system. Amendable documents such as the
// constant classes and the SQL scripts carry named slots; an emitter appends
// text to a slot and the document is stored in the state for later
// transactions. Processor classes and pages that are never amended are
// plain files.
//
// # Emitters
//
// The emitters run in this order:
//
//   - configuration: field, action and page ids, fragment configuration class
//   - datasource: data object, manager and persistence classes
//   - view: list, selection and edit pages, menu links
//   - process: view, select, delete, edit and save processors
//   - security: task, action and field rows of the security script
//   - lookup: lookup category ids and the category script
//   - sql: tables, constraints and sequences of the entity script
//
// Later emitters read the constants allocated by earlier ones, so a missing
// constant is reported as a PrerequisiteError rather than emitted.
//
// # Usage
//
//	g, err := gen.New(gen.WithConfigurationPackage("com.acme.app"))
//	if err != nil {
//	    return err
//	}
//	plan, err := g.AddFragment(ctx, st, fragment, nil)
//	if err != nil {
//	    return err
//	}
//	if _, err := plan.Commit(ctx, root); err != nil {
//	    return err
//	}
//
// # Errors
//
// Definition problems are DefinitionError or RelationshipError, missing
// documents are PrerequisiteError, missing slots are AnchorError and
// unresolved constants or invalid tables are ValidationError. A failed
// operation leaves the state and the file system unchanged.
package gen

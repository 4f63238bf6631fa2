// Package edge provides fluent builders for relationships between fragments.
//
//	// Invoice references one Customer.
//	edge.ManyToOne("Invoice", "Customer").Display("", "Name").Required()
//
//	// Invoices and Tags reference each other through INVOICE_TAG.
//	edge.ManyToMany("Invoice", "Tag").Display("Number", "Name").Bidirectional()
package edge

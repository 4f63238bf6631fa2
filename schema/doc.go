// Package schema holds the definition model consumed by the generator.
//
// A [Fragment] describes one entity: its name, Java package, optional parent
// entity and ordered [Attribute] list. [ViewOptions] select the filter
// controls, result columns and paging of the generated list pages. A
// [Relationship] links two fragments that were generated earlier.
//
// The model is input only: nothing in the generation pipeline mutates it.
//
// # Builders
//
// The field and edge subpackages offer fluent builders for definitions
// written in Go:
//
//	f := &schema.Fragment{
//	    EntityName:  "Invoice",
//	    PackageName: "com.acme.billing",
//	    Attributes: []*schema.Attribute{
//	        field.Numeric("Amount").Precision(10).Scale(2).Required().Descriptor(),
//	        field.Text("Number", 20).Filter().Column().Descriptor(),
//	        field.Lookup("Status", "Invoice Status").Descriptor(),
//	    },
//	}
//
//	r := edge.ManyToMany("Invoice", "Tag").
//	    Display("Number", "Name").
//	    Bidirectional().
//	    Descriptor()
//
// # Kinds
//
// Every attribute has exactly one [Kind]. Text-like kinds (TEXT, MEMO,
// EMAIL, PHONE_NUMBER, POSTAL_CODE) carry a maximum length; NUMERIC carries
// precision, scale and a value type; LOOKUP carries a category and the
// multiple values flag. DATE, TIME and BOOLEAN carry nothing.
package schema

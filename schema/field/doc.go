// Package field provides fluent builders for fragment attributes.
//
//	field.Text("Number", 20).Required().Filter().Column()
//	field.Memo("Notes", 2000)
//	field.Numeric("Amount").Precision(10).Scale(2).Positive()
//	field.Date("Issued").Filter()
//	field.Bool("Paid")
//	field.Lookup("Status", "Invoice Status")
//	field.Lookup("Tags", "Invoice Tag").Multiple()
//
// Builders only record what they are told. Kind payload consistency is
// checked by schema.Attribute.Validate when the fragment is generated.
package field

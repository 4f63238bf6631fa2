package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommonToConstant(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "Invoice", "INVOICE"},
		{"two words", "Line Item", "LINE_ITEM"},
		{"lower case", "postal code", "POSTAL_CODE"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommonToConstant(tt.in))
		})
	}
}

func TestCommonToCamel(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		lowerFirst bool
		want       string
	}{
		{"upper first", "line item", false, "LineItem"},
		{"lower first", "Line Item", true, "lineItem"},
		{"mixed case input", "LINE ITEM", true, "lineItem"},
		{"extra whitespace", "  line \t item ", false, "LineItem"},
		{"single word lower", "Invoice", true, "invoice"},
		{"empty", "", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommonToCamel(tt.in, tt.lowerFirst))
		})
	}
	assert.Equal(t, "LineItem", UpperCamel("line item"))
	assert.Equal(t, "lineItem", LowerCamel("line item"))
}

func TestAsSentence(t *testing.T) {
	assert.Equal(t, "Line item", AsSentence("Line Item", true))
	assert.Equal(t, "line item", AsSentence("Line Item", false))
	assert.Equal(t, "", AsSentence("", true))
}

func TestConstantToCommon(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"INVOICE_ID", "Invoice Id"},
		{"VIEW_INVOICES", "View Invoices"},
		{"LINE__ITEM", "Line Item"},
		{"_LEADING", "Leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ConstantToCommon(tt.in))
		})
	}
}

func TestCamelToCommon(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LineItem", "Line Item"},
		{"lineItem", "Line Item"},
		{"Invoice", "Invoice"},
		{"x", "X"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CamelToCommon(tt.in))
		})
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Invoice", "Invoices"},
		{"INVOICE", "INVOICEs"},
		{"Shelf", "Shelves"},
		{"Batch", "Batches"},
		{"Address", "Addresses"},
		{"Box", "Boxes"},
		{"Category", "Categories"},
		{"CATEGORY", "CATEGORies"},
		{"Tag", "Tags"},
		{"", ""},
		{"  ", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Plural(tt.in))
		})
	}
}

func TestClassNameParts(t *testing.T) {
	assert.Equal(t, "Invoice", BaseClassName("com.acme.billing.Invoice"))
	assert.Equal(t, "com.acme.billing", PackageName("com.acme.billing.Invoice"))
	assert.Equal(t, "Invoice", BaseClassName("Invoice"))
	assert.Equal(t, "", PackageName("Invoice"))
	assert.Equal(t, ".Invoice", BaseClassName(".Invoice"))
}

func TestEntityNames(t *testing.T) {
	assert.Equal(t, "Line Item", EntityCommon("com.acme.LineItem"))
	assert.Equal(t, "Line Item", EntityCommon("line item"))
	assert.Equal(t, "Invoice", EntityCommon("invoice"))
	assert.Equal(t, "LINE_ITEM", EntityConstant("LineItem"))
}

func TestReferenceName(t *testing.T) {
	assert.Equal(t, "INVOICE_CUSTOMER", ReferenceName("Invoice", "com.acme.Customer"))
	assert.NotEqual(t, ReferenceName("Invoice", "Tag"), ReferenceName("Tag", "Invoice"))
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"Invoice",
		"line item",
		"Postal Code",
		"sales  order   line",
		"ACCOUNT HOLDER",
		"a",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			norm := Normalize(in)
			assert.Equal(t, norm, ConstantToCommon(CommonToConstant(in)), "constant round trip")
			assert.Equal(t, norm, CamelToCommon(CommonToCamel(in, false)), "upper camel round trip")
			assert.Equal(t, norm, CamelToCommon(CommonToCamel(in, true)), "lower camel round trip")
		})
	}
}

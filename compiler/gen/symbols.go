package gen

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/bws/jdgen/compiler/state"
	"github.com/bws/jdgen/naming"
)

// ExportSymbols renders the symbol table of st as Go source in package pkg,
// one constant block per class. FieldIds.INVOICE_NUMBER = "F12" becomes
// FieldIdsInvoiceNumber = "F12".
func ExportSymbols(st *state.State, pkg string) ([]byte, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by jdgen. DO NOT EDIT.")
	for _, class := range state.SymbolClasses {
		symbols := st.Symbols[class]
		if len(symbols) == 0 {
			continue
		}
		names := slices.Sorted(maps.Keys(symbols))
		var err error
		f.Comment(class + " " + classDescriptions[class])
		f.Const().DefsFunc(func(g *jen.Group) {
			for _, name := range names {
				lit, lerr := symbolLiteral(symbols[name])
				if lerr != nil {
					err = fmt.Errorf("%s.%s: %w", class, name, lerr)
					return
				}
				g.Id(class + naming.UpperCamel(naming.ConstantToCommon(name))).Op("=").Lit(lit)
			}
		})
		if err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render symbols: %w", err)
	}
	return buf.Bytes(), nil
}

// symbolLiteral converts a Java constant value to a Go literal.
func symbolLiteral(v string) (any, error) {
	if s, err := strconv.Unquote(v); err == nil {
		return s, nil
	}
	return strconv.Atoi(v)
}

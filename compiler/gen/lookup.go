package gen

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/bws/jdgen/compiler/state"
	"github.com/bws/jdgen/naming"
	"github.com/bws/jdgen/templates"
)

// lookupEmitter assigns ids to the lookup categories a fragment introduces
// and records them in CategoryIds and the category script. The definition is
// never modified; assignments are reported in the plan.
type lookupEmitter struct{ base }

const lookupOp = "updating lookup information"

// EmitFragment implements Emitter.
func (e *lookupEmitter) EmitFragment(tx *Tx, in *FragmentInput) error {
	lookups := in.Fragment.Lookups()
	if len(lookups) == 0 {
		return nil
	}
	if _, err := tx.Document(tx.Config().ConstantsPath(state.CategoryIds), lookupOp, "CategoryIds class"); err != nil {
		return err
	}
	path := tx.Config().SQLPath(CategorySQL)
	if _, err := tx.Document(path, lookupOp, CategorySQL); err != nil {
		return err
	}
	used := make(map[int]string, len(tx.st.Categories))
	for name, id := range tx.st.Categories {
		used[id] = name
	}
	type category struct {
		constant string
		id       int
	}
	var added []category
	for _, a := range lookups {
		constant := naming.CommonToConstant(a.CategoryName)
		if id, ok := tx.st.Categories[constant]; ok {
			if a.CategoryID != 0 && a.CategoryID != id {
				return NewDefinitionError(in.Names.Common, a.Name,
					"category "+a.CategoryName+" already has id "+strconv.Itoa(id), nil)
			}
			continue
		}
		if a.CategoryID != 0 {
			if other, ok := used[a.CategoryID]; ok {
				return NewDefinitionError(in.Names.Common, a.Name,
					"category id "+strconv.Itoa(a.CategoryID)+" is already used by "+other, nil)
			}
		}
		id := tx.AssignCategory(constant, a.CategoryID)
		used[id] = constant
		added = append(added, category{constant, id})
	}
	slices.SortFunc(added, func(a, b category) int { return cmp.Compare(a.id, b.id) })

	w := e.text()
	for _, c := range added {
		if err := tx.Define(state.CategoryIds, "int", c.constant, strconv.Itoa(c.id)); err != nil {
			return err
		}
		w.addLine(templates.LookupInsertCategory, templates.Tokens{
			"CATEGORY-ID":   strconv.Itoa(c.id),
			"CATEGORY-NAME": sqlString(naming.ConstantToCommon(c.constant)),
		})
	}
	text, err := w.String()
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	return tx.Append(path, "statements", text)
}

// EmitRelationship implements Emitter. Relationships introduce no categories.
func (e *lookupEmitter) EmitRelationship(*Tx, *RelationshipInput) error { return nil }

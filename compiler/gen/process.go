package gen

import (
	"strconv"

	"github.com/bws/jdgen/templates"
)

// processEmitter creates the view, select, delete, edit and save processors
// of a fragment. Processor classes are never amended afterwards.
type processEmitter struct{ base }

// EmitFragment implements Emitter.
func (e *processEmitter) EmitFragment(tx *Tx, in *FragmentInput) error {
	n := in.Names
	common := templates.Tokens{
		"CONFIGURATION-PACKAGE-NAME": tx.Config().ConfigurationPackage,
		"PACKAGE-NAME":               n.Package,
		"ENTITY-NAME":                n.Upper,
		"ENTITY-DESCRIPTION":         n.Description,
		"MANAGER-CLASS-NAME":         n.Manager,
		"ID-FIELD-NAME":              n.ID(),
		"VIEW-CLASS-NAME":            n.ViewClass(),
	}
	with := func(extra templates.Tokens) templates.Tokens {
		t := make(templates.Tokens, len(common)+len(extra))
		for k, v := range common {
			t[k] = v
		}
		for k, v := range extra {
			t[k] = v
		}
		return t
	}
	paging := in.Paging()
	pageSize := strconv.Itoa(in.View.PageSize)

	viewKey := templates.ProcessViewEntities
	viewTokens := templates.Tokens{
		"VIEW-ACTION-NAME":   n.ViewAction(),
		"SAVE-ACTION-NAME":   n.SaveAction(),
		"DELETE-ACTION-NAME": n.DeleteAction(),
		"CANCEL-ACTION-NAME": n.CancelAction(),
		"ATTRIBUTE-NAME":     n.ListPage(),
		"PAGE-NAME":          n.ListPage(),
	}
	selectKey := templates.ProcessSelectEntities
	selectTokens := templates.Tokens{
		"SELECT-CLASS-NAME":         n.SelectClass(),
		"AVAILABLE-ATTRIBUTE-NAME":  n.ListPage(),
		"SELECTED-ATTRIBUTE-NAME":   n.SelectedPlural(),
		"PAGE-NAME":                 n.SelectionPage(),
		"SELECT-ACTION-NAME":        n.SelectAction(),
		"SELECT-ADD-ACTION-NAME":    n.SelectItemAction("ADD"),
		"SELECT-REMOVE-ACTION-NAME": n.SelectItemAction("REMOVE"),
		"SELECT-CLOSE-ACTION-NAME":  n.SelectItemAction("CLOSE"),
	}
	if paging {
		viewKey, selectKey = templates.ProcessViewEntitiesPaging, templates.ProcessSelectEntitiesPaging
		for family, tokens := range map[string]templates.Tokens{"VIEW": viewTokens, "SELECT": selectTokens} {
			tokens["CURRENT-PAGE-NUMBER-FIELD-NAME"] = n.Field("CURRENT_PAGE_NUMBER")
			tokens["SELECTED-PAGE-NUMBER-FIELD-NAME"] = n.Field("SELECTED_PAGE_NUMBER")
			tokens["PREVIOUS-PAGE-ACTION-NAME"] = n.PagingAction(family, "PREVIOUS_PAGE")
			tokens["SELECT-PAGE-ACTION-NAME"] = n.PagingAction(family, "SELECT_PAGE")
			tokens["NEXT-PAGE-ACTION-NAME"] = n.PagingAction(family, "NEXT_PAGE")
			tokens["PAGE-SIZE"] = pageSize
		}
	}
	criteria, err := e.filterCriteria(in)
	if err != nil {
		return err
	}
	viewTokens["FILTER-CRITERIA-DEFINITION"] = criteria
	selectTokens["FILTER-CRITERIA-DEFINITION"] = criteria

	processes := []struct {
		class string
		key   string
		extra templates.Tokens
	}{
		{n.ViewClass(), viewKey, viewTokens},
		{n.SelectClass(), selectKey, selectTokens},
		{n.DeleteClass(), templates.ProcessDeleteEntity, templates.Tokens{
			"DELETE-CLASS-NAME": n.DeleteClass(),
		}},
		{n.EditClass(), templates.ProcessEditEntity, templates.Tokens{
			"EDIT-CLASS-NAME": n.EditClass(),
			"ATTRIBUTE-NAME":  n.EditPage(),
			"PAGE-NAME":       n.EditPage(),
		}},
		{n.SaveClass(), templates.ProcessSaveEntity, templates.Tokens{
			"SAVE-CLASS-NAME": n.SaveClass(),
			"ATTRIBUTE-NAME":  n.EditPage(),
			"PAGE-NAME":       n.EditPage(),
		}},
	}
	for _, p := range processes {
		text, err := e.fill(p.key, with(p.extra))
		if err != nil {
			return err
		}
		if err := tx.Write(tx.Config().ClassPath(n, p.class), text); err != nil {
			return err
		}
	}
	return nil
}

// filterCriteria renders the filter criteria definition shared by the view
// and select processors. Children always filter on their parent id; an
// entity with neither parent nor filters has no definition.
func (e *processEmitter) filterCriteria(in *FragmentInput) (string, error) {
	filters := in.Filters()
	if in.Parent == nil && len(filters) == 0 {
		return "", nil
	}
	n := in.Names
	w := e.text()
	if p := in.Parent; p != nil {
		w.add(templates.ProcessFilterCriteriaStatement, templates.Tokens{
			"FIELD-ID":    p.ID(),
			"DEFAULT-ID":  "null",
			"OPERATOR-ID": "EQUALS",
			"FILTER-ID":   p.ID(),
		})
	}
	for _, a := range filters {
		def := "null"
		if hasOperator(a) {
			def = "FieldIds." + n.OperatorField(a.Name)
		}
		w.add(templates.ProcessFilterCriteriaStatement, templates.Tokens{
			"FIELD-ID":    n.AttributeField(a.Name),
			"DEFAULT-ID":  def,
			"OPERATOR-ID": defaultOperator(a),
			"FILTER-ID":   n.FilterField(a.Name),
		})
	}
	statements, err := w.String()
	if err != nil {
		return "", err
	}
	key := templates.ProcessFilterCriteriaDefinition
	if in.Paging() {
		key = templates.ProcessFilterCriteriaDefinitionPaging
	}
	return e.fill(key, templates.Tokens{
		"SORT-FIELD-NAME":                n.Field("SORT_FIELD"),
		"SORT-DIRECTION-NAME":            n.Field("SORT_DIRECTION"),
		"CURRENT-PAGE-NUMBER-FIELD-NAME": n.Field("CURRENT_PAGE_NUMBER"),
		"FILTER-CRITERIA-STATEMENTS":     statements,
	})
}

// EmitRelationship implements Emitter. Processors are generic over the data
// object and need no change when references are added.
func (e *processEmitter) EmitRelationship(*Tx, *RelationshipInput) error { return nil }

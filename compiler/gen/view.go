package gen

import (
	"strconv"

	"github.com/bws/jdgen/naming"
	"github.com/bws/jdgen/schema"
	"github.com/bws/jdgen/templates"
)

// viewEmitter creates the list, selection and edit pages of a fragment and
// links them from the parent list page or the header menu.
type viewEmitter struct{ base }

// categoryConstant is the CategoryIds constant of a lookup attribute.
func categoryConstant(a *schema.Attribute) string {
	return naming.CommonToConstant(a.CategoryName)
}

// EmitFragment implements Emitter.
func (e *viewEmitter) EmitFragment(tx *Tx, in *FragmentInput) error {
	if in.Parent != nil {
		if err := e.linkFromParent(tx, in); err != nil {
			return err
		}
	} else if err := e.linkFromHeader(tx, in); err != nil {
		return err
	}
	for _, page := range []func(*Tx, *FragmentInput) error{e.listPage, e.selectionPage, e.editPage} {
		if err := page(tx, in); err != nil {
			return err
		}
	}
	return nil
}

// filterData renders the filter group of a list page, or nothing when the
// view has no filters.
func (e *viewEmitter) filterData(in *FragmentInput, action, title string) (string, error) {
	filters := in.Filters()
	if len(filters) == 0 {
		return "", nil
	}
	n := in.Names
	w := e.text()
	w.raw("\n")
	for _, a := range filters {
		tokens := templates.Tokens{"FIELD-NAME": n.FilterField(a.Name)}
		switch a.Kind {
		case schema.KindLookup:
			tokens["CATEGORY-ID"] = categoryConstant(a)
		case schema.KindBoolean:
		default:
			tokens["OPERATOR-NAME"] = n.OperatorField(a.Name)
			tokens["TEXT-MODE"] = boolString(containsByDefault(a))
			tokens["DEFAULT-NAME"] = defaultOperator(a)
			tokens["MAX-LENGTH"] = strconv.Itoa(filterMaxLength(a))
		}
		w.addLine(filterTemplate(a), tokens)
	}
	fields, err := w.String()
	if err != nil {
		return "", err
	}
	return e.fill(templates.JSPFilterData, templates.Tokens{
		"FILTER-FIELDS":    fields,
		"GROUP-STATE-ID":   n.Field("GROUP_STATE"),
		"VIEW-ACTION-NAME": action,
		"PAGE-TITLE":       title,
	})
}

// pagingHeader renders the paging controls of the view or select family, or
// a paragraph break when the view is not paged.
func (e *viewEmitter) pagingHeader(in *FragmentInput, family string) (string, error) {
	if !in.Paging() {
		return "<p/>", nil
	}
	n := in.Names
	return e.fill(templates.JSPPagingHeader, templates.Tokens{
		"CURRENT-PAGE-NUMBER-FIELD-NAME":  n.Field("CURRENT_PAGE_NUMBER"),
		"SELECTED-PAGE-NUMBER-FIELD-NAME": n.Field("SELECTED_PAGE_NUMBER"),
		"PREVIOUS-PAGE-ACTION-NAME":       n.PagingAction(family, "PREVIOUS_PAGE"),
		"SELECT-PAGE-ACTION-NAME":         n.PagingAction(family, "SELECT_PAGE"),
		"NEXT-PAGE-ACTION-NAME":           n.PagingAction(family, "NEXT_PAGE"),
	})
}

// column renders the list cell of an attribute.
func (e *viewEmitter) column(w *textBuilder, n EntityNames, a *schema.Attribute) {
	tokens := templates.Tokens{"FIELD-NAME": n.AttributeField(a.Name)}
	if a.Kind == schema.KindLookup {
		tokens["CATEGORY-ID"] = categoryConstant(a)
	}
	w.addLine(columnTemplate(a), tokens)
}

func (e *viewEmitter) listPage(tx *Tx, in *FragmentInput) error {
	n := in.Names
	columns := in.Columns()
	first := n.AttributeField(columns[0].Name)
	view := n.ViewAction()

	filter, err := e.filterData(in, view, n.PluralUpper)
	if err != nil {
		return err
	}
	paging, err := e.pagingHeader(in, "VIEW")
	if err != nil {
		return err
	}
	w := e.text()
	if in.Parent != nil {
		w.addLine(templates.JSPHiddenEntityField, templates.Tokens{"FIELD-NAME": in.Parent.ID()})
	}
	hidden, err := w.String()
	if err != nil {
		return err
	}
	crumbs := e.text()
	crumbs.addLine(templates.JSPBreadcrumbAction, templates.Tokens{"ACTION-ID": view})
	if in.Paging() {
		for _, op := range pagingOps {
			crumbs.addLine(templates.JSPBreadcrumbAction, templates.Tokens{"ACTION-ID": n.PagingAction("VIEW", op)})
		}
	}
	breadcrumbs, err := crumbs.String()
	if err != nil {
		return err
	}
	headers, cells := e.text(), e.text()
	for _, a := range columns {
		headers.addLine(templates.JSPColumnHeader, templates.Tokens{
			"VIEW-ACTION-NAME":    view,
			"DISPLAY-FIELD-NAME":  n.AttributeField(a.Name),
			"SORT-FIELD-NAME":     n.Field("SORT_FIELD"),
			"SORT-DIRECTION-NAME": n.Field("SORT_DIRECTION"),
		})
		// The first column is the edit link.
		if n.AttributeField(a.Name) != first {
			e.column(cells, n, a)
		}
	}
	headerText, err := headers.String()
	if err != nil {
		return err
	}
	cellText, err := cells.String()
	if err != nil {
		return err
	}
	text, err := e.fill(templates.JSPEntitiesPage, templates.Tokens{
		"CONFIGURATION-PACKAGE-NAME": tx.Config().ConfigurationPackage,
		"PAGE-TITLE":                 n.PluralUpper,
		"PAGE-NAME":                  n.ListPage(),
		"ATTRIBUTE-NAME":             n.ListPage(),
		"ID-FIELD-NAME":              n.ID(),
		"EDIT-FIELD-NAME":            first,
		"DEFAULT-SORT-FIELD-NAME":    first,
		"VIEW-ACTION-NAME":           view,
		"SORT-FIELD-NAME":            n.Field("SORT_FIELD"),
		"SORT-DIRECTION-NAME":        n.Field("SORT_DIRECTION"),
		"ADD-ACTION-NAME":            n.AddAction(),
		"EDIT-ACTION-NAME":           n.EditAction(),
		"DELETE-ACTION-NAME":         n.DeleteAction(),
		"IS-START-OF-TRAIL":          boolString(in.Parent == nil),
		"HIDDEN-FIELDS":              hidden,
		"FILTER-DATA":                filter,
		"PAGING-HEADER":              paging,
		"BREADCRUMB-ACTIONS":         breadcrumbs,
		"COLUMN-HEADERS":             headerText,
		"COLUMNS":                    cellText,
	})
	if err != nil {
		return err
	}
	_, err = tx.Create(tx.Config().PagePath(n, n.PluralUpper), text)
	return err
}

func (e *viewEmitter) selectionPage(tx *Tx, in *FragmentInput) error {
	n := in.Names
	columns := in.Columns()
	form := n.Upper + "Selection"
	filter, err := e.filterData(in, n.SelectAction(), form)
	if err != nil {
		return err
	}
	paging, err := e.pagingHeader(in, "SELECT")
	if err != nil {
		return err
	}
	available, selected, cells := e.text(), e.text(), e.text()
	cells.addLine(templates.JSPColumnSelect, templates.Tokens{"FIELD-NAME": n.ID()})
	for _, a := range columns {
		field := n.AttributeField(a.Name)
		available.addLine(templates.JSPColumnHeader, templates.Tokens{
			"VIEW-ACTION-NAME":    n.SelectAction(),
			"DISPLAY-FIELD-NAME":  field,
			"SORT-FIELD-NAME":     n.Field("SORT_FIELD"),
			"SORT-DIRECTION-NAME": n.Field("SORT_DIRECTION"),
		})
		selected.addLine(templates.JSPSelectColumnHeader, templates.Tokens{"FIELD-NAME": field})
		e.column(cells, n, a)
	}
	var texts [3]string
	for i, w := range []*textBuilder{available, selected, cells} {
		if texts[i], err = w.String(); err != nil {
			return err
		}
	}
	text, err := e.fill(templates.JSPSelectEntitiesPage, templates.Tokens{
		"CONFIGURATION-PACKAGE-NAME": tx.Config().ConfigurationPackage,
		"PAGE-ID":                    n.SelectionPage(),
		"FORM-ID":                    form,
		"AVAILABLE-ATTRIBUTE-NAME":   n.ListPage(),
		"SELECTED-ATTRIBUTE-NAME":    n.SelectedPlural(),
		"SORT-FIELD-NAME":            n.Field("SORT_FIELD"),
		"SORT-DIRECTION-NAME":        n.Field("SORT_DIRECTION"),
		"DEFAULT-SORT-FIELD-NAME":    n.AttributeField(columns[0].Name),
		"SELECT-ACTION-NAME":         n.SelectAction(),
		"SELECT-ADD-ACTION-NAME":     n.SelectItemAction("ADD"),
		"SELECT-REMOVE-ACTION-NAME":  n.SelectItemAction("REMOVE"),
		"SELECT-CLOSE-ACTION-NAME":   n.SelectItemAction("CLOSE"),
		"FILTER-DATA":                filter,
		"PAGING-HEADER":              paging,
		"AVAILABLE-COLUMN-HEADERS":   texts[0],
		"SELECTED-COLUMN-HEADERS":    texts[1],
		"COLUMNS":                    texts[2],
	})
	if err != nil {
		return err
	}
	_, err = tx.Create(tx.Config().PagePath(n, form), text)
	return err
}

func (e *viewEmitter) editPage(tx *Tx, in *FragmentInput) error {
	n := in.Names
	w := e.text()
	if in.Parent != nil {
		w.addLine(templates.JSPHiddenEntityField, templates.Tokens{"FIELD-NAME": in.Parent.ID()})
	}
	hidden, err := w.String()
	if err != nil {
		return err
	}
	fields := e.text()
	for _, a := range in.Fragment.Attributes {
		tokens := templates.Tokens{
			"FIELD-NAME":     n.AttributeField(a.Name),
			"ATTRIBUTE-NAME": n.EditPage(),
		}
		switch a.Kind {
		case schema.KindLookup:
			tokens["CATEGORY-ID"] = categoryConstant(a)
		case schema.KindBoolean, schema.KindDate, schema.KindTime:
		default:
			tokens["MAX-LENGTH"] = strconv.Itoa(entityMaxLength(a))
		}
		fields.addLine(entityFieldTemplate(a), tokens)
	}
	fieldText, err := fields.String()
	if err != nil {
		return err
	}
	text, err := e.fill(templates.JSPEntityPage, templates.Tokens{
		"CONFIGURATION-PACKAGE-NAME":    tx.Config().ConfigurationPackage,
		"ENTITY-PACKAGE-NAME":           n.Package,
		"ENTITY-CLASS-NAME":             n.Upper,
		"PAGE-TITLE":                    n.Upper,
		"PAGE-NAME":                     n.EditPage(),
		"ATTRIBUTE-NAME":                n.EditPage(),
		"ID-FIELD-NAME":                 n.ID(),
		"VERSION-FIELD-NAME":            n.Field("VERSION"),
		"SORT-FIELD-NAME":               n.Field("SORT_FIELD"),
		"SORT-DIRECTION-NAME":           n.Field("SORT_DIRECTION"),
		"SAVE-ACTION-NAME":              n.SaveAction(),
		"CANCEL-ACTION-NAME":            n.CancelAction(),
		"PARENT-PAGE-ID":                n.EditPage(),
		"PARENT-DATA-OBJECT-CLASS-NAME": n.Upper,
		"HIDDEN-FIELDS":                 hidden,
		"FIELDS":                        fieldText,
	})
	if err != nil {
		return err
	}
	_, err = tx.Create(tx.Config().PagePath(n, n.Upper), text)
	return err
}

// linkFromParent adds a dependent link to the parent list page, creating the
// dependent menu column on first use.
func (e *viewEmitter) linkFromParent(tx *Tx, in *FragmentInput) error {
	p, n := *in.Parent, in.Names
	path := tx.Config().PagePath(p, p.PluralUpper)
	d, err := tx.Document(path, "adding dependents to parent JSP", p.PluralUpper+".jsp")
	if err != nil {
		return err
	}
	link, err := e.fill(templates.JSPDependentLink, templates.Tokens{
		"DEPENDENT-ACTION-NAME": n.ViewAction(),
		"DEPENDENT-PAGE-NAME":   n.ListPage(),
		"PARENT-ID-FIELD-NAME":  p.ID(),
	})
	if err != nil {
		return err
	}
	link = line(link)
	if d.Has("dependent-links") {
		return tx.Append(path, "dependent-links", link)
	}
	header, err := e.fill(templates.JSPDependentHeader, nil)
	if err != nil {
		return err
	}
	menu, err := e.fill(templates.JSPDependentMenu, templates.Tokens{"DEPENDENT-LINK": link})
	if err != nil {
		return err
	}
	if err := tx.Append(path, "dependent-header", line(header)); err != nil {
		return err
	}
	return tx.Append(path, "dependent-menu", line(menu))
}

// linkFromHeader adds a top level entity to the header menu.
func (e *viewEmitter) linkFromHeader(tx *Tx, in *FragmentInput) error {
	n := in.Names
	path := tx.Config().HeaderPath()
	if _, err := tx.Document(path, "adding view entities link to header JSP", "Header.jsp"); err != nil {
		return err
	}
	link, err := e.fill(templates.JSPHeaderLink, templates.Tokens{
		"ACTION-NAME": n.ViewAction(),
		"PAGE-NAME":   n.ListPage(),
	})
	if err != nil {
		return err
	}
	return tx.Append(path, "menu-links", line(link))
}

// managerImport adds the secondary data manager import to a page.
func (e *viewEmitter) managerImport(tx *Tx, path string, s side) error {
	text, err := e.fill(templates.JSPImportStatement, templates.Tokens{
		"IMPORT-CLASS-NAME": s.secondary.QualifiedClass(s.secondary.Manager),
	})
	if err != nil {
		return err
	}
	return tx.AppendOnce(path, "imports", line(text))
}

// EmitRelationship implements Emitter. The edit page of each side gains an
// associate field; list pages gain a display column when requested.
func (e *viewEmitter) EmitRelationship(tx *Tx, in *RelationshipInput) error {
	for _, s := range in.sides {
		if err := e.updateEditPage(tx, s); err != nil {
			return err
		}
		if s.inView {
			if err := e.updateListPage(tx, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *viewEmitter) updateEditPage(tx *Tx, s side) error {
	p, sec := s.primary, s.secondary
	path := tx.Config().PagePath(p, p.Upper)
	if _, err := tx.Document(path, "adding associate field to edit entity JSP", p.Upper+".jsp"); err != nil {
		return err
	}
	if err := e.managerImport(tx, path, s); err != nil {
		return err
	}
	component := "associate"
	if s.manyMany {
		component = "associateList"
	}
	text, err := e.fill(templates.JSPAssociateListField, templates.Tokens{
		"ASSOCIATE-COMPONENT-TYPE": component,
		"ASSOCIATE-FIELD-ID":       s.referenceField(),
		"ATTRIBUTE-NAME":           p.EditPage(),
		"MANAGER-CLASS-NAME":       sec.Manager,
		"DISPLAY-FIELD-ID":         sec.AttributeField(s.secondaryAttribute),
		"ACTION-ID":                sec.SelectAction(),
	})
	if err != nil {
		return err
	}
	return tx.Append(path, "associate-fields", line(text))
}

func (e *viewEmitter) updateListPage(tx *Tx, s side) error {
	p, sec := s.primary, s.secondary
	path := tx.Config().PagePath(p, p.PluralUpper)
	if _, err := tx.Document(path, "adding associate display field to view entities JSP", p.PluralUpper+".jsp"); err != nil {
		return err
	}
	if err := e.managerImport(tx, path, s); err != nil {
		return err
	}
	header, err := e.fill(templates.JSPColumnHeader, templates.Tokens{
		"VIEW-ACTION-NAME":    p.ViewAction(),
		"DISPLAY-FIELD-NAME":  s.referenceField(),
		"SORT-FIELD-NAME":     p.Field("SORT_FIELD"),
		"SORT-DIRECTION-NAME": p.Field("SORT_DIRECTION"),
	})
	if err != nil {
		return err
	}
	key := templates.JSPAssociateDisplayField
	if s.manyMany {
		key = templates.JSPAssociateDisplayListField
	}
	cell, err := e.fill(key, templates.Tokens{
		"ASSOCIATE-FIELD-ID": s.referenceField(),
		"MANAGER-CLASS-NAME": sec.Manager,
		"DISPLAY-FIELD-ID":   sec.AttributeField(s.secondaryAttribute),
	})
	if err != nil {
		return err
	}
	if err := tx.Append(path, "column-headers", line(header)); err != nil {
		return err
	}
	return tx.Append(path, "columns", line(cell))
}

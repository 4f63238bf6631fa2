package gen

import (
	"strings"

	"github.com/bws/jdgen/compiler/state"
	"github.com/bws/jdgen/templates"
)

// securityEmitter appends the task, action and field rows of a fragment to
// the security script.
type securityEmitter struct{ base }

const securityOp = "updating security information"

// secureID returns the SQL literal of a constant allocated by the
// configuration emitter, for example 'A12'.
func secureID(tx *Tx, class, name string) (string, error) {
	v, ok := tx.Symbol(class, name)
	if !ok {
		return "", NewPrerequisiteError(securityOp, class+"."+name, tx.Config().ConstantsPath(class))
	}
	return strings.ReplaceAll(v, `"`, "'"), nil
}

// sqlString escapes s for use inside a single quoted SQL literal.
func sqlString(s string) string { return strings.ReplaceAll(s, "'", "''") }

func (e *securityEmitter) script(tx *Tx) (string, error) {
	path := tx.Config().SQLPath(SecuritySQL)
	_, err := tx.Document(path, securityOp, SecuritySQL)
	return path, err
}

// EmitFragment implements Emitter.
func (e *securityEmitter) EmitFragment(tx *Tx, in *FragmentInput) error {
	path, err := e.script(tx)
	if err != nil {
		return err
	}
	n := in.Names
	task := sqlString("Manage " + n.Common)
	group := sqlString(n.Common)

	w := e.text()
	w.raw("\n--\n-- Security configuration for " + n.Description + ".\n--\n")
	w.addLine(templates.SecurityInsertTask, templates.Tokens{"TASK-NAME": task})
	actions := []string{n.ViewAction(), n.AddAction(), n.EditAction(), n.DeleteAction(), n.SaveAction(), n.CancelAction()}
	if in.Paging() {
		for _, op := range pagingOps {
			actions = append(actions, n.PagingAction("VIEW", op))
		}
	}
	for _, id := range actions {
		secure, err := secureID(tx, state.ActionIds, id)
		if err != nil {
			w.fail(err)
			break
		}
		w.addLine(templates.SecurityInsertAction, templates.Tokens{"SECURE-ID": secure, "TASK-NAME": task})
	}
	w.addLine(templates.SecurityInsertFieldGroup, templates.Tokens{"FIELD-GROUP": group})
	for _, a := range in.Fragment.Attributes {
		secure, err := secureID(tx, state.FieldIds, n.AttributeField(a.Name))
		if err != nil {
			w.fail(err)
			break
		}
		w.addLine(templates.SecurityInsertField, templates.Tokens{
			"SECURE-ID":   secure,
			"FIELD-NAME":  sqlString(a.Name),
			"FIELD-GROUP": group,
		})
	}
	text, err := w.String()
	if err != nil {
		return err
	}
	return tx.Append(path, "statements", text)
}

// EmitRelationship implements Emitter. Each side secures its reference field
// in the primary entity's field group.
func (e *securityEmitter) EmitRelationship(tx *Tx, in *RelationshipInput) error {
	path, err := e.script(tx)
	if err != nil {
		return err
	}
	for _, s := range in.sides {
		secure, err := secureID(tx, state.FieldIds, s.referenceField())
		if err != nil {
			return err
		}
		text, err := e.fill(templates.SecurityInsertField, templates.Tokens{
			"SECURE-ID":   secure,
			"FIELD-NAME":  sqlString(s.referenceLabel()),
			"FIELD-GROUP": sqlString(s.primary.Common),
		})
		if err != nil {
			return err
		}
		if err := tx.Append(path, "statements", line(text)); err != nil {
			return err
		}
	}
	return nil
}

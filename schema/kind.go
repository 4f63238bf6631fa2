package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the type of an attribute.
type Kind uint8

// Attribute kinds.
const (
	KindInvalid Kind = iota
	KindText
	KindMemo
	KindEmail
	KindPhoneNumber
	KindPostalCode
	KindNumeric
	KindDate
	KindTime
	KindBoolean
	KindLookup
	endKinds
)

var kindNames = [...]string{
	KindInvalid:     "INVALID",
	KindText:        "TEXT",
	KindMemo:        "MEMO",
	KindEmail:       "EMAIL",
	KindPhoneNumber: "PHONE_NUMBER",
	KindPostalCode:  "POSTAL_CODE",
	KindNumeric:     "NUMERIC",
	KindDate:        "DATE",
	KindTime:        "TIME",
	KindBoolean:     "BOOLEAN",
	KindLookup:      "LOOKUP",
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, 0, endKinds-1)
	for k := KindText; k < endKinds; k++ {
		ks = append(ks, k)
	}
	return ks
}

// String returns the glossary name of the kind, e.g. PHONE_NUMBER.
func (k Kind) String() string {
	if k < endKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k > KindInvalid && k < endKinds }

// IsTextLike reports whether values of the kind are stored as strings with a
// maximum length.
func (k Kind) IsTextLike() bool {
	switch k {
	case KindText, KindMemo, KindEmail, KindPhoneNumber, KindPostalCode:
		return true
	}
	return false
}

// ParseKind parses a kind name case-insensitively. Words may be separated by
// underscores, hyphens or spaces, so "phone number", "Phone-Number" and
// "PHONE_NUMBER" are equivalent.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for k := KindText; k < endKinds; k++ {
		if kindNames[k] == norm {
			return k, nil
		}
	}
	// Short aliases seen in hand written definitions.
	switch norm {
	case "PHONE":
		return KindPhoneNumber, nil
	case "POSTAL", "ZIP":
		return KindPostalCode, nil
	case "BOOL":
		return KindBoolean, nil
	}
	return KindInvalid, fmt.Errorf("schema: unknown attribute kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("schema: cannot marshal %s", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (k Kind) MarshalYAML() (any, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("schema: cannot marshal %s", k)
	}
	return k.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("schema: line %d: attribute kind must be a scalar", node.Line)
	}
	return k.UnmarshalText([]byte(node.Value))
}

// Association is the cardinality of a relationship.
type Association uint8

// Associations.
const (
	ManyToOne Association = iota + 1
	ManyToMany
)

// String returns MANY_TO_ONE or MANY_TO_MANY.
func (a Association) String() string {
	switch a {
	case ManyToOne:
		return "MANY_TO_ONE"
	case ManyToMany:
		return "MANY_TO_MANY"
	}
	return fmt.Sprintf("Association(%d)", uint8(a))
}

// ParseAssociation accepts MANY_TO_ONE, M2O, "many to one" and their many to
// many counterparts.
func ParseAssociation(s string) (Association, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "MANY_TO_ONE", "M2O":
		return ManyToOne, nil
	case "MANY_TO_MANY", "M2M":
		return ManyToMany, nil
	}
	return 0, fmt.Errorf("schema: unknown association %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Association) MarshalText() ([]byte, error) {
	if a != ManyToOne && a != ManyToMany {
		return nil, fmt.Errorf("schema: cannot marshal %s", a)
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Association) UnmarshalText(text []byte) error {
	v, err := ParseAssociation(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Association) MarshalYAML() (any, error) {
	b, err := a.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Association) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("schema: line %d: association must be a scalar", node.Line)
	}
	return a.UnmarshalText([]byte(node.Value))
}

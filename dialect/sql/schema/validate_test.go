package schema

import (
	"strconv"
	"strings"
	"testing"

	atlas "ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intCol(name string, null bool) *atlas.Column {
	return &atlas.Column{Name: name, Type: &atlas.ColumnType{Type: &atlas.IntegerType{T: "integer"}, Raw: "INTEGER", Null: null}}
}

func strCol(name string, size int, null bool) *atlas.Column {
	return &atlas.Column{Name: name, Type: &atlas.ColumnType{Type: &atlas.StringType{T: "varchar", Size: size}, Raw: "VARCHAR(" + strconv.Itoa(size) + ")", Null: null}}
}

// entity builds a table with an id primary key and the given columns.
func entity(name string, cols ...*atlas.Column) *atlas.Table {
	id := intCol(name+"_id", false)
	t := atlas.NewTable(name).AddColumns(id).AddColumns(cols...)
	t.SetPrimaryKey(atlas.NewPrimaryKey(id).SetName("pk_" + name))
	return t
}

func fk(symbol string, t *atlas.Table, col string, ref *atlas.Table, refCol string) *atlas.ForeignKey {
	c, _ := t.Column(col)
	rc, ok := ref.Column(refCol)
	if !ok {
		rc = intCol(refCol, false)
	}
	return &atlas.ForeignKey{Symbol: symbol, Table: t, Columns: []*atlas.Column{c}, RefTable: ref, RefColumns: []*atlas.Column{rc}}
}

func messages(errs []*ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func TestValidateTable(t *testing.T) {
	tests := []struct {
		name     string
		table    func() *atlas.Table
		errors   []string
		warnings []string
	}{
		{
			name:  "valid",
			table: func() *atlas.Table { return entity("invoice", strCol("number", 20, false)) },
		},
		{
			name: "no primary key",
			table: func() *atlas.Table {
				return atlas.NewTable("audit").AddColumns(intCol("event", false))
			},
			warnings: []string{"audit: table has no primary key"},
		},
		{
			name: "duplicate column",
			table: func() *atlas.Table {
				return entity("invoice", strCol("number", 20, false), strCol("number", 10, true))
			},
			errors: []string{"invoice.number: duplicate column name"},
		},
		{
			name: "column without type",
			table: func() *atlas.Table {
				return entity("invoice", &atlas.Column{Name: "number"})
			},
			errors: []string{"invoice.number: column has no type"},
		},
		{
			name: "long identifier",
			table: func() *atlas.Table {
				return entity("invoice", strCol(strings.Repeat("x", 64), 20, true))
			},
			errors: []string{"invoice." + strings.Repeat("x", 64) + `: column name "` + strings.Repeat("x", 64) + `" exceeds 63 characters`},
		},
		{
			name: "index on unknown column",
			table: func() *atlas.Table {
				t := entity("invoice")
				return t.AddIndexes(atlas.NewIndex("idx_invoice_1").AddColumns(intCol("domain_id", false)))
			},
			errors: []string{`invoice: index "idx_invoice_1" references non-existent column "domain_id"`},
		},
		{
			name: "duplicate index name",
			table: func() *atlas.Table {
				t := entity("invoice", intCol("domain_id", false))
				c, _ := t.Column("domain_id")
				return t.AddIndexes(atlas.NewIndex("pk_invoice").AddColumns(c))
			},
			errors: []string{"invoice: duplicate index name: pk_invoice"},
		},
		{
			name: "foreign key column count",
			table: func() *atlas.Table {
				t := entity("line_item", intCol("invoice_id", false))
				c, _ := t.Column("invoice_id")
				ref := entity("invoice")
				return t.AddForeignKeys(&atlas.ForeignKey{Symbol: "fk_line_item", Table: t, Columns: []*atlas.Column{c}, RefTable: ref})
			},
			errors: []string{`line_item: foreign key "fk_line_item" has 1 columns but references 0`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateTable(tt.table())
			assert.ElementsMatch(t, tt.errors, messages(res.Errors))
			assert.ElementsMatch(t, tt.warnings, messages(res.Warnings))
		})
	}
}

func TestValidateTableMaxIdentifierLength(t *testing.T) {
	res := ValidateTable(entity("invoice"), WithMaxIdentifierLength(8))
	require.True(t, res.HasErrors())
	assert.Equal(t, `invoice: column name "invoice_id" exceeds 8 characters`, res.Errors[0].Error())
}

func TestValidateTables(t *testing.T) {
	invoice := entity("invoice", intCol("customer_id", true), intCol("status", true))
	customer := entity("customer")
	invoice.AddForeignKeys(
		fk("fk_invoice_customer", invoice, "customer_id", customer, "customer_id"),
		fk("fk_code_invoice_status", invoice, "status", atlas.NewTable("code"), "code_id"),
	)

	t.Run("external table", func(t *testing.T) {
		res := ValidateTables([]*atlas.Table{invoice, customer}, WithExternalTables("code"))
		assert.False(t, res.HasErrors(), res.String())
		assert.Equal(t, "No issues found", res.String())
	})

	t.Run("missing table", func(t *testing.T) {
		res := ValidateTables([]*atlas.Table{invoice})
		assert.ElementsMatch(t, []string{
			`invoice: foreign key "fk_invoice_customer" references non-existent table "customer"`,
			`invoice: foreign key "fk_code_invoice_status" references non-existent table "code"`,
		}, messages(res.Errors))
	})

	t.Run("missing referenced column", func(t *testing.T) {
		other := entity("customer_v2")
		bad := entity("payment", intCol("customer_id", false))
		bad.AddForeignKeys(fk("fk_payment_customer", bad, "customer_id", other, "customer_id"))
		res := ValidateTables([]*atlas.Table{bad, other})
		assert.Equal(t, []string{`payment: foreign key "fk_payment_customer" references non-existent column customer_v2.customer_id`}, messages(res.Errors))
	})

	t.Run("duplicates", func(t *testing.T) {
		a := entity("a", intCol("b_id", true))
		b := entity("b", intCol("a_id", true))
		a.AddForeignKeys(fk("fk_ab", a, "b_id", b, "b_id"))
		b.AddForeignKeys(fk("fk_ab", b, "a_id", a, "a_id"))
		res := ValidateTables([]*atlas.Table{a, b, entity("a")})
		assert.Contains(t, messages(res.Errors), `b: constraint "fk_ab" is already defined on a`)
		assert.Contains(t, messages(res.Errors), "a: duplicate table name")
	})
}

func TestValidateDiff(t *testing.T) {
	current := []*atlas.Table{
		entity("invoice", strCol("number", 40, true), strCol("memo", 200, true)),
		entity("customer"),
	}

	t.Run("additive", func(t *testing.T) {
		desired := []*atlas.Table{
			entity("invoice", strCol("number", 40, true), strCol("memo", 200, true), intCol("customer_id", true)),
			entity("customer"),
			entity("payment"),
		}
		res := ValidateDiff(current, desired)
		assert.False(t, res.HasErrors())
		assert.False(t, res.HasWarnings())
	})

	t.Run("breaking", func(t *testing.T) {
		desired := []*atlas.Table{
			entity("invoice", strCol("number", 20, false)),
		}
		res := ValidateDiff(current, desired)
		assert.True(t, res.HasBreakingChanges())
		assert.ElementsMatch(t, []string{
			"customer: table will be dropped",
			"invoice.memo: column will be dropped",
			"invoice.number: column changing from NULL to NOT NULL may fail if column has NULL values",
		}, messages(res.Errors))
		assert.ElementsMatch(t, []string{
			"invoice.number: column type changing from VARCHAR(40) to VARCHAR(20)",
			"invoice.number: column size reducing from 40 to 20 may truncate data",
		}, messages(res.Warnings))
		assert.Contains(t, res.String(), "[BREAKING]")
	})

	t.Run("allowed", func(t *testing.T) {
		desired := []*atlas.Table{entity("invoice", strCol("number", 40, false))}
		res := ValidateDiff(current, desired, AllowDropTable(), AllowDropColumn(), AllowNullToNotNull())
		assert.False(t, res.HasErrors())
		assert.True(t, res.HasBreakingChanges())
		assert.Len(t, res.Warnings, 3)
	})

	t.Run("new not null column", func(t *testing.T) {
		desired := []*atlas.Table{
			entity("invoice", strCol("number", 40, true), strCol("memo", 200, true), intCol("version", false)),
			entity("customer"),
		}
		res := ValidateDiff(current, desired)
		assert.Equal(t, []string{"invoice.version: new NOT NULL column without default value may fail if table has data"}, messages(res.Warnings))
	})
}

package testutil

import (
	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
)

// AllTypesSchema covers one column of each commonly used type:
//
//	a int8   b int16   c int32    d int64     e float32
//	f float64 g string h boolean  i timestamp j date
func AllTypesSchema() ir.Schema {
	return ir.MustSchema(
		ir.Field{Name: "a", DType: ir.Int8},
		ir.Field{Name: "b", DType: ir.Int16},
		ir.Field{Name: "c", DType: ir.Int32},
		ir.Field{Name: "d", DType: ir.Int64},
		ir.Field{Name: "e", DType: ir.Float32},
		ir.Field{Name: "f", DType: ir.Float64},
		ir.Field{Name: "g", DType: ir.String},
		ir.Field{Name: "h", DType: ir.Boolean},
		ir.Field{Name: "i", DType: ir.Timestamp},
		ir.Field{Name: "j", DType: ir.Date},
	)
}

// AllTypes returns a fresh table named "alltypes" with AllTypesSchema.
func AllTypes() *expr.Table {
	t, err := expr.NewTable("alltypes", AllTypesSchema())
	if err != nil {
		panic(err)
	}
	return t
}

// IntTable returns a table with a single int64 column "x".
func IntTable(name string) *expr.Table {
	t, err := expr.NewTable(name, ir.MustSchema(ir.Field{Name: "x", DType: ir.Int64}))
	if err != nil {
		panic(err)
	}
	return t
}

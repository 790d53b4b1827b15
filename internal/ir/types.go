package ir

import (
	"fmt"
	"strings"
)

// DataType is the element type of an expression.
type DataType uint8

const (
	Null DataType = iota
	Boolean
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	String
	Date
	Timestamp
	Binary
)

var dataTypeNames = [...]string{
	Null:      "null",
	Boolean:   "boolean",
	Int8:      "int8",
	Int16:     "int16",
	Int32:     "int32",
	Int64:     "int64",
	Float32:   "float32",
	Float64:   "float64",
	String:    "string",
	Date:      "date",
	Timestamp: "timestamp",
	Binary:    "binary",
}

// dataTypeAliases maps accepted spellings (including the SQL-ish names used
// by backend catalogs) to their canonical DataType.
var dataTypeAliases = map[string]DataType{
	"int":      Int64,
	"integer":  Int64,
	"bigint":   Int64,
	"smallint": Int16,
	"tinyint":  Int8,
	"bool":     Boolean,
	"double":   Float64,
	"float":    Float64,
	"real":     Float32,
	"varchar":  String,
	"text":     String,
	"bytes":    Binary,
	"datetime": Timestamp,
}

func (d DataType) String() string {
	if int(d) < len(dataTypeNames) {
		return dataTypeNames[d]
	}
	return fmt.Sprintf("datatype(%d)", uint8(d))
}

// ParseDataType converts a type name to a DataType. Matching is
// case-insensitive and accepts common SQL aliases ("bigint", "text", ...).
func ParseDataType(name string) (DataType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range dataTypeNames {
		if s == n {
			return DataType(i), nil
		}
	}
	if d, ok := dataTypeAliases[n]; ok {
		return d, nil
	}
	return Null, fmt.Errorf("unknown data type %q", name)
}

// IsInteger reports whether d is a signed integer type.
func (d DataType) IsInteger() bool {
	return d >= Int8 && d <= Int64
}

// IsFloating reports whether d is a floating point type.
func (d DataType) IsFloating() bool {
	return d == Float32 || d == Float64
}

// IsNumeric reports whether d is an integer or floating point type.
func (d DataType) IsNumeric() bool {
	return d.IsInteger() || d.IsFloating()
}

func (d DataType) IsBoolean() bool  { return d == Boolean }
func (d DataType) IsString() bool   { return d == String }
func (d DataType) IsTemporal() bool { return d == Date || d == Timestamp }

// Shape distinguishes single values from per-row values.
type Shape uint8

const (
	// Scalar is a single value (a literal or the result of a reduction).
	Scalar Shape = iota
	// Column is one value per row of a table.
	Column
)

func (s Shape) String() string {
	if s == Column {
		return "column"
	}
	return "scalar"
}

// ParseShape converts "scalar" or "column" to a Shape.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "scalar":
		return Scalar, nil
	case "column":
		return Column, nil
	default:
		return Scalar, fmt.Errorf("unknown shape %q: must be scalar or column", name)
	}
}

// ValueType is the full type of an expression: element type and shape.
type ValueType struct {
	DType DataType
	Shape Shape
}

// ScalarOf returns the scalar ValueType for d.
func ScalarOf(d DataType) ValueType { return ValueType{DType: d, Shape: Scalar} }

// ColumnOf returns the column ValueType for d.
func ColumnOf(d DataType) ValueType { return ValueType{DType: d, Shape: Column} }

func (t ValueType) IsColumn() bool { return t.Shape == Column }
func (t ValueType) IsScalar() bool { return t.Shape == Scalar }

// String renders the type as "<dtype> <shape>", e.g. "int64 column".
func (t ValueType) String() string {
	return t.DType.String() + " " + t.Shape.String()
}

// Field is a named, typed column of a table schema.
type Field struct {
	Name  string   `json:"name" yaml:"name"`
	DType DataType `json:"type" yaml:"type"`
}

// Schema is an ordered list of fields with unique names.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a Schema, rejecting empty and duplicate field names.
func NewSchema(fields ...Field) (Schema, error) {
	s := Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return Schema{}, fmt.Errorf("schema field %d has empty name", len(s.fields))
		}
		if _, dup := s.index[f.Name]; dup {
			return Schema{}, fmt.Errorf("duplicate schema field %q", f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is NewSchema that panics on error. Intended for fixtures.
func MustSchema(fields ...Field) Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the fields in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of fields.
func (s Schema) Len() int { return len(s.fields) }

// Lookup returns the field with the given name.
func (s Schema) Lookup(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Position returns the ordinal of the named field, or -1.
func (s Schema) Position(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

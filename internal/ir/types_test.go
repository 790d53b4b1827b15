package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	tests := []struct {
		input    string
		expected DataType
	}{
		{"int64", Int64},
		{" INT8 ", Int8},
		{"bigint", Int64},
		{"smallint", Int16},
		{"text", String},
		{"bool", Boolean},
		{"double", Float64},
		{"date", Date},
		{"datetime", Timestamp},
		{"bytes", Binary},
		{"null", Null},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDataType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseDataType("decimal")
	assert.Error(t, err)
}

func TestDataTypeStringRoundTrip(t *testing.T) {
	for d := Null; d <= Binary; d++ {
		got, err := ParseDataType(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	assert.Equal(t, "datatype(200)", DataType(200).String())
}

func TestDataTypeFamilies(t *testing.T) {
	for _, d := range []DataType{Int8, Int16, Int32, Int64} {
		assert.True(t, d.IsInteger(), d.String())
		assert.True(t, d.IsNumeric(), d.String())
		assert.False(t, d.IsFloating(), d.String())
	}
	assert.True(t, Float32.IsFloating())
	assert.True(t, Float64.IsNumeric())
	assert.False(t, Boolean.IsInteger())
	assert.False(t, String.IsNumeric())
	assert.True(t, Date.IsTemporal())
	assert.True(t, Timestamp.IsTemporal())
	assert.True(t, Boolean.IsBoolean())
	assert.True(t, String.IsString())
}

func TestParseShape(t *testing.T) {
	s, err := ParseShape("Column")
	require.NoError(t, err)
	assert.Equal(t, Column, s)

	s, err = ParseShape("scalar")
	require.NoError(t, err)
	assert.Equal(t, Scalar, s)

	_, err = ParseShape("table")
	assert.Error(t, err)
}

func TestValueTypeString(t *testing.T) {
	assert.Equal(t, "int64 column", ColumnOf(Int64).String())
	assert.Equal(t, "boolean scalar", ScalarOf(Boolean).String())
	assert.True(t, ColumnOf(String).IsColumn())
	assert.True(t, ScalarOf(String).IsScalar())
}

func TestNewSchema(t *testing.T) {
	s, err := NewSchema(Field{Name: "x", DType: Int64}, Field{Name: "g", DType: String})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.Position("g"))
	assert.Equal(t, -1, s.Position("missing"))

	f, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, Int64, f.DType)

	fields := s.Fields()
	fields[0].Name = "changed"
	assert.Equal(t, "x", s.Fields()[0].Name, "Fields returns a copy")
}

func TestNewSchemaRejectsBadFields(t *testing.T) {
	_, err := NewSchema(Field{Name: "x"}, Field{Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	_, err = NewSchema(Field{Name: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")

	assert.Panics(t, func() { MustSchema(Field{Name: ""}) })
}

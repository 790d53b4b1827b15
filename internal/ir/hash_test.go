package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterminism(t *testing.T) {
	v := IRObject{"kind": IRString("BitwiseAnd"), "args": IRArray{IRString("x")}}

	first, err := Fingerprint(DomainExpression, v)
	require.NoError(t, err)
	second, err := Fingerprint(DomainExpression, IRObject{"args": IRArray{IRString("x")}, "kind": IRString("BitwiseAnd")})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "SHA-256 hex is 64 characters")
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a, err := Fingerprint(DomainExpression, IRObject{"kind": IRString("BitwiseAnd")})
	require.NoError(t, err)
	b, err := Fingerprint(DomainExpression, IRObject{"kind": IRString("BitwiseOr")})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{"kind":"Sum"}`)
	assert.NotEqual(t, hashWithDomain(DomainExpression, data), hashWithDomain("other/v1", data))
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	// "ab" + 0x00 + "c" must differ from "a" + 0x00 + "bc"
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestFingerprintRejectsNull(t *testing.T) {
	_, err := Fingerprint(DomainExpression, IRObject{"value": IRNull{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fingerprint")
}

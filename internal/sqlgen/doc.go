// Package sqlgen translates expression graphs into SQL fragments.
//
// ARCHITECTURE:
//
//	[Builder] --Register(kind, dialect, rule)--> Build() --> [*Registry] (immutable)
//	[*Registry] --NewTranslator(dialect)--> [*Translator] (one compilation pass)
//	Translator.Translate(e) --> rule lookup by (e.Op().Kind(), dialect) --> rule(t, e)
//
// Rules translate their children by calling back into the Translator, so
// nested expressions compile through the same table. A missing
// (kind, dialect) entry fails the whole compilation with
// *UnsupportedOperationError; no partial SQL is ever returned.
//
// Registries are never mutated after Build. Extend copies the table into a
// new Builder, so extensions cannot affect compilations already in flight
// on the original registry.
//
// DIALECTS:
//
//	postgres  "quoted" identifiers, $n placeholders, FILTER clause
//	duckdb    "quoted" identifiers, ? placeholders, FILTER clause
//	sqlite    "quoted" identifiers, ? placeholders, FILTER clause (3.30+)
//	mapd      bare identifiers, ? placeholders, no FILTER clause (CASE rewrite)
package sqlgen

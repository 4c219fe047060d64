// Package schema defines the declarative form model: groups of fields with
// validation rules, visibility rules and UI hints, loaded from JSON or
// YAML documents. The definition is the authoritative description of a
// form; everything downstream (validation schemas, edit sessions, value
// conversion) derives from it and is rebuilt when it changes.
//
// A field's validation may arrive in two encodings, the ordered rule array
// or the older single object. The Validation sum type hides that split:
// consumers only ever see the normalized ordered list.
package schema

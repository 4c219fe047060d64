// Package rules implements the rule-based field validator at the bottom of
// the dynamic form engine. A field's validation is an ordered list of Rule
// values; evaluation walks the list and stops at the first failure, so the
// list order decides which message a user sees. The older single-object
// encoding (Legacy) normalizes into the same ordered list before any rule
// runs, keeping one evaluation path.
//
// Evaluators are pure with two deliberate exceptions: date and age rules
// read an injectable clock, and custom rules dispatch to predicates the
// host registers by name. Nothing here mutates the value maps it receives.
package rules

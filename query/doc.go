// Package query implements chainable, lazily evaluated scopes over an
// immutable dataset.
//
// An Engine wraps one dataset snapshot. Engine.Scope returns the base scope;
// chaining methods (Where, WhereNot, Order, OrderBy, Limit, Offset, Named)
// return new scopes and never modify the receiver. Terminal methods evaluate
// the pipeline
//
//	filter -> order -> offset -> limit -> projection / aggregation
//
// Filtering intersects the dataset's posting lists; ordering is a stable sort,
// so ties keep load order. Filtered and ordered positions are cached per
// engine, keyed by the scope's predicates and sort keys.
//
// Find and FindByID use the primary-key index and ignore limit and offset, but
// a record excluded by the scope's predicates is not found. Aggregates work on
// the filtered result before limit and offset.
//
// Finders derives find_by_<field>[_and_<field>...][!] operations from the
// declared fields.
package query

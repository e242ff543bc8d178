// Package dataset holds the immutable record set of one logical table.
//
// A Dataset is built once from loader output and never mutated afterwards. It
// keeps records in load order, a primary-key index for point lookups, the
// declared attribute names, and Roaring Bitmap posting lists that let
// equality predicates be evaluated with set operations instead of a scan.
//
// Replacing a dataset (for example after the source file changed) means
// building a new one and swapping a pointer; see frozen.Table.
package dataset

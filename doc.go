// Package frozen provides chainable, lazily evaluated queries over small
// read-only record sets loaded from JSON or YAML files.
//
// A table is loaded once, indexed by primary key and kept in memory. Queries
// are built from immutable scopes; nothing runs until a terminal operation
// (All, First, Find, Pluck, Count, Sum, ...) is called.
//
// # Quick Start
//
//	ctx := context.Background()
//	countries, _ := frozen.OpenFile(ctx, "data/countries.yml")
//
//	france, _ := countries.Where(query.Criteria{"name": "France"}).First()
//	austria, _ := countries.WhereNot(query.Criteria{"name": "France"}).Find(3)
//	names, _ := countries.Order("name").Pluck("name")
//	avg, _ := countries.Scope().Average("density")
//
// # Scopes
//
// Every refinement returns a new scope and leaves the receiver untouched, so
// scopes can be stored and shared between goroutines:
//
//	nato := countries.Where(query.Criteria{"nato": true})
//	byDensity := nato.Order("density desc")
//	top, _ := byDensity.Limit(2).All()
//
// Criteria values that are slices (or built with query.In) match any of the
// listed values. Missing attributes compare as null.
//
// # Finders
//
// Dynamic finders are resolved against the declared fields:
//
//	f := countries.Finders()
//	f.Supports("find_by_name_and_nato")            // true
//	r, _ := f.Call("find_by_name!", "Canada")      // ErrRecordNotFound if absent
//
// # Reloading
//
// A table keeps its current snapshot behind an atomic pointer. Reload reads
// the source again and swaps the snapshot when the checksum changed; Watch
// does so periodically. Scopes created before a reload keep using the old
// snapshot.
//
//	go countries.Watch(ctx, 30*time.Second)
//
// Catalogs open several tables in parallel from any loader.Source, including
// S3, MinIO and DynamoDB.
package frozen

// Package settings implements the typed persistent settings store.
//
// A [Store] pairs an immutable [Schema] of default values with a storage
// [Engine]. Keys are "/"-delimited paths such as "main/confirm_exit".
//
// # Typed reads
//
// [Store.Value] resolves the key in the schema; the default supplies both the
// fallback value and the target type. A raw persisted value whose Go type
// already matches the default is returned unchanged, anything else is
// coerced:
//
//   - bool: the textual form compared case-insensitively against "true"
//   - int, float: strconv parse of the textual form
//   - string: the textual form
//
// [Store.Hinted] reads keys that are not part of the schema. It returns
// (nil, false) when nothing is persisted and fails with [AmbiguousKeyError]
// when the key is in fact known to the schema.
//
// # String lists
//
// Lists use the scoped array layout
//
//	recent/size = 2
//	recent/1/entry = "/a"
//	recent/2/entry = "/b"
//
// [Store.PrependStringList] builds a most-recently-used list on top of it: the
// new value moves to the front, duplicates are dropped and the list is
// truncated to the length stored under a second key.
package settings

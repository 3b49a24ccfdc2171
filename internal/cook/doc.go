// Package cook provides the read-only view of an asset's cooked output.
//
// A cook result is the ordered tree the procedural engine produces for one
// asset evaluation: objects, their geos, and the parts inside each geo, plus
// object-level instancers, materials (addressed by a small integer id) and
// the flat parameter list.
//
// The sync engine consumes a cook result only through the Accessor
// interface. Result is the YAML-backed implementation used by the CLI,
// scenarios and tests.
//
// Key constraints:
//   - Object identity is positional (index into the object array), never persistent
//   - Material id -1 is the "no material" sentinel
//   - A part may carry several payload kinds at once (see Part.Payloads)
//   - All queries are pull-based and reflect the most recent cook
package cook

// Package core is the grid-mapping engine.
//
// A caller supplies a grid of strings and a set of mappings, each a
// rectangular region of cells tagged with a semantic role (time, location,
// indicator name, indicator value, source, unit or a named custom
// dimension). From those declarations the engine rebuilds one flat fact
// record per value cell, carrying the value of every other dimension.
//
// # Model
//
//   - [Region]: a bounding box plus the cells selected inside it. Selections
//     may be sparse; only the box drives resolution.
//   - [Mapping]: a region with a [Role]. Build one with [BindRegion] and
//     [NewMapping].
//   - [MappingSet]: holds at most one mapping per role, except indicator
//     values which may repeat.
//   - [Tuple]: one output record.
//
// # Pipeline
//
//  1. [Validate] reports every problem with the mapping set at once.
//  2. [Generate] walks the selected value cells in order and, for every other
//     mapping, asks [Resolve] for the applicable dimension value.
//  3. [Preview] and [GroupByIndicator] shape the output for review and
//     hand-off.
//
// [Resolve] is an ordered table of rules ([ResolveRules]); the first rule
// whose predicate holds wins. Resolution never fails: cells outside the grid
// resolve to the empty string.
//
// # Error Handling
//
// Generation without an indicator-value mapping fails with
// [ErrMissingValueMapping]. Validation problems are values, not errors.
// Technical errors are mapped to user-facing messages with codes using
// [MapError]:
//
//   - MAP001-MAP005: mapping declarations
//   - GRID001-GRID005: input grids
//   - TPL001-TPL004: saved templates
//   - REQ001: malformed API requests
//   - SYS001-SYS003, DB004, RATE001: capacity and infrastructure
//
// # Service
//
// [Service] bounds concurrent engine runs with a [Limiter] and persists
// mapping templates through [TemplateStore] when PostgreSQL is configured.
package core

// Package model provides the in-memory structure of a word-processing document
// used by the formatting checker.
//
// A [Document] owns an ordered list of [Section] values. Each section carries
// page geometry (margins, page size) and the [Paragraph] values laid out on it;
// each paragraph owns its [Run] values. Formatting may be stated directly on a
// paragraph or run, or inherited through styles:
//
//	run direct props
//	  -> run character style chain
//	  -> paragraph style chain
//	  -> document defaults
//
// Styles live in a flat [StyleTable]. Every style refers to its parent by index,
// so the inheritance chain is walked once when the table is built, cycles and
// dangling parents are reported as an [IntegrityError], and the flattened
// properties of each style are cached for constant-time lookup.
//
// # Nullable properties
//
// [ParagraphProps] and [RunProps] use pointer fields. A nil field means
// "not stated here, inherit". Resolution helpers ([Document.EffectiveRun],
// [Document.EffectiveParagraph]) return props in which a field is still nil
// only when no level of the chain states it.
//
// # Units
//
// Lengths are kept in twentieths of a point ([Length]) and font sizes in
// half-points ([HalfPoints]), the units used by the package format itself.
// Conversion helpers return points and centimeters.
//
// # Element references
//
// [ElementRef] names a section, paragraph or run and defines the document order
// used to sort annotations, independent of the order in which checks ran.
package model

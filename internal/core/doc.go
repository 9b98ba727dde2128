// Package core provides the roster side of credential generation.
//
// This package contains all domain logic that turns a roster file into an
// ordered, validated list of members. It is independent of any drawing
// surface and can be used by the renderer, the CLI, or tests without
// modification.
//
// # Pipeline
//
// A roster passes through four stages:
//
//  1. A [RowReader] turns a CSV or XLSX file into [Row] values. Rows are
//     header-less; column names come from configuration.
//  2. [Normalize] applies a [ColumnMap] of per-field extractors to every row,
//     dropping leading banner rows, rows that fail extraction, and rows with an
//     empty name. Order is preserved.
//  3. [Classify] derives [Flags] for each member from the organization's
//     course lists.
//  4. The [Loader] filters out members with missing information or an
//     unregistered course, and records every drop on the [Roster].
//
// # Identifiers
//
// A [Codec] derives the printable masked id and a short checksum for a
// member. The checksum is an Adler-32 tamper hint for people reading a
// printed tag. It is not a security control.
//
//	codec := core.NewCodec(cfg.Roster)
//	codec.MaskedID(m)  // "ACM007-NE"
//	codec.Checksum(m)  // "9f4a0b21"
//	codec.Payload(m)   // checksum, masked id, name, organization joined for the QR code
//
// # Error Handling
//
// Row-level problems never abort a roster: a [RowError] or an [Exclusion]
// is recorded and the row is skipped. File-level problems are returned as
// wrapped errors. [MapError] turns any of them into a coded [UserMessage]
// for the run summary.
package core

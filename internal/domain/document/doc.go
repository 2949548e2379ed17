// Package document contains the document bounded context: turning a raw
// quotation, invoice or receipt request into an immutable Document with
// exact totals and a type-prefixed document number.
//
// Nothing in this package performs I/O except through the injected
// SequenceSource used for numbering.
package document

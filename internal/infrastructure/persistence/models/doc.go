// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: shared id and timestamp columns
// - document.go: documents and document_items
// - sequence.go: document_sequences, the per type number counters
package models

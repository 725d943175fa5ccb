// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: id and audit columns, inserts without a domain id are refused
// - order.go: orders table, unique on order_number
// - import_history.go: one row per import attempt, error details kept as JSON text
package models

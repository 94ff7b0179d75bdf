// Package types defines the collaborator interfaces consumed by the
// denormalization engine, the relation and table descriptors used to declare
// them, and the standard errors shared by the engine and its backends.
//
// The engine itself lives in pkg/denorm; backends such as the SQLite store in
// internal/sqlite implement Metadata, Associations, Lifecycle and Writer.
package types

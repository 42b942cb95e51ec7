package config

// Specification of requested CSS output style.
// ENUM(nested, expanded, compact, compressed)
type OutputStyle int

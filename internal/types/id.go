// README: Common identifier type used across modules.
package types

// ID is an opaque entity identifier (32-char hex from the generator).
type ID string

package types

// JSONMap stores loosely structured JSON payloads (e.g. the raw payment
// metadata attached to a confirmed order).
type JSONMap map[string]any

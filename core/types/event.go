package types

// Event represents a typed event emitted during ledger state transitions. The
// attribute set and ordering contract is owned by the emitting module; external
// indexers consume events verbatim.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

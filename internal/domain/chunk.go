package domain

// ResultChunk is the unit streamed back to the caller: one fragment of
// generated text, or the terminal human-readable failure message.
// Concatenating the QueryResult of every non-error chunk in order
// reconstructs the full answer.
type ResultChunk struct {
	QueryResult string `json:"queryResult"`
}

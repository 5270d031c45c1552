package port

// Tokenizer splits identifiers and query strings into search tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

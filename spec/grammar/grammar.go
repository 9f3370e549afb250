package grammar

// Request is the body a client posts to the calculate endpoint.
//
// NonTerminals and Terminals are the declared symbols. Productions is a text in which every line
// holds a rule such as `E -> E + T | T`. When Start is empty, the first declared non-terminal is
// the start symbol.
type Request struct {
	NonTerminals []string `json:"nonTerminals"`
	Terminals    []string `json:"terminals"`
	Productions  string   `json:"productions"`
	Start        string   `json:"start,omitempty"`
	Report       bool     `json:"report,omitempty"`
}

// Result maps each non-terminal to the members of its FIRST and FOLLOW sets.
type Result struct {
	First  map[string][]string `json:"first"`
	Follow map[string][]string `json:"follow"`
	Report *Report             `json:"report,omitempty"`
}

const (
	ErrorKindInvalidGrammar       = "invalid_grammar"
	ErrorKindAmbiguousStartSymbol = "ambiguous_start_symbol"
	ErrorKindBadRequest           = "bad_request"
	ErrorKindUnavailable          = "unavailable"
	ErrorKindInternal             = "internal"
)

type ErrorResponse struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Errors  []*ErrorDetail `json:"errors,omitempty"`
}

type ErrorDetail struct {
	Row     int    `json:"row,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

/*
Package server implements msgpack IPC for the braille typing engine.

The server reads msgpack maps from stdin and writes one msgpack map per
request to stdout. Logs go to stderr so they never mix with responses.

# IPC

Every request carries an id and a type. The type picks the handler and the
rest of the fields depend on it. When the server starts it sends a single
status map so the client knows it is ready:

	{"status": "ready"}

A chord is sent as pressed keys or as dot numbers, and the session types the
resolved letter:

	{"id": "c1", "type": "chord", "k": ["a", "s", "k"]}
	{"id": "c2", "type": "chord", "d": [1, 5]}

The response carries the letter, the ranked candidates, the composed text
and the suggestions for the current word:

	{"id": "c2", "char": "e", "accepted": true, "text": "he", "suggestions": ["help", "held", "hello"], ...}

A word can also be looked up on its own:

	{"id": "s1", "type": "suggest", "w": "helo"}
	{"id": "s1", "s": [{"w": "help", "d": 1, "r": 1}, {"w": "hello", "d": 1, "r": 2}], "c": 2, "t": 38}

where t is the lookup time in microseconds.

# Message Types

  - chord: type one cell into the session
  - suggest: rank words for a single word
  - resolve: rank letters for a pattern such as "1,2,4"
  - decode: decode a raw stream of dot digits such as "125 15 123"
  - dict: info, switch or upload dictionaries
  - text: type, space, backspace, apply or clear on the session text

Failed requests get an ErrorResponse with the request id, a message and a
code. A stream that can no longer be decoded ends the loop.
*/
package server

import "github.com/bastiangx/brailleserve/pkg/dictionary"

// Request types.
const (
	TypeChord   = "chord"
	TypeSuggest = "suggest"
	TypeResolve = "resolve"
	TypeDecode  = "decode"
	TypeDict    = "dict"
	TypeText    = "text"
)

// Envelope is the part every request shares.
type Envelope struct {
	ID   string `msgpack:"id"`
	Type string `msgpack:"type"`
}

// ChordRequest types one cell given as keys or dots. Keys win when both
// are set.
type ChordRequest struct {
	ID   string   `msgpack:"id"`
	Type string   `msgpack:"type"`
	Keys []string `msgpack:"k,omitempty"`
	Dots []int    `msgpack:"d,omitempty"`
}

// Candidate is a ranked letter.
type Candidate struct {
	Char     string `msgpack:"ch"`
	Pattern  string `msgpack:"p"`
	Distance int    `msgpack:"d"`
}

// ChordResponse reports the typed letter and the session state after it.
type ChordResponse struct {
	ID          string      `msgpack:"id"`
	Pattern     string      `msgpack:"p"`
	Char        string      `msgpack:"char"`
	Accepted    bool        `msgpack:"accepted"`
	Exact       bool        `msgpack:"exact"`
	Candidates  []Candidate `msgpack:"candidates"`
	Text        string      `msgpack:"text"`
	Suggestions []string    `msgpack:"suggestions"`
}

// SuggestRequest asks for suggestions for one word.
type SuggestRequest struct {
	ID    string `msgpack:"id"`
	Type  string `msgpack:"type"`
	Word  string `msgpack:"w"`
	Limit int    `msgpack:"l,omitempty"`
}

// Suggestion is a ranked word.
type Suggestion struct {
	Word     string `msgpack:"w"`
	Distance int    `msgpack:"d"`
	Rank     uint16 `msgpack:"r"`
}

// SuggestResponse lists suggestions with the lookup time in microseconds.
type SuggestResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// ResolveRequest ranks letters for a pattern string.
type ResolveRequest struct {
	ID      string `msgpack:"id"`
	Type    string `msgpack:"type"`
	Pattern string `msgpack:"p"`
}

// ResolveResponse is the ranking for one cell.
type ResolveResponse struct {
	ID         string      `msgpack:"id"`
	Pattern    string      `msgpack:"p"`
	Cell       string      `msgpack:"cell"`
	Exact      bool        `msgpack:"exact"`
	Candidates []Candidate `msgpack:"candidates"`
}

// DecodeRequest decodes a raw dot stream.
type DecodeRequest struct {
	ID     string `msgpack:"id"`
	Type   string `msgpack:"type"`
	Stream string `msgpack:"s"`
}

// DecodedCell is one segment of a decoded stream.
type DecodedCell struct {
	Pattern  string `msgpack:"p"`
	Char     string `msgpack:"ch"`
	Accepted bool   `msgpack:"accepted"`
}

// DecodeResponse is the decoded text, its cells and word suggestions for it.
type DecodeResponse struct {
	ID          string        `msgpack:"id"`
	Text        string        `msgpack:"text"`
	BestGuess   string        `msgpack:"best_guess"`
	Cells       []DecodedCell `msgpack:"cells"`
	Rejected    int           `msgpack:"rejected"`
	Suggestions []string      `msgpack:"suggestions"`
}

// Dictionary actions.
const (
	DictInfo   = "info"
	DictSwitch = "switch"
	DictUpload = "upload"
)

// DictionaryRequest manages the active dictionary.
type DictionaryRequest struct {
	ID     string   `msgpack:"id"`
	Type   string   `msgpack:"type"`
	Action string   `msgpack:"action"`
	Kind   string   `msgpack:"kind,omitempty"`  // for "switch"
	Name   string   `msgpack:"name,omitempty"`  // for "upload"
	Words  []string `msgpack:"words,omitempty"` // for "upload"
}

// DictionaryResponse reports the registry after the action.
type DictionaryResponse struct {
	ID     string          `msgpack:"id"`
	Status string          `msgpack:"status"`
	Error  string          `msgpack:"error,omitempty"`
	Info   dictionary.Info `msgpack:"info"`
}

// Text actions.
const (
	TextType      = "type"
	TextSpace     = "space"
	TextBackspace = "backspace"
	TextApply     = "apply"
	TextClear     = "clear"
)

// TextRequest edits the session text.
type TextRequest struct {
	ID     string `msgpack:"id"`
	Type   string `msgpack:"type"`
	Action string `msgpack:"action"`
	Value  string `msgpack:"v,omitempty"`
}

// TextResponse is the session text and suggestions after an edit.
type TextResponse struct {
	ID          string   `msgpack:"id"`
	Text        string   `msgpack:"text"`
	Suggestions []string `msgpack:"suggestions"`
}

// StatusResponse is sent once when the server is ready.
type StatusResponse struct {
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

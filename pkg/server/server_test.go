package server

import (
	"bytes"
	"testing"

	"github.com/bastiangx/brailleserve/pkg/braille"
	"github.com/bastiangx/brailleserve/pkg/dictionary"
	"github.com/bastiangx/brailleserve/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// roundTrip feeds requests to a fresh server and returns a decoder over its
// output, positioned after the ready message.
func roundTrip(t *testing.T, words []string, requests ...any) *msgpack.Decoder {
	t.Helper()
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range requests {
		require.NoError(t, enc.Encode(r))
	}

	reg := dictionary.NewRegistry(words, dictionary.DefaultOptions())
	session := engine.New(braille.DefaultTable(), braille.DefaultKeyMap(), reg, engine.DefaultOptions())

	var out bytes.Buffer
	srv := NewServerWithIO(session, &in, &out, Options{MaxWordLen: 10})
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	return dec
}

func TestChordRequests(t *testing.T) {
	dec := roundTrip(t, []string{"hello", "help", "held"},
		ChordRequest{ID: "1", Type: TypeChord, Keys: []string{"a", "s", "k"}},
		ChordRequest{ID: "2", Type: TypeChord, Dots: []int{5, 1}},
		ChordRequest{ID: "3", Type: TypeChord, Dots: []int{6}},
	)

	var r ChordResponse
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "1", r.ID)
	assert.Equal(t, "h", r.Char)
	assert.Equal(t, "1,2,5", r.Pattern)
	assert.True(t, r.Exact)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "he", r.Text)
	assert.Equal(t, []string{"help", "held", "hello"}, r.Suggestions)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "3", r.ID)
	assert.False(t, r.Exact)
	assert.True(t, r.Accepted)
	assert.Equal(t, "hea", r.Text)
	require.Len(t, r.Candidates, 3)
	assert.Equal(t, Candidate{Char: "a", Pattern: "1", Distance: 1}, r.Candidates[0])
}

func TestSuggestRequests(t *testing.T) {
	dec := roundTrip(t, []string{"hello", "help", "held"},
		SuggestRequest{ID: "s1", Type: TypeSuggest, Word: "helo"},
		SuggestRequest{ID: "s2", Type: TypeSuggest, Word: "hel", Limit: 1},
		SuggestRequest{ID: "s3", Type: TypeSuggest, Word: "abcdefghijk"},
		SuggestRequest{ID: "s4", Type: TypeSuggest, Word: ""},
	)

	var r SuggestResponse
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "s1", r.ID)
	require.Equal(t, 3, r.Count)
	assert.Equal(t, Suggestion{Word: "held", Distance: 1, Rank: 1}, r.Suggestions[0])
	assert.Equal(t, uint16(3), r.Suggestions[2].Rank)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, []Suggestion{{Word: "help", Distance: 0, Rank: 1}}, r.Suggestions)

	var e ErrorResponse
	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, "s3", e.ID)
	assert.Equal(t, 400, e.Code)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "s4", r.ID)
	assert.Zero(t, r.Count)
}

func TestResolveAndDecodeRequests(t *testing.T) {
	dec := roundTrip(t, []string{"hello"},
		ResolveRequest{ID: "r1", Type: TypeResolve, Pattern: "124"},
		ResolveRequest{ID: "r2", Type: TypeResolve, Pattern: "19"},
		DecodeRequest{ID: "d1", Type: TypeDecode, Stream: "125 15 123 123"},
	)

	var r ResolveResponse
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "1,2,4", r.Pattern)
	assert.Equal(t, "⠋", r.Cell)
	require.Len(t, r.Candidates, 1)
	assert.Equal(t, "f", r.Candidates[0].Char)

	var e ErrorResponse
	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, "r2", e.ID)

	var d DecodeResponse
	require.NoError(t, dec.Decode(&d))
	assert.Equal(t, "hell", d.Text)
	assert.Equal(t, "hell", d.BestGuess)
	assert.Len(t, d.Cells, 4)
	assert.Equal(t, []string{"hello"}, d.Suggestions)
}

func TestDictionaryRequests(t *testing.T) {
	dec := roundTrip(t, []string{"cat", "car"},
		DictionaryRequest{ID: "1", Type: TypeDict, Action: DictInfo},
		DictionaryRequest{ID: "2", Type: TypeDict, Action: DictSwitch, Kind: "custom"},
		DictionaryRequest{ID: "3", Type: TypeDict, Action: DictUpload, Name: "pets", Words: []string{"Canary"}},
		SuggestRequest{ID: "4", Type: TypeSuggest, Word: "ca"},
		DictionaryRequest{ID: "5", Type: TypeDict, Action: DictSwitch, Kind: "default"},
		SuggestRequest{ID: "6", Type: TypeSuggest, Word: "ca"},
		DictionaryRequest{ID: "7", Type: TypeDict, Action: "shrink"},
	)

	var r DictionaryResponse
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "ok", r.Status)
	assert.Equal(t, dictionary.KindDefault, r.Info.Active)
	assert.Equal(t, 2, r.Info.Words)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "error", r.Status)
	assert.NotEmpty(t, r.Error)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "ok", r.Status)
	assert.Equal(t, dictionary.KindCustom, r.Info.Active)
	assert.Equal(t, "pets", r.Info.Name)

	var s SuggestResponse
	require.NoError(t, dec.Decode(&s))
	require.Equal(t, 1, s.Count)
	assert.Equal(t, "canary", s.Suggestions[0].Word)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, dictionary.KindDefault, r.Info.Active)

	require.NoError(t, dec.Decode(&s))
	assert.Equal(t, 2, s.Count)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "error", r.Status)
}

func TestTextRequests(t *testing.T) {
	dec := roundTrip(t, []string{"dog", "door"},
		TextRequest{ID: "1", Type: TypeText, Action: TextType, Value: "the Do"},
		TextRequest{ID: "2", Type: TypeText, Action: TextApply, Value: "dog"},
		TextRequest{ID: "3", Type: TypeText, Action: TextBackspace},
		TextRequest{ID: "4", Type: TypeText, Action: TextSpace},
		TextRequest{ID: "5", Type: TypeText, Action: TextClear},
		TextRequest{ID: "6", Type: TypeText, Action: "shout"},
	)

	var r TextResponse
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "the Do", r.Text)
	assert.Equal(t, []string{"dog", "door"}, r.Suggestions)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "the Dog ", r.Text)
	assert.Empty(t, r.Suggestions)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "the Dog", r.Text)
	assert.Equal(t, []string{"dog"}, r.Suggestions)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "the Dog ", r.Text)

	require.NoError(t, dec.Decode(&r))
	assert.Empty(t, r.Text)

	var e ErrorResponse
	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, "6", e.ID)
}

func TestUnknownAndMalformedRequests(t *testing.T) {
	dec := roundTrip(t, nil,
		map[string]any{"id": "x", "type": "dance"},
		map[string]any{"id": "y", "type": TypeChord, "d": "not a list"},
		"just a string",
	)

	var e ErrorResponse
	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, "x", e.ID)
	assert.Equal(t, 400, e.Code)

	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, "y", e.ID)

	require.NoError(t, dec.Decode(&e))
	assert.Empty(t, e.ID)
}

func TestChordAfterDictionaryChange(t *testing.T) {
	dec := roundTrip(t, []string{"cat", "car"},
		TextRequest{ID: "1", Type: TypeText, Action: TextType, Value: "ca"},
		DictionaryRequest{ID: "2", Type: TypeDict, Action: DictUpload, Name: "pets", Words: []string{"dog", "canary"}},
		ChordRequest{ID: "3", Type: TypeChord},
		DictionaryRequest{ID: "4", Type: TypeDict, Action: DictSwitch, Kind: "default"},
		ChordRequest{ID: "5", Type: TypeChord},
	)

	var text TextResponse
	require.NoError(t, dec.Decode(&text))
	assert.Equal(t, []string{"cat", "car"}, text.Suggestions)

	var d DictionaryResponse
	require.NoError(t, dec.Decode(&d))
	require.Equal(t, "ok", d.Status)

	var r ChordResponse
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "3", r.ID)
	assert.Equal(t, "ca", r.Text)
	assert.Equal(t, []string{"canary"}, r.Suggestions)

	require.NoError(t, dec.Decode(&d))
	require.Equal(t, "ok", d.Status)

	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "5", r.ID)
	assert.Equal(t, []string{"cat", "car"}, r.Suggestions)
}

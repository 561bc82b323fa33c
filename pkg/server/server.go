package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/brailleserve/internal/logger"
	"github.com/bastiangx/brailleserve/internal/utils"
	"github.com/bastiangx/brailleserve/pkg/braille"
	"github.com/bastiangx/brailleserve/pkg/dictionary"
	"github.com/bastiangx/brailleserve/pkg/engine"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Options bounds what a client may send.
type Options struct {
	MaxWordLen int
}

// DefaultOptions returns the stock limits.
func DefaultOptions() Options {
	return Options{MaxWordLen: 60}
}

// Server handles msgpack IPC for one session
type Server struct {
	session  *engine.Session
	opts     Options
	decoder  *msgpack.Decoder
	writer   *bufio.Writer
	encoder  *msgpack.Encoder
	log      *log.Logger
	requests int
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(session *engine.Session, opts Options) *Server {
	return NewServerWithIO(session, os.Stdin, os.Stdout, opts)
}

// NewServerWithIO creates a server on the given streams.
func NewServerWithIO(session *engine.Session, r io.Reader, w io.Writer, opts Options) *Server {
	if opts.MaxWordLen < 1 {
		opts.MaxWordLen = DefaultOptions().MaxWordLen
	}
	bw := bufio.NewWriter(w)
	return &Server{
		session: session,
		opts:    opts,
		decoder: msgpack.NewDecoder(bufio.NewReader(r)),
		writer:  bw,
		encoder: msgpack.NewEncoder(bw),
		log:     logger.New("server"),
	}
}

// Start signals readiness and serves requests until the input ends. A clean
// end of input returns nil.
func (s *Server) Start() error {
	s.log.Debug("Starting server")
	s.send(StatusResponse{Status: "ready"})

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debugf("Input closed after %d requests", s.requests)
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return fmt.Errorf("failed to read request: %w", err)
		}
		s.requests++
		s.handleRequest(raw)
	}
}

// handleRequest reads the envelope and dispatches on its type
func (s *Server) handleRequest(raw msgpack.RawMessage) {
	var env Envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		s.log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "invalid request", 400)
		return
	}

	var err error
	switch env.Type {
	case TypeChord:
		var req ChordRequest
		if err = msgpack.Unmarshal(raw, &req); err == nil {
			s.handleChord(req)
		}
	case TypeSuggest:
		var req SuggestRequest
		if err = msgpack.Unmarshal(raw, &req); err == nil {
			s.handleSuggest(req)
		}
	case TypeResolve:
		var req ResolveRequest
		if err = msgpack.Unmarshal(raw, &req); err == nil {
			s.handleResolve(req)
		}
	case TypeDecode:
		var req DecodeRequest
		if err = msgpack.Unmarshal(raw, &req); err == nil {
			s.handleDecode(req)
		}
	case TypeDict:
		var req DictionaryRequest
		if err = msgpack.Unmarshal(raw, &req); err == nil {
			s.handleDictionary(req)
		}
	case TypeText:
		var req TextRequest
		if err = msgpack.Unmarshal(raw, &req); err == nil {
			s.handleText(req)
		}
	default:
		s.sendError(env.ID, fmt.Sprintf("unknown request type: %q", env.Type), 400)
		return
	}
	if err != nil {
		s.log.Errorf("Unmarshaling %s request: %v", env.Type, err)
		s.sendError(env.ID, fmt.Sprintf("malformed %s request", env.Type), 400)
	}
}

func (s *Server) handleChord(req ChordRequest) {
	var res engine.ChordResult
	if len(req.Keys) > 0 {
		res = s.session.PressChord(req.Keys)
	} else {
		res = s.session.PressDots(req.Dots)
	}
	s.send(ChordResponse{
		ID:          req.ID,
		Pattern:     res.Pattern.String(),
		Char:        res.Char,
		Accepted:    res.Accepted,
		Exact:       res.Exact,
		Candidates:  toCandidates(res.Candidates),
		Text:        res.Text,
		Suggestions: res.Suggestions,
	})
}

func (s *Server) handleSuggest(req SuggestRequest) {
	if utf8.RuneCountInString(req.Word) > s.opts.MaxWordLen {
		s.log.Debug("Word is too long in request")
		s.sendError(req.ID, fmt.Sprintf("word exceeds maximum length of %d characters", s.opts.MaxWordLen), 400)
		return
	}

	start := time.Now()
	ranked := s.session.SuggestWord(req.Word)
	elapsed := time.Since(start)

	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	ranks := utils.CreateRankList(len(ranked))
	out := make([]Suggestion, len(ranked))
	for i, r := range ranked {
		out[i] = Suggestion{Word: r.Word, Distance: r.Distance, Rank: ranks[i]}
	}

	s.send(SuggestResponse{
		ID:          req.ID,
		Suggestions: out,
		Count:       len(out),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleResolve(req ResolveRequest) {
	p, err := braille.ParsePattern(req.Pattern)
	if err != nil {
		s.sendError(req.ID, err.Error(), 400)
		return
	}
	res := s.session.ResolvePattern(p)
	s.send(ResolveResponse{
		ID:         req.ID,
		Pattern:    p.String(),
		Cell:       string(p.Cell()),
		Exact:      res.Exact,
		Candidates: toCandidates(res.Candidates),
	})
}

func (s *Server) handleDecode(req DecodeRequest) {
	decoded := s.session.Decode(req.Stream)

	cells := make([]DecodedCell, len(decoded.Cells))
	patterns := make([]braille.Pattern, len(decoded.Cells))
	for i, c := range decoded.Cells {
		cells[i] = DecodedCell{Pattern: c.Pattern.String()}
		cells[i].Char, cells[i].Accepted = c.Accept(s.session.AcceptDistance())
		patterns[i] = c.Pattern
	}

	ranked := s.session.SuggestWord(utils.LastWord(decoded.Text))
	suggestions := make([]string, len(ranked))
	for i, r := range ranked {
		suggestions[i] = r.Word
	}

	s.send(DecodeResponse{
		ID:          req.ID,
		Text:        decoded.Text,
		BestGuess:   s.session.BestGuess(patterns),
		Cells:       cells,
		Rejected:    decoded.Rejected,
		Suggestions: suggestions,
	})
}

func (s *Server) handleDictionary(req DictionaryRequest) {
	registry := s.session.Registry()

	var err error
	switch req.Action {
	case DictInfo:
	case DictSwitch:
		var kind dictionary.Kind
		if kind, err = dictionary.ParseKind(req.Kind); err == nil {
			_, err = registry.Switch(kind)
		}
	case DictUpload:
		_, err = registry.UploadWords(req.Name, req.Words)
	default:
		err = fmt.Errorf("unknown dictionary action: %q", req.Action)
	}

	resp := DictionaryResponse{ID: req.ID, Status: "ok"}
	if err != nil {
		s.log.Warnf("Dictionary %s failed: %v", req.Action, err)
		resp.Status = "error"
		resp.Error = err.Error()
	}
	resp.Info = registry.Info()
	s.send(resp)
}

func (s *Server) handleText(req TextRequest) {
	switch req.Action {
	case TextType:
		s.session.Type(req.Value)
	case TextSpace:
		s.session.Space()
	case TextBackspace:
		s.session.Backspace()
	case TextApply:
		s.session.Apply(strings.TrimSpace(req.Value))
	case TextClear:
		s.session.Clear()
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown text action: %q", req.Action), 400)
		return
	}
	s.send(TextResponse{
		ID:          req.ID,
		Text:        s.session.Text(),
		Suggestions: s.session.Suggestions(),
	})
}

func toCandidates(in []braille.Candidate) []Candidate {
	out := make([]Candidate, len(in))
	for i, c := range in {
		out[i] = Candidate{Char: c.Char, Pattern: c.Pattern.String(), Distance: c.Distance}
	}
	return out
}

// send encodes one response and flushes it so the client sees it at once.
func (s *Server) send(response any) {
	if err := s.encoder.Encode(response); err != nil {
		s.log.Errorf("Marshaling response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.log.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}

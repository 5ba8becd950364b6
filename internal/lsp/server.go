package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"nixel/internal/evaluator"
	"nixel/internal/format"
	"nixel/internal/indent"
	"nixel/internal/nav"
	"nixel/internal/repl"
	"nixel/internal/source"
	"nixel/internal/syntax"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// EvaluateFunc runs the evaluator over a buffer and returns its findings.
type EvaluateFunc func(ctx context.Context, src []byte) ([]evaluator.Record, error)

// CompleteFunc asks the completion backend for candidates of prefix within
// the buffer.
type CompleteFunc func(ctx context.Context, buf repl.Buffer, prefix string) ([]string, error)

// FormatFunc formats a buffer, reporting whether the output differs.
type FormatFunc func(ctx context.Context, src []byte) ([]byte, bool, error)

// ServerOptions configures LSP server behavior. Zero-valued callbacks fall
// back to the real evaluator, REPL manager, and formatter.
type ServerOptions struct {
	Debounce       time.Duration
	MaxDiagnostics int
	TabWidth       int
	SearchPath     []nav.Root
	Evaluate       EvaluateFunc
	Complete       CompleteFunc
	Format         FormatFunc
}

// document is the server-side state of one open buffer.
type document struct {
	text    string
	version int
	cls     *syntax.Classifier
	snap    *indent.Snapshot
}

// Server handles stdio JSON-RPC for the nixel LSP.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	mu          sync.Mutex
	docs        map[string]*document
	published   map[string]struct{}
	lastTouched string

	workspaceRoot     string
	shutdownRequested bool
	debounce          time.Duration
	debounceTimer     *time.Timer
	diagCancel        context.CancelFunc
	analysisSeq       uint64
	latestSeq         uint64

	evaluate       EvaluateFunc
	complete       CompleteFunc
	formatFn       FormatFunc
	engine         *indent.Engine
	searchPath     []nav.Root
	maxDiagnostics int
	trace          bool
	baseCtx        context.Context

	replMgr *repl.Manager
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	tabWidth := opts.TabWidth
	if tabWidth <= 0 {
		tabWidth = indent.DefaultTabWidth
	}

	s := &Server{
		in:             bufio.NewReader(in),
		out:            bufio.NewWriter(out),
		docs:           make(map[string]*document),
		published:      make(map[string]struct{}),
		debounce:       debounce,
		engine:         indent.NewEngine(tabWidth),
		searchPath:     opts.SearchPath,
		maxDiagnostics: maxDiagnostics,
	}

	s.evaluate = opts.Evaluate
	if s.evaluate == nil {
		eval := evaluator.New("", nil)
		s.evaluate = eval.Check
	}
	s.complete = opts.Complete
	if s.complete == nil {
		s.replMgr = repl.NewManager(repl.DefaultConfig())
		s.complete = s.replMgr.Complete
	}
	s.formatFn = opts.Format
	if s.formatFn == nil {
		runner := format.New("", nil)
		s.formatFn = runner.Run
	}
	return s
}

// Run serves LSP requests until shutdown or EOF.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	defer s.closeBackends()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) closeBackends() {
	if s.replMgr != nil {
		if err := s.replMgr.Close(); err != nil {
			s.logf("failed to close repl sessions: %v", err)
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/formatting":
		return s.handleFormatting(msg)
	case "textDocument/onTypeFormatting":
		return s.handleOnTypeFormatting(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			CompletionProvider: &completionOptions{
				TriggerCharacters: []string{"."},
			},
			DefinitionProvider:         true,
			DocumentFormattingProvider: true,
			DocumentOnTypeFormattingProvider: &onTypeFormattingOptions{
				FirstTriggerCharacter: "\n",
				MoreTriggerCharacter:  []string{"}", ")", "]"},
			},
		},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	var settings lspSettings
	if err := json.Unmarshal(params.Settings, &settings); err != nil {
		return nil
	}
	s.mu.Lock()
	if settings.Nixel.TabWidth != nil && *settings.Nixel.TabWidth > 0 {
		s.engine = indent.NewEngine(*settings.Nixel.TabWidth)
	}
	if settings.Nixel.Trace != nil {
		s.trace = *settings.Nixel.Trace
	}
	s.mu.Unlock()
	return nil
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	doc := newDocument(uriToPath(uri), params.TextDocument.Text, params.TextDocument.Version)
	s.mu.Lock()
	s.docs[uri] = doc
	s.lastTouched = uri
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = newDocument(uriToPath(uri), "", 0)
		s.docs[uri] = doc
	}
	newText := applyChanges(doc.text, params.ContentChanges)
	doc.update(uriToPath(uri), newText, params.TextDocument.Version)
	s.lastTouched = uri
	trace := s.trace
	s.mu.Unlock()
	if trace {
		s.logf("didChange: uri=%s version=%d", uri, params.TextDocument.Version)
	}
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if doc, ok := s.docs[uri]; ok && params.Text != nil {
		doc.update(uriToPath(uri), *params.Text, doc.version)
	}
	s.lastTouched = uri
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.docs, uri)
	if s.lastTouched == uri {
		s.lastTouched = ""
	}
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if hadDiagnostics {
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	return nil
}

func newDocument(path, text string, version int) *document {
	doc := &document{}
	doc.text = text
	doc.version = version
	doc.cls = classify(path, text)
	doc.snap = indent.NewSnapshot(doc.cls)
	return doc
}

// update rebuilds the classifier for the new text, keeping indent rows for
// the unchanged prefix of the buffer.
func (d *document) update(path, newText string, version int) {
	from := firstChangedLine(d.text, newText)
	d.text = newText
	d.version = version
	d.cls = classify(path, newText)
	d.snap.Rebind(d.cls, from)
}

func classify(path, text string) *syntax.Classifier {
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte(text))
	return syntax.NewClassifier(fs.Get(id))
}

func (s *Server) docFor(uri string) (*document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}

func (s *Server) isLatestSeq(seq uint64) bool {
	if seq == 0 {
		return false
	}
	return seq == atomic.LoadUint64(&s.latestSeq)
}

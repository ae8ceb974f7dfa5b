package lsp

import (
	"bufio"
	"context"
	"depgraph/internal/core/errors"
	"depgraph/internal/engine/parser"
	"depgraph/internal/shared/observability"
	"depgraph/internal/shared/util"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type Config struct {
	Command           string
	Args              []string
	Root              string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Burst             int
}

type document struct {
	version int
	lines   []string
}

// Client talks to a language server that answers textDocument/references.
type Client struct {
	cfg     Config
	proto   *Protocol
	stdin   io.Closer
	cmd     *exec.Cmd
	limiter *util.Limiter
	readErr chan error

	mu   sync.Mutex
	docs map[string]*document
	// lines of referenced files that were never opened, read once from disk
	files map[string][]string

	closeOnce sync.Once
	closeErr  error
}

// Start launches the configured server over stdio and runs the initialize handshake.
func Start(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New(errors.CodeValidationError, "language server command is empty")
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)
	if cfg.Root != "" {
		cmd.Dir = cfg.Root
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "open language server stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "open language server stdout")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "open language server stderr")
	}
	if err := cmd.Start(); err != nil {
		err = errors.Wrap(err, errors.CodeUnavailable, "start language server")
		return nil, errors.AddContext(err, errors.CtxOperation, cfg.Command)
	}
	go logStderr(cfg.Command, stderr)

	c := NewClient(stdout, stdin, cfg)
	c.cmd = cmd
	if err := c.Initialize(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	slog.Info("language server started", "command", cfg.Command, "root", cfg.Root)
	return c, nil
}

// NewClient wraps an established connection. Call Initialize before use.
func NewClient(r io.Reader, w io.WriteCloser, cfg Config) *Client {
	c := &Client{
		cfg:     cfg,
		proto:   NewProtocol(r, w),
		stdin:   w,
		limiter: util.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		readErr: make(chan error, 1),
		docs:    make(map[string]*document),
		files:   make(map[string][]string),
	}
	go func() {
		c.readErr <- c.proto.ReadLoop()
	}()
	return c
}

func (c *Client) Initialize(ctx context.Context) error {
	root := c.cfg.Root
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		}
	}
	params := InitializeParams{
		ProcessID: os.Getpid(),
		RootURI:   util.PathToURI(root),
		Capabilities: ClientCapabilities{
			TextDocument: TextDocumentClientCapabilities{
				References:      &struct{}{},
				Synchronization: &struct{}{},
			},
		},
	}

	var result InitializeResult
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return errors.Wrap(err, errors.CodeUnavailable, "initialize language server")
	}
	if len(result.Capabilities.ReferencesProvider) == 0 || string(result.Capabilities.ReferencesProvider) == "false" {
		slog.Warn("language server does not advertise references support", "command", c.cfg.Command)
	}
	if err := c.proto.Notify("initialized", struct{}{}); err != nil {
		return errors.Wrap(err, errors.CodeUnavailable, "notify initialized")
	}
	return nil
}

// OpenDocument sends didOpen for a new file and a full-text didChange for a
// file that is already open.
func (c *Client) OpenDocument(_ context.Context, filePath string, content []byte) error {
	text := string(content)
	uri := util.PathToURI(filePath)

	c.mu.Lock()
	doc, open := c.docs[filePath]
	if !open {
		doc = &document{}
		c.docs[filePath] = doc
	}
	doc.version++
	doc.lines = strings.Split(text, "\n")
	version := doc.version
	c.mu.Unlock()

	var err error
	if open {
		err = c.proto.Notify("textDocument/didChange", DidChangeTextDocumentParams{
			TextDocument:   VersionedTextDocumentIdentifier{URI: uri, Version: version},
			ContentChanges: []TextDocumentContentChangeEvent{{Text: text}},
		})
	} else {
		err = c.proto.Notify("textDocument/didOpen", DidOpenTextDocumentParams{
			TextDocument: TextDocumentItem{
				URI:        uri,
				LanguageID: languageID(filePath),
				Version:    version,
				Text:       text,
			},
		})
	}
	if err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeUnavailable, "sync document"), errors.CtxPath, filePath)
	}
	return nil
}

// FindReferences returns every usage of the symbol at pos, declaration included.
func (c *Client) FindReferences(ctx context.Context, filePath string, pos parser.Location) ([]parser.Location, error) {
	ctx, span := observability.Tracer.Start(ctx, "lsp.FindReferences")
	defer span.End()
	span.SetAttributes(attribute.String("file", filePath), attribute.Int("line", pos.Line))

	if !c.isOpen(filePath) {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read document"), errors.CtxPath, filePath)
		}
		if err := c.OpenDocument(ctx, filePath, content); err != nil {
			return nil, err
		}
	}

	if err := c.limiter.Wait(ctx, 1); err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "reference request rate limit")
	}

	params := ReferenceParams{
		TextDocument: TextDocumentIdentifier{URI: util.PathToURI(filePath)},
		Position:     c.toLSPPosition(filePath, pos),
		Context:      ReferenceContext{IncludeDeclaration: true},
	}
	var locs []Location
	if err := c.call(ctx, "textDocument/references", params, &locs); err != nil {
		err = errors.Wrap(err, errors.CodeUnavailable, "find references")
		return nil, errors.AddContext(err, errors.CtxPath, filePath)
	}

	out := make([]parser.Location, 0, len(locs))
	for _, loc := range locs {
		path := util.URIToPath(loc.URI)
		out = append(out, c.fromLSPPosition(path, loc.Range.Start))
	}
	span.SetAttributes(attribute.Int("references", len(out)))
	return out, nil
}

// Close shuts the server down and waits for the process to exit.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout())
		defer cancel()

		if err := c.proto.Call(ctx, "shutdown", nil, nil); err != nil {
			slog.Debug("language server shutdown failed", "error", err)
		}
		if err := c.proto.Notify("exit", nil); err != nil {
			slog.Debug("language server exit notification failed", "error", err)
		}
		c.proto.Close()
		_ = c.stdin.Close()

		select {
		case <-c.readErr:
		case <-ctx.Done():
		}

		if c.cmd != nil {
			done := make(chan error, 1)
			go func() { done <- c.cmd.Wait() }()
			select {
			case err := <-done:
				if err != nil {
					slog.Debug("language server exited", "error", err)
				}
			case <-time.After(c.timeout()):
				c.closeErr = c.cmd.Process.Kill()
			}
		}
	})
	return c.closeErr
}

func (c *Client) call(ctx context.Context, method string, params, result interface{}) error {
	if timeout := c.cfg.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return c.proto.Call(ctx, method, params, result)
}

func (c *Client) timeout() time.Duration {
	if c.cfg.RequestTimeout > 0 {
		return c.cfg.RequestTimeout
	}
	return 5 * time.Second
}

func (c *Client) isOpen(filePath string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.docs[filePath]
	return ok
}

func (c *Client) documentLine(filePath string, line int) (string, bool) {
	lines := c.lines(filePath)
	if line < 0 || line >= len(lines) {
		return "", false
	}
	return strings.TrimSuffix(lines[line], "\r"), true
}

// lines prefers the synced text of an open document and falls back to the
// file on disk. A file that cannot be read is remembered as empty.
func (c *Client) lines(filePath string) []string {
	c.mu.Lock()
	if doc, ok := c.docs[filePath]; ok {
		c.mu.Unlock()
		return doc.lines
	}
	if lines, ok := c.files[filePath]; ok {
		c.mu.Unlock()
		return lines
	}
	c.mu.Unlock()

	var lines []string
	if content, err := os.ReadFile(filePath); err == nil {
		lines = strings.Split(string(content), "\n")
	} else {
		slog.Debug("reference file unreadable, keeping server columns", "file", filePath, "error", err)
	}

	c.mu.Lock()
	c.files[filePath] = lines
	c.mu.Unlock()
	return lines
}

// toLSPPosition converts a 1-based byte column to a 0-based UTF-16 position.
func (c *Client) toLSPPosition(filePath string, pos parser.Location) Position {
	line := pos.Line - 1
	char := pos.Column - 1
	if text, ok := c.documentLine(filePath, line); ok {
		char = utf16Column(text, char)
	}
	return Position{Line: line, Character: char}
}

func (c *Client) fromLSPPosition(filePath string, p Position) parser.Location {
	col := p.Character
	if text, ok := c.documentLine(filePath, p.Line); ok {
		col = byteColumn(text, col)
	}
	return parser.Location{File: filePath, Line: p.Line + 1, Column: col + 1}
}

func languageID(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return "typescript"
	case ".tsx":
		return "typescriptreact"
	case ".jsx":
		return "javascriptreact"
	default:
		return "javascript"
	}
}

func logStderr(command string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		slog.Debug("language server stderr", "command", command, "line", scanner.Text())
	}
}

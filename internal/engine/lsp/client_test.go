package lsp

import (
	"bufio"
	"context"
	"depgraph/internal/engine/parser"
	"depgraph/internal/shared/util"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverMessage struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// fakeServer answers the handful of requests the client sends.
type fakeServer struct {
	in  *bufio.Reader
	out *io.PipeWriter

	mu       sync.Mutex
	methods  []string
	refs     []ReferenceParams
	replies  chan struct{}
	done     chan struct{}
	response []Location
}

func newFakeServer(t *testing.T, response []Location) (*fakeServer, *Client) {
	t.Helper()
	clientToServerR, clientToServerW := io.Pipe()
	serverToClientR, serverToClientW := io.Pipe()

	s := &fakeServer{
		in:       bufio.NewReader(clientToServerR),
		out:      serverToClientW,
		replies:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		response: response,
	}
	go s.run()

	c := NewClient(serverToClientR, clientToServerW, Config{
		Root:           t.TempDir(),
		RequestTimeout: 2 * time.Second,
	})
	return s, c
}

func (s *fakeServer) run() {
	defer close(s.done)
	for {
		body, err := ReadMessage(s.in)
		if err != nil {
			return
		}
		var msg serverMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return
		}

		s.mu.Lock()
		s.methods = append(s.methods, msg.Method)
		s.mu.Unlock()

		switch msg.Method {
		case "initialize":
			s.reply(msg.ID, map[string]any{"capabilities": map[string]any{"referencesProvider": true}})
		case "textDocument/references":
			var params ReferenceParams
			_ = json.Unmarshal(msg.Params, &params)
			s.mu.Lock()
			s.refs = append(s.refs, params)
			s.mu.Unlock()

			_ = WriteMessage(s.out, Notification{JSONRPC: JSONRPCVersion, Method: "window/logMessage", Params: map[string]any{"message": "indexing"}})
			_ = WriteMessage(s.out, map[string]any{"jsonrpc": "2.0", "id": "cfg-1", "method": "workspace/configuration"})
			s.reply(msg.ID, s.response)
		case "shutdown":
			s.reply(msg.ID, nil)
		case "exit":
			_ = s.out.Close()
			return
		case "":
			if string(msg.ID) == `"cfg-1"` {
				s.replies <- struct{}{}
			}
		}
	}
}

func (s *fakeServer) reply(id json.RawMessage, result any) {
	_ = WriteMessage(s.out, map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
}

func (s *fakeServer) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.methods...)
}

func TestClient_FindReferences(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "index.ts")
	other := filepath.Join(dir, "use.ts")
	require.NoError(t, os.WriteFile(file, []byte("export const café = 1;\nexport function load() {}\n"), 0o644))

	response := []Location{
		{URI: util.PathToURI(other), Range: Range{Start: Position{Line: 4, Character: 2}}},
		{URI: util.PathToURI(file), Range: Range{Start: Position{Line: 1, Character: 16}}},
	}
	server, client := newFakeServer(t, response)
	ctx := context.Background()

	require.NoError(t, client.Initialize(ctx))

	locs, err := client.FindReferences(ctx, file, parser.Location{File: file, Line: 2, Column: 17})
	require.NoError(t, err)
	assert.Equal(t, []parser.Location{
		{File: other, Line: 5, Column: 3},
		{File: file, Line: 2, Column: 17},
	}, locs)

	select {
	case <-server.replies:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the client to answer the server request")
	}

	require.NoError(t, client.Close())
	<-server.done

	assert.Equal(t, []string{
		"initialize",
		"initialized",
		"textDocument/didOpen",
		"textDocument/references",
		"",
		"shutdown",
		"exit",
	}, server.seen())

	require.Len(t, server.refs, 1)
	assert.Equal(t, Position{Line: 1, Character: 16}, server.refs[0].Position)
	assert.True(t, server.refs[0].Context.IncludeDeclaration)
	assert.Equal(t, util.PathToURI(file), server.refs[0].TextDocument.URI)
}

func TestClient_OpenDocumentTwiceSendsChange(t *testing.T) {
	server, client := newFakeServer(t, nil)
	ctx := context.Background()
	require.NoError(t, client.Initialize(ctx))

	path := filepath.Join(t.TempDir(), "a.js")
	require.NoError(t, client.OpenDocument(ctx, path, []byte("let a;")))
	require.NoError(t, client.OpenDocument(ctx, path, []byte("let b;")))

	locs, err := client.FindReferences(ctx, path, parser.Location{File: path, Line: 1, Column: 5})
	require.NoError(t, err)
	assert.Empty(t, locs)

	<-server.replies
	require.NoError(t, client.Close())
	<-server.done

	assert.Equal(t, []string{
		"initialize",
		"initialized",
		"textDocument/didOpen",
		"textDocument/didChange",
		"textDocument/references",
		"",
		"shutdown",
		"exit",
	}, server.seen())
}

func TestClient_UTF16Columns(t *testing.T) {
	_, client := newFakeServer(t, nil)
	path := "/src/emoji.ts"
	require.NoError(t, client.OpenDocument(context.Background(), path, []byte("const s = '😀'; export const é = s;")))

	// "😀" is 4 bytes and 2 UTF-16 units; "é" is 2 bytes and 1 unit.
	byteCol := len("const s = '😀'; export const ") + 1
	pos := client.toLSPPosition(path, parser.Location{File: path, Line: 1, Column: byteCol})
	assert.Equal(t, Position{Line: 0, Character: byteCol - 1 - 2}, pos)

	back := client.fromLSPPosition(path, pos)
	assert.Equal(t, parser.Location{File: path, Line: 1, Column: byteCol}, back)
}

func TestClient_UnopenedReferenceFileUsesByteColumns(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "index.ts")
	user := filepath.Join(dir, "view.ts")
	require.NoError(t, os.WriteFile(file, []byte("export function load() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(user, []byte("import { load } from './index';\nconst 日本 = load();\n"), 0o644))

	// "日本" is 6 bytes and 2 UTF-16 units, so load sits at character 11.
	response := []Location{
		{URI: util.PathToURI(user), Range: Range{Start: Position{Line: 1, Character: 11}}},
	}
	server, client := newFakeServer(t, response)
	ctx := context.Background()
	require.NoError(t, client.Initialize(ctx))

	locs, err := client.FindReferences(ctx, file, parser.Location{File: file, Line: 1, Column: 17})
	require.NoError(t, err)
	assert.Equal(t, []parser.Location{
		{File: user, Line: 2, Column: len("const 日本 = ") + 1},
	}, locs)
	assert.False(t, client.isOpen(user))

	<-server.replies
	require.NoError(t, client.Close())
	<-server.done
}

func TestClient_CallAfterServerExitFails(t *testing.T) {
	serverR, serverW := io.Pipe()
	clientR, clientW := io.Pipe()
	client := NewClient(clientR, serverW, Config{RequestTimeout: time.Second})
	go func() { _, _ = io.Copy(io.Discard, serverR) }()

	_ = clientW.Close()
	select {
	case <-client.readErr:
	case <-time.After(time.Second):
		t.Fatal("expected read loop to stop")
	}

	path := filepath.Join(t.TempDir(), "late.ts")
	require.NoError(t, os.WriteFile(path, []byte("export const x = 1;\n"), 0o644))
	_, err := client.FindReferences(context.Background(), path, parser.Location{Line: 1, Column: 14})
	require.Error(t, err)
}

func TestReadMessage(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("Content-Type: application/vscode-jsonrpc\r\ncontent-length: 2\r\n\r\n{}"))
	body, err := ReadMessage(r)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))

	_, err = ReadMessage(bufio.NewReader(strings.NewReader("\r\n")))
	assert.Error(t, err)
}

func TestLanguageID(t *testing.T) {
	assert.Equal(t, "typescript", languageID("a.ts"))
	assert.Equal(t, "typescriptreact", languageID("a.TSX"))
	assert.Equal(t, "javascriptreact", languageID("a.jsx"))
	assert.Equal(t, "javascript", languageID("a.mjs"))
}

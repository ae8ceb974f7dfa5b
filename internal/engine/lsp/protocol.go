package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
)

var ErrProtocolClosed = stderrors.New("lsp connection closed")

// Protocol correlates JSON-RPC requests with responses over a framed stream.
// Safe for concurrent use; ReadLoop must run in its own goroutine.
type Protocol struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex

	nextID    atomic.Int64
	pending   map[int64]chan Response
	pendingMu sync.Mutex
	closed    atomic.Bool
}

func NewProtocol(r io.Reader, w io.Writer) *Protocol {
	return &Protocol{
		reader:  bufio.NewReader(r),
		writer:  w,
		pending: make(map[int64]chan Response),
	}
}

// Call sends a request and decodes the result into result, which may be nil.
func (p *Protocol) Call(ctx context.Context, method string, params, result interface{}) error {
	if p.closed.Load() {
		return ErrProtocolClosed
	}

	id := p.nextID.Add(1)
	respCh := make(chan Response, 1)
	p.pendingMu.Lock()
	p.pending[id] = respCh
	p.pendingMu.Unlock()

	defer func() {
		p.pendingMu.Lock()
		delete(p.pending, id)
		p.pendingMu.Unlock()
	}()

	req := Request{JSONRPC: JSONRPCVersion, ID: id, Method: method, Params: params}
	if err := p.write(req); err != nil {
		return fmt.Errorf("write %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	case resp := <-respCh:
		if resp.Error != nil {
			return fmt.Errorf("%s: server error %d: %s", method, resp.Error.Code, resp.Error.Message)
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
		return nil
	}
}

func (p *Protocol) Notify(method string, params interface{}) error {
	if p.closed.Load() {
		return ErrProtocolClosed
	}
	return p.write(Notification{JSONRPC: JSONRPCVersion, Method: method, Params: params})
}

func (p *Protocol) write(v interface{}) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return WriteMessage(p.writer, v)
}

// ReadLoop dispatches server messages until the stream ends. Pending calls
// are failed when it returns.
func (p *Protocol) ReadLoop() error {
	defer p.Close()
	for {
		body, err := ReadMessage(p.reader)
		if err != nil {
			if stderrors.Is(err, io.EOF) || p.closed.Load() {
				return nil
			}
			return err
		}
		p.dispatch(body)
	}
}

func (p *Protocol) dispatch(body []byte) {
	var msg incomingMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		slog.Debug("dropping malformed lsp message", "error", err)
		return
	}

	hasID := len(msg.ID) > 0 && string(msg.ID) != "null"
	switch {
	case msg.Method != "" && hasID:
		// Server request. Reply off the read loop so a blocked writer cannot stall reads.
		go func(id json.RawMessage, method string) {
			if err := p.write(nullReply{JSONRPC: JSONRPCVersion, ID: id}); err != nil {
				slog.Debug("failed to answer server request", "method", method, "error", err)
			}
		}(msg.ID, msg.Method)
	case msg.Method != "":
		slog.Debug("lsp notification", "method", msg.Method)
	case hasID:
		id, err := strconv.ParseInt(string(msg.ID), 10, 64)
		if err != nil {
			return
		}
		p.pendingMu.Lock()
		ch, ok := p.pending[id]
		p.pendingMu.Unlock()
		if ok {
			select {
			case ch <- Response{JSONRPC: JSONRPCVersion, ID: id, Result: msg.Result, Error: msg.Error}:
			default:
			}
		}
	}
}

// Close fails all pending calls and rejects new ones.
func (p *Protocol) Close() {
	if p.closed.Swap(true) {
		return
	}
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	for id, ch := range p.pending {
		select {
		case ch <- Response{
			JSONRPC: JSONRPCVersion,
			ID:      id,
			Error:   &RPCError{Code: -32099, Message: ErrProtocolClosed.Error()},
		}:
		default:
		}
	}
}

package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server fronts an mcp-go server so every tools/call reaches the
// dispatcher. mcp-go answers calls naming an unregistered tool with a
// JSON-RPC error; here they get the same failure envelope as any other
// failed invocation.
type Server struct {
	mcp  *server.MCPServer
	disp *Dispatcher

	// ErrorLog receives transport errors; nil uses the standard logger.
	ErrorLog *log.Logger
}

// NewServer builds the MCP server for d with every catalog tool registered.
func NewServer(name, version string, d *Dispatcher) *Server {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))
	Register(s, d)
	return &Server{mcp: s, disp: d}
}

// MCPServer returns the wrapped mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// HandleMessage processes one JSON-RPC message.
func (s *Server) HandleMessage(ctx context.Context, raw json.RawMessage) mcp.JSONRPCMessage {
	if resp, ok := s.unknownToolCall(ctx, raw); ok {
		return resp
	}
	return s.mcp.HandleMessage(ctx, raw)
}

type toolCallMessage struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Method  mcp.MCPMethod `json:"method"`
	Params  struct {
		Name      string      `json:"name"`
		Arguments interface{} `json:"arguments"`
	} `json:"params"`
}

// unknownToolCall answers tools/call requests for names outside the
// catalog through the dispatcher. Everything else is left to mcp-go.
func (s *Server) unknownToolCall(ctx context.Context, raw json.RawMessage) (mcp.JSONRPCMessage, bool) {
	var msg toolCallMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, false
	}
	if msg.JSONRPC != mcp.JSONRPC_VERSION || msg.ID == nil || msg.Method != mcp.MethodToolsCall {
		return nil, false
	}
	if _, known := Lookup(msg.Params.Name); known {
		return nil, false
	}

	args, _ := msg.Params.Arguments.(map[string]interface{})
	env := s.disp.Invoke(ctx, msg.Params.Name, args)
	return mcp.JSONRPCResponse{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      msg.ID,
		Result:  *CallToolResult(env),
	}, true
}

// Listen serves newline-delimited JSON-RPC from in to out until in is
// exhausted or ctx ends. mcp-go's stdio server does the framing; unknown
// tool calls are answered before the line reaches it.
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	w := &syncWriter{w: out}
	pr, pw := io.Pipe()
	defer pr.Close()

	go s.route(ctx, in, pw, w)

	stdio := server.NewStdioServer(s.mcp)
	if s.ErrorLog != nil {
		stdio.SetErrorLogger(s.ErrorLog)
	} else {
		stdio.SetErrorLogger(log.New(log.Writer(), "stdio: ", log.Flags()))
	}
	return stdio.Listen(ctx, pr, w)
}

func (s *Server) route(ctx context.Context, in io.Reader, pw *io.PipeWriter, out io.Writer) {
	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			if resp, ok := s.unknownToolCall(ctx, json.RawMessage(trimmed)); ok {
				if werr := writeMessage(out, resp); werr != nil {
					pw.CloseWithError(werr)
					return
				}
			} else {
				if !strings.HasSuffix(line, "\n") {
					line += "\n"
				}
				if _, werr := io.WriteString(pw, line); werr != nil {
					return
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				pw.Close()
			} else {
				pw.CloseWithError(err)
			}
			return
		}
	}
}

func writeMessage(w io.Writer, msg mcp.JSONRPCMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// syncWriter keeps responses written from two goroutines whole.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

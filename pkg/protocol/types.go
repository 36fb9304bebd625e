package protocol

import "encoding/json"

// Version is the JSON-RPC protocol version the bridge speaks.
const Version = "2.0"

// MCPProtocolVersion is the tool-invocation protocol revision reported
// during the initialize handshake.
const MCPProtocolVersion = "2024-11-05"

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// RPCRequest is an incoming JSON-RPC request envelope.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// RPCError carries a JSON-RPC error code/message pair.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RPCResponse is the outgoing JSON-RPC envelope. Exactly one of Result
// and Error is populated.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// NewResult builds a success response for the given request ID.
func NewResult(id json.RawMessage, result any) RPCResponse {
	return RPCResponse{JSONRPC: Version, ID: id, Result: result}
}

// NewError builds an error response for the given request ID.
func NewError(id json.RawMessage, code int, message string) RPCResponse {
	return RPCResponse{JSONRPC: Version, ID: id, Error: &RPCError{Code: code, Message: message}}
}

// ServerInfo identifies the bridge during the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is returned for the initialize method.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

// ToolDescriptor describes one tool for tools/list.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ToolListResult is the tools/list payload.
type ToolListResult struct {
	Tools []ToolDescriptor `json:"tools"`
}

// ToolCallParams are the tools/call parameters.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ContentBlock is one element of a tool call result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCallResult wraps tool output as text content.
type ToolCallResult struct {
	Content []ContentBlock `json:"content"`
}

// TextResult builds a single-text-block tool call result.
func TextResult(text string) ToolCallResult {
	return ToolCallResult{Content: []ContentBlock{{Type: "text", Text: text}}}
}

// CallRequest is the legacy REST invocation shape.
type CallRequest struct {
	Tool   string          `json:"tool"`
	Params json.RawMessage `json:"params,omitempty"`
}

// CallResponse is the legacy REST envelope.
type CallResponse struct {
	Success bool   `json:"success"`
	Tool    string `json:"tool,omitempty"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

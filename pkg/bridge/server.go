// Package bridge exposes the tool registry over HTTP: a JSON-RPC
// tool-invocation protocol and the legacy REST call shape, both on the
// same endpoint.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Razex4777/ai-image-tools/pkg/config"
	"github.com/Razex4777/ai-image-tools/pkg/protocol"
	"github.com/Razex4777/ai-image-tools/pkg/tools"
)

const maxBodySize = 10 << 20

// Server routes both invocation conventions to the tool registry.
type Server struct {
	registry     *tools.Registry
	info         protocol.ServerInfo
	geminiReady  bool
	freepikReady bool
	tracer       trace.Tracer
}

// NewServer builds the bridge over a registry and bridge config.
func NewServer(registry *tools.Registry, cfg config.BridgeConfig) *Server {
	return &Server{
		registry:     registry,
		info:         protocol.ServerInfo{Name: "ai-image-tools", Version: "1.0.0"},
		geminiReady:  cfg.GeminiAPIKey != "",
		freepikReady: cfg.FreepikAPIKey != "",
		tracer:       otel.Tracer("bridge"),
	}
}

// Routes returns the chi router for the bridge endpoints.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", healthzHandler)
	r.Get("/", s.handleStatus)
	r.Post("/", s.handleInvoke)
	r.Options("/", s.handlePreflight)
	return r
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}

type toolInfo struct {
	Description string `json:"description"`
}

type statusResponse struct {
	Status  string              `json:"status"`
	Service string              `json:"service"`
	Version string              `json:"version"`
	Env     map[string]bool     `json:"env"`
	Tools   map[string]toolInfo `json:"tools"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	toolMap := map[string]toolInfo{}
	for _, desc := range s.registry.Descriptors() {
		toolMap[desc.Name] = toolInfo{Description: desc.Description}
	}

	setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statusResponse{
		Status:  "online",
		Service: s.info.Name,
		Version: s.info.Version,
		Env: map[string]bool{
			"gemini":  s.geminiReady,
			"freepik": s.freepikReady,
		},
		Tools: toolMap,
	})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeREST(w, http.StatusBadRequest, protocol.CallResponse{Success: false, Error: "failed to read body"})
		return
	}

	var probe struct {
		JSONRPC string `json:"jsonrpc"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		writeRPC(w, protocol.NewError(nil, protocol.CodeParseError, "invalid JSON body"))
		return
	}

	if probe.JSONRPC != "" {
		s.handleRPC(r.Context(), w, body)
		return
	}
	s.handleREST(r.Context(), w, body)
}

func (s *Server) handleRPC(ctx context.Context, w http.ResponseWriter, body []byte) {
	var req protocol.RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeRPC(w, protocol.NewError(nil, protocol.CodeInvalidRequest, "malformed request"))
		return
	}

	switch req.Method {
	case "initialize":
		writeRPC(w, protocol.NewResult(req.ID, protocol.InitializeResult{
			ProtocolVersion: protocol.MCPProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      s.info,
		}))

	case "tools/list":
		writeRPC(w, protocol.NewResult(req.ID, protocol.ToolListResult{
			Tools: s.registry.Descriptors(),
		}))

	case "tools/call":
		var params protocol.ToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeRPC(w, protocol.NewError(req.ID, protocol.CodeInvalidParams, "malformed tool call parameters"))
			return
		}

		result, err := s.callTool(ctx, params.Name, params.Arguments)
		if err != nil {
			code := protocol.CodeInternalError
			if errors.Is(err, tools.ErrUnknownTool) {
				code = protocol.CodeInvalidParams
			}
			writeRPC(w, protocol.NewError(req.ID, code, err.Error()))
			return
		}
		writeRPC(w, protocol.NewResult(req.ID, protocol.TextResult(result)))

	default:
		writeRPC(w, protocol.NewError(req.ID, protocol.CodeMethodNotFound, "unknown method: "+req.Method))
	}
}

func (s *Server) handleREST(ctx context.Context, w http.ResponseWriter, body []byte) {
	var req protocol.CallRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeREST(w, http.StatusBadRequest, protocol.CallResponse{Success: false, Error: "malformed request body"})
		return
	}
	if req.Tool == "" {
		writeREST(w, http.StatusBadRequest, protocol.CallResponse{Success: false, Error: `missing "tool" field`})
		return
	}

	result, err := s.callTool(ctx, req.Tool, req.Params)
	if err != nil {
		if errors.Is(err, tools.ErrUnknownTool) {
			writeREST(w, http.StatusNotFound, protocol.CallResponse{Success: false, Error: err.Error()})
			return
		}
		writeREST(w, http.StatusInternalServerError, protocol.CallResponse{Success: false, Error: err.Error()})
		return
	}

	writeREST(w, http.StatusOK, protocol.CallResponse{Success: true, Tool: req.Tool, Result: result})
}

func (s *Server) callTool(ctx context.Context, name string, params json.RawMessage) (string, error) {
	ctx, span := s.tracer.Start(ctx, "tools/call",
		trace.WithAttributes(attribute.String("tool.name", name)))
	defer span.End()

	result, err := s.registry.Call(ctx, name, params)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return result, nil
}

func writeRPC(w http.ResponseWriter, resp protocol.RPCResponse) {
	setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeREST(w http.ResponseWriter, status int, resp protocol.CallResponse) {
	setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Package rpc exposes the analytics engine as a set of JSON-RPC tools over
// stdio. Stdout carries the protocol stream only; all logging goes to stderr
// and the rotating file sink.
package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"civic-insight/internal/config"
	"civic-insight/internal/explain"
	"civic-insight/internal/store"
)

// JSONRPCRequest represents a standard JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a standard JSON-RPC response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Server holds the state for the tool server.
type Server struct {
	cfg     *config.AppConfig
	store   store.RecordStore
	explain *explain.Client

	in  io.Reader
	out io.Writer
}

// NewServer creates a new tool server bound to a record store.
func NewServer(cfg *config.AppConfig, st store.RecordStore) *Server {
	return &Server{
		cfg:     cfg,
		store:   st,
		explain: explain.NewClient(cfg.ExplainURL, cfg.ExplainTimeout),
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// Start runs the JSON-RPC loop over stdio until EOF.
func (s *Server) Start() error {
	reader := bufio.NewReader(s.in)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal request")
			continue
		}

		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req JSONRPCRequest) {
	var result interface{}
	var errRes interface{}

	switch req.Method {
	case "initialize":
		result = map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]interface{}{},
			"serverInfo": map[string]interface{}{
				"name":    "civic-insight",
				"version": "0.1.0",
			},
		}
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, errRes = s.callTool(req.Params)
	default:
		errRes = map[string]interface{}{
			"code":    -32601,
			"message": fmt.Sprintf("Method %s not found", req.Method),
		}
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   errRes,
	}

	out, _ := json.Marshal(resp)
	fmt.Fprintf(s.out, "%s\n", out)
}

func (s *Server) callTool(params json.RawMessage) (interface{}, interface{}) {
	var call struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, map[string]interface{}{"code": -32602, "message": "Invalid params"}
	}

	var data interface{}
	var err error

	switch call.Name {
	case "list_sources":
		data, err = s.handleListSources()
	case "get_overview":
		data, err = s.handleOverview(call.Arguments)
	case "detect_rising_subtopics":
		data, err = s.handleRisingSubtopics(call.Arguments)
	case "detect_ward_risk":
		data, err = s.handleWardRisk(call.Arguments)
	case "detect_chronic_issues":
		data, err = s.handleChronicIssues(call.Arguments)
	case "get_pain_matrix":
		data, err = s.handlePainMatrix(call.Arguments)
	case "get_scorecard":
		data, err = s.handleScorecard(call.Arguments)
	case "get_full_report":
		data, err = s.handleFullReport(call.Arguments)
	case "explain_signal":
		data, err = s.handleExplainSignal(call.Arguments)
	default:
		return nil, map[string]interface{}{"code": -32601, "message": "Tool not found"}
	}

	if err != nil {
		return nil, map[string]interface{}{"code": -32000, "message": err.Error()}
	}

	return map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "text",
				"text": s.formatResult(data),
			},
		},
	}, nil
}

func (s *Server) formatResult(data interface{}) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

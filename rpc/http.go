package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"guardtoken/core"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeRateLimited    = -32020
	codePolicyRejected = -32030
)

// Server exposes the ledger over JSON-RPC. Privileged methods (mint, burn,
// registry and trust administration, block control) require the configured
// bearer token.
type Server struct {
	ledger    *core.Ledger
	authToken string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewServer constructs an RPC server for the provided ledger. perMinute bounds
// the request rate per source address; zero disables rate limiting.
func NewServer(ledger *core.Ledger, authToken string, perMinute int) *Server {
	s := &Server{
		ledger:    ledger,
		authToken: strings.TrimSpace(authToken),
		limiters:  make(map[string]*rate.Limiter),
	}
	if perMinute > 0 {
		s.limit = rate.Limit(float64(perMinute) / 60.0)
		s.burst = perMinute
	}
	return s
}

// Handler returns the HTTP handler serving the JSON-RPC endpoint.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) allow(remoteAddr string) bool {
	if s.burst == 0 {
		return true
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	s.mu.Lock()
	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[host] = limiter
	}
	s.mu.Unlock()
	return limiter.Allow()
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return false
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	supplied := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(s.authToken)) == 1
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, nil, codeInvalidRequest, "POST required", nil)
		return
	}
	if !s.allow(r.RemoteAddr) {
		writeError(w, http.StatusTooManyRequests, nil, codeRateLimited, "rate limit exceeded", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request", nil)
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", nil)
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported JSON-RPC version", nil)
		return
	}

	if privilegedMethods[req.Method] && !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "unauthorized", nil)
		return
	}

	handler, ok := methodTable[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		return
	}
	handler(s, w, &req)
}

type handlerFunc func(s *Server, w http.ResponseWriter, req *RPCRequest)

var privilegedMethods = map[string]bool{
	"token_mint":            true,
	"token_burn":            true,
	"registry_setCodeHash":  true,
	"trust_refresh":         true,
	"trust_bindFingerprint": true,
	"ledger_beginBlock":     true,
}

var methodTable = map[string]handlerFunc{
	"token_transfer":           (*Server).handleTransfer,
	"token_transferFrom":       (*Server).handleTransferFrom,
	"token_mint":               (*Server).handleMint,
	"token_burn":               (*Server).handleBurn,
	"token_approve":            (*Server).handleApprove,
	"token_permit":             (*Server).handlePermit,
	"token_balanceOf":          (*Server).handleBalanceOf,
	"token_totalSupply":        (*Server).handleTotalSupply,
	"token_allowance":          (*Server).handleAllowance,
	"token_nonce":              (*Server).handleNonce,
	"registry_setCodeHash":     (*Server).handleSetCodeHash,
	"registry_isValidCodeHash": (*Server).handleIsValidCodeHash,
	"trust_isTrusted":          (*Server).handleIsTrusted,
	"trust_refresh":            (*Server).handleRefreshTrust,
	"trust_bindFingerprint":    (*Server).handleBindFingerprint,
	"ledger_beginBlock":        (*Server).handleBeginBlock,
	"ledger_currentBlock":      (*Server).handleCurrentBlock,
	"ledger_events":            (*Server).handleEvents,
}

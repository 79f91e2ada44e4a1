package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"stakevest/core"
	coreerrors "stakevest/core/errors"
	"stakevest/crypto"
	"stakevest/indexer"
	"stakevest/native/bank"
	nativecommon "stakevest/native/common"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
	requestIDHeader = "X-Request-ID"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

// EventSource serves the event history behind events_list.
type EventSource interface {
	List(ctx context.Context, filter indexer.Filter) ([]indexer.Record, error)
}

// Config wires the optional collaborators of the server.
type Config struct {
	Auth   AuthConfig
	Events EventSource
	Logger *slog.Logger
}

type Server struct {
	proc    *core.Processor
	events  EventSource
	auth    *authenticator
	logger  *slog.Logger
	methods map[string]method
}

// method binds a JSON-RPC name to its handler. Mutating methods need an
// authenticated caller.
type method struct {
	handler func(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error)
	auth    bool
}

func NewServer(proc *core.Processor, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		proc:   proc,
		events: cfg.Events,
		auth:   newAuthenticator(cfg.Auth),
		logger: logger,
	}
	s.methods = map[string]method{
		"rewards_deposit":               {s.handleRewardsDeposit, true},
		"rewards_withdraw":              {s.handleRewardsWithdraw, true},
		"rewards_claim":                 {s.handleRewardsClaim, true},
		"rewards_compound":              {s.handleRewardsCompound, true},
		"rewards_setPool":               {s.handleRewardsSetPool, true},
		"rewards_pending":               {s.handleRewardsPending, false},
		"rewards_pool":                  {s.handleRewardsPool, false},
		"rewards_pools":                 {s.handleRewardsPools, false},
		"rewards_position":              {s.handleRewardsPosition, false},
		"vesting_claim":                 {s.handleVestingClaim, true},
		"vesting_claimAll":              {s.handleVestingClaimAll, true},
		"vesting_setTgeTime":            {s.handleVestingSetTgeTime, true},
		"vesting_setLastCategory":       {s.handleVestingSetLastCategory, true},
		"vesting_setVestingInfo":        {s.handleVestingSetVestingInfo, true},
		"vesting_setVestingInfoInBatch": {s.handleVestingSetVestingInfoInBatch, true},
		"vesting_setAmount":             {s.handleVestingSetAmount, true},
		"vesting_setAmountInBatch":      {s.handleVestingSetAmountInBatch, true},
		"vesting_vested":                {s.handleVestingVested, false},
		"vesting_allocation":            {s.handleVestingAllocation, false},
		"vesting_summary":               {s.handleVestingSummary, false},
		"bank_approve":                  {s.handleBankApprove, true},
		"bank_grantMinter":              {s.handleBankGrantMinter, true},
		"bank_mint":                     {s.handleBankMint, true},
		"bank_transfer":                 {s.handleBankTransfer, true},
		"bank_balance":                  {s.handleBankBalance, false},
		"events_list":                   {s.handleEventsList, false},
	}
	return s
}

// Handler returns the HTTP routes served by the node.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(withRequestID)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Method(http.MethodPost, "/rpc", otelhttp.NewHandler(http.HandlerFunc(s.handle), "stakevest.rpc"))
	return r
}

// Start serves the routes until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting JSON-RPC server", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
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

// handle decodes a single JSON-RPC request and dispatches it.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	m, ok := s.methods[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %s", req.Method), nil)
		return
	}
	var caller crypto.Address
	if m.auth {
		addr, authErr := s.auth.caller(r)
		if authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		caller = addr
	}

	result, err := m.handler(r.Context(), caller, req)
	if err != nil {
		s.writeFailure(w, req, err)
		return
	}
	writeResult(w, req.ID, result)
}

// writeFailure maps handler errors onto JSON-RPC error objects. Engine
// failures carry their taxonomy name as data.
func (s *Server) writeFailure(w http.ResponseWriter, req *RPCRequest, err error) {
	var pe *paramError
	if errors.As(err, &pe) {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, pe.message, pe.detail())
		return
	}
	code := failureCode(err)
	switch code {
	case "":
		s.logger.Error("rpc method failed",
			slog.String("method", req.Method),
			slog.String("request_id", w.Header().Get(requestIDHeader)),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
	case "Unauthorized":
		writeError(w, http.StatusForbidden, req.ID, codeUnauthorized, err.Error(), code)
	default:
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, err.Error(), code)
	}
}

func failureCode(err error) string {
	if code := coreerrors.Code(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, nativecommon.ErrModulePaused):
		return "ModulePaused"
	case errors.Is(err, bank.ErrInsufficientBalance):
		return "InsufficientBalance"
	case errors.Is(err, bank.ErrInsufficientAllowance):
		return "InsufficientAllowance"
	}
	return ""
}

// paramError reports a malformed parameter object.
type paramError struct {
	message string
	err     error
}

func (e *paramError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *paramError) detail() interface{} {
	if e.err == nil {
		return nil
	}
	return e.err.Error()
}

// decodeParams unmarshals the single parameter object into dst. A request
// without params leaves dst untouched when optional is set.
func decodeParams(req *RPCRequest, dst interface{}, optional bool) error {
	if len(req.Params) == 0 && optional {
		return nil
	}
	if len(req.Params) != 1 {
		return &paramError{message: "exactly one parameter object expected"}
	}
	if err := json.Unmarshal(req.Params[0], dst); err != nil {
		return &paramError{message: "invalid parameter object", err: err}
	}
	return nil
}

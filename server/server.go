// Package server exposes the grammar analyzer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	pool "github.com/jolestar/go-commons-pool"
	verr "github.com/nihei9/ffcalc/error"
	"github.com/nihei9/ffcalc/grammar"
	spec "github.com/nihei9/ffcalc/spec/grammar"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to the core tracer.
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}

const (
	DefaultMaxConcurrent = 8
	DefaultMaxBodyBytes  = 1 << 20
	DefaultWaitTimeout   = 5 * time.Second
)

type Config struct {
	// MaxConcurrent is the number of analyses running at once.
	MaxConcurrent int

	// MaxBodyBytes limits the size of a request body.
	MaxBodyBytes int64

	// WaitTimeout is how long a request waits for a free worker before it gets 503.
	WaitTimeout time.Duration
}

// Server handles POST /calculate and GET /healthz. Analyses run on workers borrowed from a pool,
// so the number of analyses running at once is bounded.
type Server struct {
	ctx          context.Context
	workers      *pool.ObjectPool
	maxBodyBytes int64
	waitTimeout  time.Duration
	mux          *http.ServeMux
}

func New(cfg Config) *Server {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = DefaultWaitTimeout
	}

	s := &Server{
		ctx:          context.Background(),
		maxBodyBytes: cfg.MaxBodyBytes,
		waitTimeout:  cfg.WaitTimeout,
		mux:          http.NewServeMux(),
	}

	factory := pool.NewPooledObjectFactorySimple(
		func(context.Context) (interface{}, error) {
			return &worker{}, nil
		})
	config := pool.NewDefaultPoolConfig()
	config.MaxTotal = cfg.MaxConcurrent
	config.MaxIdle = cfg.MaxConcurrent
	config.BlockWhenExhausted = true
	s.workers = pool.NewObjectPool(s.ctx, factory, config)

	s.mux.HandleFunc("/calculate", s.handleCalculate)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close releases the workers. Requests arriving after Close get 503.
func (s *Server) Close() {
	s.workers.Close(s.ctx)
}

// ListenAndServe serves HTTP on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		tracer().Infof("listening on %v", addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	tracer().Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := hs.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// worker runs one analysis at a time.
type worker struct {
	served int
}

func (wk *worker) calculate(req *spec.Request) (*spec.Result, error) {
	wk.served++
	return grammar.Calculate(req)
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, &spec.ErrorResponse{
			Kind:    spec.ErrorKindBadRequest,
			Message: fmt.Sprintf("method %v is not allowed", r.Method),
		})
		return
	}

	req := &spec.Request{}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(req)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, &spec.ErrorResponse{
				Kind:    spec.ErrorKindBadRequest,
				Message: fmt.Sprintf("a request body must be at most %v bytes", tooLarge.Limit),
			})
			return
		}
		writeError(w, http.StatusBadRequest, &spec.ErrorResponse{
			Kind:    spec.ErrorKindBadRequest,
			Message: fmt.Sprintf("invalid request: %v", err),
		})
		return
	}

	tracer().Debugf("calculate: %v non-terminals, %v terminals, %v bytes of productions", len(req.NonTerminals), len(req.Terminals), len(req.Productions))

	wk, err := s.borrow(r.Context())
	if err != nil {
		tracer().Errorf("no worker is available: %v", err)
		writeError(w, http.StatusServiceUnavailable, &spec.ErrorResponse{
			Kind:    spec.ErrorKindUnavailable,
			Message: "the server is busy",
		})
		return
	}
	defer s.release(wk)

	res, err := wk.calculate(req)
	if err != nil {
		kind, ok := grammar.ErrorKind(err)
		if !ok {
			tracer().Errorf("calculate failed: %v", err)
			writeError(w, http.StatusInternalServerError, &spec.ErrorResponse{
				Kind:    spec.ErrorKindInternal,
				Message: "internal server error",
			})
			return
		}
		tracer().Debugf("rejected a grammar: %v", kind)
		writeError(w, http.StatusBadRequest, genErrorResponse(kind, err))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) borrow(ctx context.Context) (*worker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()
	obj, err := s.workers.BorrowObject(ctx)
	if err != nil {
		return nil, err
	}
	return obj.(*worker), nil
}

func (s *Server) release(wk *worker) {
	tracer().Debugf("a worker has served %v analyses", wk.served)
	err := s.workers.ReturnObject(s.ctx, wk)
	if err != nil {
		tracer().Errorf("failed to return a worker: %v", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, &spec.ErrorResponse{
			Kind:    spec.ErrorKindBadRequest,
			Message: fmt.Sprintf("method %v is not allowed", r.Method),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func genErrorResponse(kind string, err error) *spec.ErrorResponse {
	res := &spec.ErrorResponse{
		Kind: kind,
	}
	switch kind {
	case spec.ErrorKindAmbiguousStartSymbol:
		res.Message = verr.ErrAmbiguousStartSymbol.Error()
	default:
		res.Message = verr.ErrInvalidGrammar.Error()
	}

	var specErrs verr.SpecErrors
	if errors.As(err, &specErrs) {
		for _, e := range specErrs {
			res.Errors = append(res.Errors, &spec.ErrorDetail{
				Row:     e.Row,
				Col:     e.Col,
				Message: e.Cause.Error(),
				Detail:  e.Detail,
			})
		}
	}
	return res
}

func writeError(w http.ResponseWriter, status int, res *spec.ErrorResponse) {
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		tracer().Errorf("failed to marshal a response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, "%v\n", string(b))
}

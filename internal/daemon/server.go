// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package daemon runs a long-lived JSON-RPC service so editor
// frontends and the mutation gate can reuse one warm primitive table
// instead of shelling out per request. All methods are read-only
// analyses; edits stay in the CLI where the audit trail is persisted.
package daemon

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dotandev/simantix/internal/analyze"
	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/callgraph"
	"github.com/dotandev/simantix/internal/logger"
	"github.com/dotandev/simantix/internal/primitives"
	"github.com/dotandev/simantix/internal/telemetry"
	"github.com/dotandev/simantix/internal/tracer"
	"github.com/dotandev/simantix/internal/validate"
)

// Config holds daemon configuration.
type Config struct {
	Port       string
	AuthToken  string
	StepBudget int
}

// Server is the JSON-RPC daemon.
type Server struct {
	cfg    Config
	lookup primitives.Lookup
}

// NewServer builds a daemon over the given primitive table.
func NewServer(cfg Config, lookup primitives.Lookup) *Server {
	return &Server{cfg: cfg, lookup: lookup}
}

// GraphArg is the wire form of one behavior graph: the raw 12-byte
// record buffer plus the container metadata the buffer cannot carry.
type GraphArg struct {
	ID     uint16 `json:"id"`
	Raw    string `json:"raw"` // base64 instruction buffer
	Locals uint8  `json:"locals"`
	Args   uint8  `json:"args"`
}

func (a GraphArg) decode() (*bhav.BehaviorGraph, error) {
	raw, err := base64.StdEncoding.DecodeString(a.Raw)
	if err != nil {
		return nil, fmt.Errorf("decoding raw buffer: %w", err)
	}
	g, err := bhav.Decode(raw, a.ID)
	if err != nil {
		return nil, err
	}
	g.LocalCount = a.Locals
	g.ArgCount = a.Args
	return g, nil
}

// EngineService exposes the analysis surface over JSON-RPC.
type EngineService struct {
	lookup     primitives.Lookup
	stepBudget int
}

type ValidateArgs struct {
	Graph GraphArg `json:"graph"`
}

type ValidateReply struct {
	Valid       bool              `json:"valid"`
	Diagnostics []bhav.Diagnostic `json:"diagnostics"`
}

func (e *EngineService) Validate(r *http.Request, args *ValidateArgs, reply *ValidateReply) error {
	_, span := telemetry.GetTracer().Start(r.Context(), "daemon.validate")
	defer span.End()

	g, err := args.Graph.decode()
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("instructions", g.Len()))

	v := validate.New(e.lookup)
	reply.Diagnostics = v.Validate(g)
	reply.Valid = !bhav.HasErrors(reply.Diagnostics)
	return nil
}

type AnalyzeArgs struct {
	Graph GraphArg `json:"graph"`
}

type AnalyzeReply struct {
	Report *analyze.Report `json:"report"`
}

func (e *EngineService) Analyze(r *http.Request, args *AnalyzeArgs, reply *AnalyzeReply) error {
	_, span := telemetry.GetTracer().Start(r.Context(), "daemon.analyze")
	defer span.End()

	g, err := args.Graph.decode()
	if err != nil {
		return err
	}
	reply.Report = analyze.New(e.lookup).Analyze(g)
	return nil
}

type TraceArgs struct {
	Graph GraphArg `json:"graph"`
	Entry int      `json:"entry"`
}

type TraceReply struct {
	Trace *tracer.Trace `json:"trace"`
}

func (e *EngineService) Trace(r *http.Request, args *TraceArgs, reply *TraceReply) error {
	_, span := telemetry.GetTracer().Start(r.Context(), "daemon.trace")
	defer span.End()

	g, err := args.Graph.decode()
	if err != nil {
		return err
	}
	t := tracer.New(e.lookup)
	if e.stepBudget > 0 {
		t.StepBudget = e.stepBudget
	}
	trace, err := t.Trace(g, args.Entry)
	if err != nil {
		return err
	}
	reply.Trace = trace
	return nil
}

type CallGraphArgs struct {
	PackageDir string `json:"package_dir"`
}

type CallGraphReply struct {
	Edges  []callgraph.Edge `json:"edges"`
	Cycles [][]uint16       `json:"cycles"`
	Unused []uint16         `json:"unused"`
}

func (e *EngineService) CallGraph(r *http.Request, args *CallGraphArgs, reply *CallGraphReply) error {
	_, span := telemetry.GetTracer().Start(r.Context(), "daemon.callgraph")
	defer span.End()

	pkg, err := bhav.LoadPackage(args.PackageDir)
	if err != nil {
		return err
	}
	cg := callgraph.Build(pkg, e.lookup)
	reply.Edges = cg.Edges()
	reply.Cycles = cg.Cycles()
	reply.Unused = cg.Unused()
	return nil
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(&EngineService{
		lookup:     s.lookup,
		stepBudget: s.cfg.StepBudget,
	}, "Engine"); err != nil {
		return fmt.Errorf("registering service: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", s.authenticated(rpcServer))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Logger.Info("daemon listening", slog.String("port", s.cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// authenticated enforces the optional bearer token.
func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AuthToken != "" {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if token != s.cfg.AuthToken {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

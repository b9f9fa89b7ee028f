// Package service exposes an analysis.Analyzer over Connect RPC.
//
// Payloads are google.protobuf.Struct messages, so the service needs no
// generated code and speaks the Connect, gRPC and gRPC-Web protocols with
// either binary protobuf or JSON bodies:
//
//	curl -H 'Content-Type: application/json' \
//	  -d '{"spec":{"coefficients":[1,1,0,0],"field_order":2},"state":[0,0,0,1]}' \
//	  http://localhost:8080/lfsr.v1.AnalysisService/FindPeriod
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/lfsr/analysis"
	"github.com/tailored-agentic-units/lfsr/lfsr"
	"github.com/tailored-agentic-units/lfsr/orbit"
	"github.com/tailored-agentic-units/lfsr/space"
)

const ServiceName = "lfsr.v1.AnalysisService"

const (
	MapOrbitsProcedure  = "/" + ServiceName + "/MapOrbits"
	FindPeriodProcedure = "/" + ServiceName + "/FindPeriod"
	QuantityProcedure   = "/" + ServiceName + "/Quantity"
)

// Analyzer is the subset of *analysis.Analyzer the service calls.
type Analyzer interface {
	MapOrbits(ctx context.Context, spec lfsr.Spec) (*analysis.Report, error)
	FindPeriod(ctx context.Context, spec lfsr.Spec, state []uint32, alg orbit.Algorithm) (uint64, error)
	Quantity(ctx context.Context, spec lfsr.Spec, name string) (uint64, bool, error)
}

// MapOrbitsRequest is the JSON shape of a MapOrbits request.
type MapOrbitsRequest struct {
	Spec lfsr.Spec `json:"spec"`
}

// FindPeriodRequest is the JSON shape of a FindPeriod request.
type FindPeriodRequest struct {
	Spec      lfsr.Spec `json:"spec"`
	State     []uint32  `json:"state"`
	Algorithm string    `json:"algorithm,omitempty"`
}

type FindPeriodResponse struct {
	Period uint64 `json:"period"`
}

// QuantityRequest is the JSON shape of a Quantity request.
type QuantityRequest struct {
	Spec     lfsr.Spec `json:"spec"`
	Quantity string    `json:"quantity"`
}

type QuantityResponse struct {
	Value  uint64 `json:"value"`
	Cached bool   `json:"cached"`
}

var errBadRequest = errors.New("malformed request")

type server struct {
	analyzer Analyzer
}

// NewHandler returns the path prefix to mount and the handler serving all
// procedures.
func NewHandler(a Analyzer, opts ...connect.HandlerOption) (string, http.Handler) {
	s := &server{analyzer: a}

	mux := http.NewServeMux()
	mux.Handle(MapOrbitsProcedure, connect.NewUnaryHandler(MapOrbitsProcedure, s.mapOrbits, opts...))
	mux.Handle(FindPeriodProcedure, connect.NewUnaryHandler(FindPeriodProcedure, s.findPeriod, opts...))
	mux.Handle(QuantityProcedure, connect.NewUnaryHandler(QuantityProcedure, s.quantity, opts...))

	return "/" + ServiceName + "/", mux
}

func (s *server) mapOrbits(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in MapOrbitsRequest
	if err := fromStruct(req.Msg, &in); err != nil {
		return nil, toConnectError(err)
	}

	report, err := s.analyzer.MapOrbits(ctx, in.Spec)
	if err != nil {
		return nil, toConnectError(err)
	}
	return respond(report)
}

func (s *server) findPeriod(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in FindPeriodRequest
	if err := fromStruct(req.Msg, &in); err != nil {
		return nil, toConnectError(err)
	}

	alg, err := orbit.ParseAlgorithm(in.Algorithm)
	if err != nil {
		return nil, toConnectError(err)
	}

	period, err := s.analyzer.FindPeriod(ctx, in.Spec, in.State, alg)
	if err != nil {
		return nil, toConnectError(err)
	}
	return respond(FindPeriodResponse{Period: period})
}

func (s *server) quantity(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in QuantityRequest
	if err := fromStruct(req.Msg, &in); err != nil {
		return nil, toConnectError(err)
	}

	value, cached, err := s.analyzer.Quantity(ctx, in.Spec, in.Quantity)
	if err != nil {
		return nil, toConnectError(err)
	}
	return respond(QuantityResponse{Value: value, Cached: cached})
}

func respond(v any) (*connect.Response[structpb.Struct], error) {
	msg, err := toStruct(v)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// toStruct converts a JSON-encodable value to a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	msg := &structpb.Struct{}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return msg, nil
}

// fromStruct decodes a Struct into a JSON-decodable value.
func fromStruct(msg *structpb.Struct, v any) error {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, analysis.ErrStateLimit),
		errors.Is(err, space.ErrTooLarge):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, errBadRequest),
		errors.Is(err, lfsr.ErrInvalidSpec),
		errors.Is(err, lfsr.ErrInvalidState),
		errors.Is(err, orbit.ErrUnknownAlgorithm),
		errors.Is(err, analysis.ErrUnknownQuantity):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

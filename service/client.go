package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/lfsr/analysis"
	"github.com/tailored-agentic-units/lfsr/lfsr"
	"github.com/tailored-agentic-units/lfsr/orbit"
)

// Client calls a remote AnalysisService. It satisfies Analyzer.
type Client struct {
	mapOrbits  *connect.Client[structpb.Struct, structpb.Struct]
	findPeriod *connect.Client[structpb.Struct, structpb.Struct]
	quantity   *connect.Client[structpb.Struct, structpb.Struct]
}

// NewClient returns a client for the service at baseURL, for example
// "http://localhost:8080".
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		mapOrbits:  connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+MapOrbitsProcedure, opts...),
		findPeriod: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+FindPeriodProcedure, opts...),
		quantity:   connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+QuantityProcedure, opts...),
	}
}

func (c *Client) MapOrbits(ctx context.Context, spec lfsr.Spec) (*analysis.Report, error) {
	var report analysis.Report
	if err := call(ctx, c.mapOrbits, MapOrbitsRequest{Spec: spec}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) FindPeriod(ctx context.Context, spec lfsr.Spec, state []uint32, alg orbit.Algorithm) (uint64, error) {
	var out FindPeriodResponse
	req := FindPeriodRequest{Spec: spec, State: state, Algorithm: alg.String()}
	if err := call(ctx, c.findPeriod, req, &out); err != nil {
		return 0, err
	}
	return out.Period, nil
}

func (c *Client) Quantity(ctx context.Context, spec lfsr.Spec, name string) (uint64, bool, error) {
	var out QuantityResponse
	if err := call(ctx, c.quantity, QuantityRequest{Spec: spec, Quantity: name}, &out); err != nil {
		return 0, false, err
	}
	return out.Value, out.Cached, nil
}

func call(ctx context.Context, client *connect.Client[structpb.Struct, structpb.Struct], in, out any) error {
	msg, err := toStruct(in)
	if err != nil {
		return err
	}
	resp, err := client.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return err
	}
	return fromStruct(resp.Msg, out)
}

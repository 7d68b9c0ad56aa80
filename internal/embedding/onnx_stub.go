//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

var errNoCGO = errors.New("onnx embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime installed")

// ONNX is unavailable without CGO; see onnx.go for the real implementation.
type ONNX struct{}

// NewONNX always fails when built without CGO.
func NewONNX(_ string, _, _ int) (*ONNX, error) {
	return nil, errNoCGO
}

func (e *ONNX) Embed(context.Context, string) ([]float32, error)          { return nil, errNoCGO }
func (e *ONNX) EmbedBatch(context.Context, []string) ([][]float32, error) { return nil, errNoCGO }
func (e *ONNX) Dimensions() int                                           { return 0 }
func (e *ONNX) Close() error                                              { return nil }

package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, h ErrorHandler, err error) []observer.LoggedEntry {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	h.printErr(zap.New(core), err, 0)
	return logs.All()
}

func TestErrorHandler_CollaboratorError(t *testing.T) {
	vm := construct.ResourceId{Kind: construct.KindInstance, Name: "vm"}
	err := fmt.Errorf("could not resolve stack: %w", &engine.CollaboratorError{
		Resource:  vm,
		Operation: "provision",
		Err:       errors.New("quota exceeded"),
	})

	entries := observe(t, ErrorHandler{}, err)
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "[err 0] could not resolve stack: provision of instance:vm failed: quota exceeded", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "provision", fields["operation"])
	assert.Contains(t, fields, "resource")
}

func TestErrorHandler_MultiErr(t *testing.T) {
	merr := multierr.Combine(errors.New("first"), errors.New("second"))

	entries := observe(t, ErrorHandler{}, fmt.Errorf("invalid stack: %w", merr))
	require.Len(t, entries, 3)
	assert.Equal(t, "2 errors:", entries[0].Message)
	assert.Equal(t, "[err 1] first", entries[1].Message)
	assert.Equal(t, "[err 2] second", entries[2].Message)
}

func TestErrorHandler_Verbose(t *testing.T) {
	err := &construct.UnresolvedReferenceError{Refs: []construct.AttributeRef{
		construct.RefTo(construct.ResourceId{Kind: construct.KindBucket, Name: "logs"}, "arn"),
	}}

	entries := observe(t, ErrorHandler{Verbose: true}, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Unresolved reference", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)

	entries = observe(t, ErrorHandler{}, err)
	assert.Len(t, entries, 1)
}

func TestErrorHandler_PostPrintHook(t *testing.T) {
	called := false
	ErrorHandler{PostPrintHook: func() { called = true }}.PrintErr(errors.New("boom"))
	assert.True(t, called)
}

package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// TestErrorWrappingCompatibility tests Go 1.13+ error wrapping with our custom types
func TestErrorWrappingCompatibility(t *testing.T) {
	originalErr := diErrors.NewValidationError("l2_leaf_reg", "must be non-negative", -1.0)
	wrappedErr := fmt.Errorf("reading params: %w", originalErr)

	assert.True(t, errors.Is(wrappedErr, originalErr))
	assert.True(t, errors.Is(wrappedErr, diErrors.ErrInvalidParams))

	var ve *diErrors.ValidationError
	require.True(t, errors.As(wrappedErr, &ve))
	assert.Equal(t, "l2_leaf_reg", ve.Param)
	assert.Equal(t, -1.0, ve.Value)
}

func TestCombinedErrorTypes(t *testing.T) {
	stdErr := fmt.Errorf("standard error")
	customErr := diErrors.NewModelError("TestOp", "test failure", stdErr)
	wrappedErr := fmt.Errorf("operation context: %w", customErr)

	assert.True(t, errors.Is(wrappedErr, stdErr))

	var modelErr *diErrors.ModelError
	require.True(t, errors.As(wrappedErr, &modelErr))
	assert.Equal(t, stdErr, modelErr.Unwrap())
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		diErrors.ErrEmptyData,
		diErrors.ErrDimensionMismatch,
		diErrors.ErrUnknownLoss,
		diErrors.ErrUnknownLeafEstimation,
		diErrors.ErrInvalidParams,
	}
	for _, sentinel := range sentinels {
		t.Run(sentinel.Error(), func(t *testing.T) {
			err := diErrors.Wrapf(diErrors.NewModelError("TestOp", "failure", sentinel), "tree %d", 3)
			assert.True(t, errors.Is(err, sentinel))
		})
	}
}

func TestDimensionErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		axis int
		want string
	}{
		{"rows", 0, "docimportance: op: dimension mismatch on rows: expected 5, got 3"},
		{"columns", 1, "docimportance: op: dimension mismatch on columns: expected 5, got 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, diErrors.NewDimensionError("op", 5, 3, tt.axis), tt.want)
		})
	}
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer diErrors.Recover(&err, "run")
		var s []int
		_ = s[3]
		return nil
	}

	err := run()
	require.Error(t, err)

	var modelErr *diErrors.ModelError
	require.True(t, errors.As(err, &modelErr))
	assert.Equal(t, "run", modelErr.Op)
}

func TestRecoverNoPanic(t *testing.T) {
	run := func() (err error) {
		defer diErrors.Recover(&err, "run")
		return nil
	}
	assert.NoError(t, run())
}

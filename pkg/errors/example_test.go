package errors_test

import (
	"errors"
	"fmt"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
)

// Example demonstrates matching a shape mismatch through a wrapped chain.
func Example() {
	dimErr := diErrors.NewDimensionError("Evaluator.EvaluateTreeStatistics", 4, 3, 0)
	wrapped := fmt.Errorf("tree 2: %w", dimErr)

	if errors.Is(wrapped, diErrors.ErrDimensionMismatch) {
		fmt.Println("shape mismatch detected")
	}

	var de *diErrors.DimensionError
	if errors.As(wrapped, &de) {
		fmt.Printf("expected %d, got %d\n", de.Expected, de.Got)
	}

	// Output: shape mismatch detected
	// expected 4, got 3
}

// Example_configurationError demonstrates how configuration errors are reported.
func Example_configurationError() {
	err := diErrors.NewModelError("ParseParams", "leaf_estimation_method \"Exact\"",
		diErrors.ErrUnknownLeafEstimation)

	fmt.Println(err)
	fmt.Println(errors.Is(err, diErrors.ErrUnknownLeafEstimation))

	// Output: docimportance: ParseParams: leaf_estimation_method "Exact": unknown leaf estimation method
	// true
}

// Example_errorChaining demonstrates walking a chain built with Wrap.
func Example_errorChaining() {
	base := diErrors.NewValueError("LoadCSV", "row 3: expected 4 fields")
	err := diErrors.Wrap(base, "loading pool")

	fmt.Printf("Error: %v\n", err)

	var ve *diErrors.ValueError
	if diErrors.As(err, &ve) {
		fmt.Printf("op=%s\n", ve.Op)
	}

	// Output: Error: loading pool: docimportance: LoadCSV: row 3: expected 4 fields
	// op=LoadCSV
}

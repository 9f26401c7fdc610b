package utils_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-judge-api/internal/utils"
)

type sampleIngest struct {
	Language        string `json:"language" validate:"required"`
	TestcasesPassed *int   `json:"testcasesPassed" validate:"required,gte=0"`
}

func TestValidationMessageUsesJSONFieldNames(t *testing.T) {
	validate := utils.NewValidator()

	err := validate.Struct(sampleIngest{Language: "Python (3.8.1)"})
	field, message, ok := utils.ValidationMessage(err)
	require.True(t, ok)
	require.Equal(t, "testcasesPassed", field)
	require.Equal(t, "testcasesPassed is required", message)

	zero := 0
	require.NoError(t, validate.Struct(sampleIngest{Language: "Go (1.13.5)", TestcasesPassed: &zero}))

	negative := -1
	_, message, ok = utils.ValidationMessage(validate.Struct(sampleIngest{Language: "Go (1.13.5)", TestcasesPassed: &negative}))
	require.True(t, ok)
	require.Equal(t, "testcasesPassed must be at least 0", message)
}

func TestValidationMessageIgnoresOtherErrors(t *testing.T) {
	_, _, ok := utils.ValidationMessage(errors.New("boom"))
	require.False(t, ok)
}

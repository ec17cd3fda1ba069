package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrappedSentinel(t *testing.T) {
	sentinel := Domain("insufficient stock")
	err := fmt.Errorf("%w: Keyboard", sentinel)

	assert.Equal(t, KindDomain, KindOf(err))
	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, "insufficient stock", MessageOf(err))
}

func TestUnclassifiedErrorsAreInternal(t *testing.T) {
	err := errors.New("connection refused")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "an unexpected error occurred", MessageOf(err))
}

func TestValidateStructReportsFirstField(t *testing.T) {
	type request struct {
		ShopName         string `validate:"required"`
		IdentityDocument string `validate:"required"`
	}

	err := ValidateStruct(request{ShopName: "Bits"})
	require.Error(t, err)

	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "identity_document", FieldOf(err))
	assert.Equal(t, "this field is required", MessageOf(err))
}

func TestValidateStructPasses(t *testing.T) {
	type request struct {
		Rating int `validate:"min=1,max=5"`
	}

	assert.NoError(t, ValidateStruct(request{Rating: 3}))

	err := ValidateStruct(request{Rating: 9})
	require.Error(t, err)
	assert.Equal(t, "rating", FieldOf(err))
	assert.Equal(t, "must be at most 5", MessageOf(err))
}

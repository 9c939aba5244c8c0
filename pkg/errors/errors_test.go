package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeAlreadyProcessed, "transaction already completed")
	assert.Equal(t, CodeAlreadyProcessed, err.Code())
	assert.Equal(t, "transaction already completed", err.Message())
	assert.Equal(t, "ALREADY_PROCESSED: transaction already completed", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeDependency, cause, "update order status")
	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDependency, err.Code())
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	inner := New(CodeInsufficientFunds, "balance would go negative")
	wrapped := fmt.Errorf("apply delta: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeInsufficientFunds, typed.Code())
}

func TestAsReturnsNilForUntyped(t *testing.T) {
	assert.Nil(t, As(errors.New("plain")))
	assert.Nil(t, As(nil))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeNotRefundable, CodeOf(New(CodeNotRefundable, "pending order")))
}

func TestMetadataForKnownCodes(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, MetadataFor(CodeAlreadyProcessed).HTTPStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, MetadataFor(CodeInsufficientFunds).HTTPStatus)
	assert.Equal(t, http.StatusNotFound, MetadataFor(CodeNotFound).HTTPStatus)
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestDumpCollectsChain(t *testing.T) {
	inner := New(CodeValidation, "reason too short")
	wrapped := fmt.Errorf("reject order: %w", inner)

	dump := Dump(wrapped)
	assert.Equal(t, CodeValidation, dump.Code)
	assert.Len(t, dump.Chain, 2)
	assert.Equal(t, wrapped.Error(), dump.TopMessage)
}

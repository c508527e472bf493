package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	nf := NotFound("Salesperson", 7)
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsInvalidInput(nf))
	assert.Equal(t, "Salesperson with id 7 not found", nf.Error())

	ii := InvalidInput("hours per week must be positive, got %s", "0")
	assert.True(t, IsInvalidInput(ii))
	assert.False(t, IsInvalidState(ii))

	is := InvalidState("DrawdownRequest", "PENDING", "pay")
	assert.True(t, IsInvalidState(is))
	assert.Equal(t, "cannot pay DrawdownRequest in status PENDING", is.Error())
}

func TestMatchesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create request: %w", NotFound("Salesperson", 9))
	assert.True(t, IsNotFound(wrapped))
}

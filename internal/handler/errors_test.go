package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkarsten/campground-api/internal/domain"
)

func TestUnwrapMessage(t *testing.T) {
	wrapped := fmt.Errorf("service.CampgroundService.Create: %w: name is required", domain.ErrValidation)
	assert.Equal(t, "name is required", unwrapMessage(wrapped))

	deep := fmt.Errorf("outer: %w", wrapped)
	assert.Equal(t, "name is required", unwrapMessage(deep))

	assert.Equal(t, "plain failure", unwrapMessage(errors.New("plain failure")))
	assert.Equal(t, "", unwrapMessage(nil))
}

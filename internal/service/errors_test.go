package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesOnCode(t *testing.T) {
	err := errorf(ErrUnknownUsers, "users not found: %v", []uint{3, 4})
	assert.ErrorIs(t, err, ErrUnknownUsers)
	assert.NotErrorIs(t, err, ErrInvalidInput)

	wrapped := fmt.Errorf("invite: %w", err)
	assert.ErrorIs(t, wrapped, ErrUnknownUsers)
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, 409, ErrSlugTaken.Status())
	assert.Equal(t, 404, ErrProjectNotFound.Status())
	assert.Equal(t, "40003:cannot perform this action on your own account", ErrSelfAction.Error())
}

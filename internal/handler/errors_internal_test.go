package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/case-gallery/internal/domain"
)

func TestUnwrapMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{domain.ErrNotFound, "not found"},
		{fmt.Errorf("service.QueryEngine.GetOne: %w", domain.ErrNotFound), "not found"},
		{fmt.Errorf("service.QueryEngine.GetOne: %w: empty id or slug", domain.ErrValidation), "validation error: empty id or slug"},
		{fmt.Errorf("router.GenerateURL: term 4 is not a procedure: %w", domain.ErrNotFound), "term 4 is not a procedure: not found"},
		{errors.New("plain failure: detail"), "plain failure: detail"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, unwrapMessage(tc.err))
	}
}

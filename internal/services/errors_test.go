package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	cause := errors.New("boom")
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&DecodeError{Field: "f", Err: cause}, KindDecode},
		{&StorageError{Op: "put", Path: "p", Err: cause}, KindStorage},
		{fmt.Errorf("wrapped: %w", &PersistenceError{Op: "x", Err: cause}), KindPersistence},
		{&ValidationError{Field: "applicationName", Reason: "required"}, KindValidation},
		{cause, KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ErrorKind(tc.err))
	}

	assert.ErrorIs(t, &StorageError{Op: "put", Path: "p", Err: cause}, cause)
	assert.Contains(t, (&ValidationError{Field: "screenshots", Reason: "required"}).Error(), "screenshots")
}

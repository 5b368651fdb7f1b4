package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "connection",
			err:  &ConnectionError{Host: "http://localhost:8080", Err: cause},
			want: "vector index unreachable at http://localhost:8080: connection refused",
		},
		{
			name: "clear",
			err:  &ClearError{Index: "PdfResource", Err: cause},
			want: "failed to clear index PdfResource: connection refused",
		},
		{
			name: "extraction",
			err:  &ExtractionError{Filename: "a.pdf", Err: cause},
			want: "failed to extract text from a.pdf: connection refused",
		},
		{
			name: "upsert",
			err:  &UpsertError{Batch: 2, Err: cause},
			want: "upsert rejected at batch 2: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestUpsertErrorAs(t *testing.T) {
	err := error(&UpsertError{Batch: 1, Err: errors.New("rejected")})
	wrapped := errors.Join(errors.New("outer"), err)

	var upsertErr *UpsertError
	assert.True(t, errors.As(wrapped, &upsertErr))
	assert.Equal(t, 1, upsertErr.Batch)
}

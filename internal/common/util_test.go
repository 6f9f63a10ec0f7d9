package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWipeByteArray(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{name: "password", in: []byte("secret1")},
		{name: "empty", in: []byte{}},
		{name: "nil", in: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() { WipeByteArray(tt.in) })
			assert.Equal(t, make([]byte, len(tt.in)), tt.in)
		})
	}
}

package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "ten digit local number", raw: "9876543210", want: "+919876543210"},
		{name: "already E164", raw: "+919876543210", want: "+919876543210"},
		{name: "foreign E164", raw: "+14155550100", want: "+14155550100"},
		{name: "country code without plus", raw: "919876543210", want: "+919876543210"},
		{name: "spaces and dashes", raw: "98765 432-10", want: "+919876543210"},
		{name: "parentheses", raw: "(987) 654.3210", want: "+919876543210"},
		{name: "empty", raw: "", wantErr: true},
		{name: "letters", raw: "98765abcde", wantErr: true},
		{name: "too short with plus", raw: "+1234", wantErr: true},
		{name: "ambiguous length", raw: "12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw, "+91")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

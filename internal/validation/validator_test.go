package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Password string `validate:"nospaces"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	Register(v)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "Plain", input: "S3cure!pass"},
		{name: "Inner Spaces", input: "correct horse battery"},
		{name: "Blank", input: "   ", wantErr: true},
		{name: "Tabs And Newlines", input: "\t\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(sample{Password: tt.input})
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			require.Equal(t, "nospaces", verrs[0].Tag())
		})
	}
}

func TestInitialize(t *testing.T) {
	require.NotPanics(t, Initialize)
	require.NotPanics(t, Initialize)
}

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dromero/biblioteca-service/pkg/validate"
)

func TestAlphaSpace(t *testing.T) {
	t.Parallel()
	v := validate.New()

	type subject struct {
		Name string `validate:"alpha_space"`
	}

	for _, ok := range []string{"Gabriel García Márquez", "Ana", "José Emilio Pacheco"} {
		require.NoError(t, v.Struct(subject{Name: ok}), ok)
	}
	for _, bad := range []string{"", "R2D2", "name_with_underscore", "dash-name", "1984"} {
		require.Error(t, v.Struct(subject{Name: bad}), bad)
	}
}

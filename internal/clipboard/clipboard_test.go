package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLookPath(t *testing.T, installed ...string) {
	t.Helper()

	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		installed []string
		want      string
		wantErr   bool
	}{
		{name: "darwin", goos: "darwin", installed: []string{"pbcopy"}, want: "pbcopy"},
		{name: "windows", goos: "windows", installed: []string{"clip"}, want: "clip"},
		{name: "wayland preferred", goos: "linux", installed: []string{"xclip", "wl-copy"}, want: "wl-copy"},
		{name: "xsel fallback", goos: "linux", installed: []string{"xsel"}, want: "xsel"},
		{name: "nothing installed", goos: "freebsd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLookPath(t, tt.installed...)

			c, err := find(tt.goos)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.name)
		})
	}
}

func TestWrite_Unavailable(t *testing.T) {
	stubLookPath(t)

	assert.False(t, Available())
	assert.ErrorIs(t, Write("ama"), ErrUnavailable)
}

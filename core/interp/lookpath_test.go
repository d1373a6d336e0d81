package interp

import (
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookPath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bin/prog", nil, 0755))
	require.NoError(t, afero.WriteFile(fsys, "/usr/bin/prog", nil, 0755))
	require.NoError(t, afero.WriteFile(fsys, "/bin/data", nil, 0644))
	require.NoError(t, fsys.MkdirAll("/bin/dir", 0755))

	cases := map[string]struct {
		path    string
		file    string
		want    string
		wantErr error
	}{
		"first-match":    {path: "/usr/bin:/bin", file: "prog", want: "/usr/bin/prog"},
		"later-match":    {path: "/sbin:/bin", file: "prog", want: "/bin/prog"},
		"not-executable": {path: "/bin", file: "data", wantErr: ErrNotFound},
		"directory":      {path: "/bin", file: "dir", wantErr: ErrNotFound},
		"missing":        {path: "/bin", file: "nope", wantErr: ErrNotFound},
		"empty-path":     {path: "", file: "prog", wantErr: ErrNotFound},
		"slash":          {path: "", file: "/bin/prog", want: "/bin/prog"},
		"slash-data":     {path: "/bin", file: "/bin/data", wantErr: fs.ErrPermission},
		"slash-missing":  {path: "/bin", file: "/bin/nope", wantErr: fs.ErrNotExist},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			got, err := LookPath(fsys, tc.path, tc.file)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

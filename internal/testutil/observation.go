package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Observation is a fixture directory <root>/<year>/<month>/<project>.
type Observation struct {
	Year, Month string
	Project     string
	Script      Script
	VCIs        []VCI
	// ExtraScripts adds more .evla files to provoke ambiguity errors.
	ExtraScripts int
}

// DefaultObservation is a well-formed single-setup observation.
func DefaultObservation(project string) Observation {
	return Observation{
		Year:    "2021",
		Month:   "01",
		Project: project,
		Script:  DefaultScript(project),
		VCIs:    []VCI{DefaultVCI(project, 1)},
	}
}

// Label is the <year>/<month>/<project> identifier.
func (o Observation) Label() string {
	return o.Year + "/" + o.Month + "/" + o.Project
}

// Write lays the observation out under root and returns its directory.
func (o Observation) Write(t testing.TB, root string) string {
	t.Helper()
	dir := filepath.Join(root, o.Year, o.Month, o.Project)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	script := o.Script.Render()
	WriteFile(t, filepath.Join(dir, o.Project+".evla"), script)
	for i := range o.ExtraScripts {
		WriteFile(t, filepath.Join(dir, fmt.Sprintf("%s.%d.evla", o.Project, i+1)), script)
	}
	for i, v := range o.VCIs {
		WriteFile(t, filepath.Join(dir, fmt.Sprintf("%s.%02d.vci", o.Project, i)), v.Render())
	}
	return dir
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

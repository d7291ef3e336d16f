package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rubrica/internal/cmd/application"
)

func TestVersionCommand(t *testing.T) {
	app := &application.Mock{
		VersionFunc: func() string { return "v1.2.3" },
		CommitFunc:  func() string { return "abc123" },
		DateFunc:    func() string { return "2026-01-02" },
		BuiltByFunc: func() string { return "goreleaser" },
	}

	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "rubrica version v1.2.3")
	assert.Contains(t, out.String(), "commit: abc123")
	assert.Contains(t, out.String(), "built: 2026-01-02")
	assert.Contains(t, out.String(), "built by: goreleaser")
	assert.Contains(t, out.String(), "go version: go")
}

func TestVersionCommandRejectsArgs(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}

package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funcinfra/pipelinectl/internal/errkind"
)

func TestCommand_MissingFlags(t *testing.T) {
	c := Command()
	c.SetArgs([]string{"--dir", t.TempDir()})

	err := c.Execute()
	assert.ErrorIs(t, err, errkind.ErrValidation)
}

func TestCommand_MissingAccount(t *testing.T) {
	t.Setenv("AZURE_STORAGE_ACCOUNT", "")
	t.Setenv("AZURE_STORAGE_KEY", "")

	c := Command()
	c.SetArgs([]string{"--dir", t.TempDir(), "--functions-version", "4.0.1", "--pipeline-folder", "e2e"})

	err := c.Execute()
	assert.ErrorIs(t, err, errkind.ErrValidation)
}

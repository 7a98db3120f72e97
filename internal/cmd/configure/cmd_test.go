package configure

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/funcinfra/pipelinectl/internal/credentials"
)

func Test_mask(t *testing.T) {
	testcases := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "it should mask the token",
			input:  "1234567-8912-3456-7891-234567891234",
			expect: "*******************************1234",
		},
		{
			name:   "it should mask short tokens completely",
			input:  "abc",
			expect: "***",
		},
		{
			name:   "it should return empty string when input is empty",
			input:  "",
			expect: "",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			result := mask(tc.input)
			assert.Equal(t, tc.expect, result)
		})
	}
}

func Test_printCreds(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printCreds(&buf, credentials.Credentials{Username: "me", PAT: "abcdefgh", Source: "credentials file /tmp/c.yml"})

	out := buf.String()
	assert.Contains(t, out, "Username: me")
	assert.Contains(t, out, "Access token: ****efgh")
	assert.Contains(t, out, "Collected from: credentials file /tmp/c.yml")
	assert.NotContains(t, out, "abcdefgh")
}

func TestRun_Flags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEVOPS_USERNAME", "")
	t.Setenv("DEVOPS_PAT", "")

	cliUsername, cliPAT = "me", "pat"
	t.Cleanup(func() { cliUsername, cliPAT = "", "" })

	assert.NoError(t, Run())

	creds := credentials.FromFile()
	assert.Equal(t, "me", creds.Username)
	assert.Equal(t, "pat", creds.PAT)

	cliUsername, cliPAT = "me", ""
	assert.EqualError(t, Run(), "incomplete credentials provided")
}

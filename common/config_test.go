package common

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o644))
	return path
}

func resetGlobals() {
	GlobalConfig = Config{
		TimeoutSeconds: 10.0,
		WorkerCount:    10,
		TemplatePath:   "summary.tmpl",
	}
	GlobalCredentials = nil
}

func TestLoadConfigValid(t *testing.T) {
	resetGlobals()
	path := writeTempJSON(t, "config.json", `{
		"site_name": "hq",
		"seeds": ["10.0.0.1", "10.0.0.2"],
		"credentials_path": "credentials.json",
		"timeout": 10,
		"workers": 20,
		"results_dir": "/tmp/results",
		"template_path": "summary.tmpl",
		"bastion_address": "jump.example.com"
	}`)

	require.True(t, LoadConfig(path))
	assert.Equal(t, "hq", GlobalConfig.SiteName)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, GlobalConfig.Seeds)
	assert.Equal(t, 20, GlobalConfig.WorkerCount)
	assert.Equal(t, "jump.example.com", GlobalConfig.BastionAddress)
}

func TestLoadConfigRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no site name", `{"seeds":["10.0.0.1"],"timeout":10,"workers":5,"results_dir":"r","template_path":"t"}`},
		{"no seeds", `{"site_name":"hq","timeout":10,"workers":5,"results_dir":"r","template_path":"t"}`},
		{"zero timeout", `{"site_name":"hq","seeds":["10.0.0.1"],"timeout":0,"workers":5,"results_dir":"r","template_path":"t"}`},
		{"negative workers", `{"site_name":"hq","seeds":["10.0.0.1"],"timeout":10,"workers":-1,"results_dir":"r","template_path":"t"}`},
		{"no results dir", `{"site_name":"hq","seeds":["10.0.0.1"],"timeout":10,"workers":5,"results_dir":"","template_path":"t"}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resetGlobals()
			GlobalConfig.ResultsDir = ""
			GlobalConfig.TemplatePath = ""
			path := writeTempJSON(t, "config.json", test.content)
			assert.False(t, LoadConfig(path))
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	resetGlobals()
	assert.False(t, LoadConfig("/nonexistent/config.json"))
	assert.False(t, LoadConfig(""))
}

func TestLoadCredentials(t *testing.T) {
	resetGlobals()
	path := writeTempJSON(t, "credentials.json", `{
		"primary": {"username": "admin", "password": "hunter2"},
		"answer": {"username": "admin", "password": "hunter3"}
	}`)
	GlobalConfig.CredentialsPath = path
	GlobalConfig.CredentialOrder = []string{"primary", "answer"}

	require.True(t, LoadCredentials())
	assert.Len(t, GlobalCredentials, 2)
	assert.Equal(t, "hunter2", GlobalCredentials["primary"].Password)
}

func TestLoadCredentialsRejectsUnknownOrderID(t *testing.T) {
	resetGlobals()
	path := writeTempJSON(t, "credentials.json", `{"primary": {"username": "admin", "password": "x"}}`)
	GlobalConfig.CredentialsPath = path
	GlobalConfig.CredentialOrder = []string{"primary", "ghost"}

	assert.False(t, LoadCredentials())
}

func TestLoadCredentialsRejectsMissingUsername(t *testing.T) {
	resetGlobals()
	path := writeTempJSON(t, "credentials.json", `{"primary": {"password": "x"}}`)
	GlobalConfig.CredentialsPath = path

	assert.False(t, LoadCredentials())
}

func TestLoadCredentialsDefaultOrder(t *testing.T) {
	resetGlobals()
	path := writeTempJSON(t, "credentials.json", `{"only": {"username": "admin", "password": "x"}}`)
	GlobalConfig.CredentialsPath = path

	require.True(t, LoadCredentials())
	assert.Equal(t, []string{"only"}, GlobalConfig.CredentialOrder)
}

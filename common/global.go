package common

// Global non-constant variables go here.

// GlobalConfig - Global singleton.
var GlobalConfig = Config{
	CredentialsPath: "credentials.json",
	TimeoutSeconds:  10.0,
	WorkerCount:     10,
	TemplatePath:    "summary.tmpl",
}

// GlobalCredentials - List of loaded credentials, identified by some ID.
var GlobalCredentials map[string]Credential

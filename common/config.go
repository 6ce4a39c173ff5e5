package common

import (
	log "github.com/sirupsen/logrus"

	"dev.hon.one/scandium/util"
)

// AppName - Application name.
const AppName = "Scandium"

// AppVersion - Application version.
const AppVersion = "1.0.0"

// AppAuthor - Application author.
const AppAuthor = "HON95"

// PrometheusNamespace - Prometheus metrics namespace.
const PrometheusNamespace = "scandium"

// MaxAttempts - Max connection attempts per device before it is given up.
const MaxAttempts = 3

// DNSFailureSentinel - Recorded as the address of a hostname which failed to resolve.
const DNSFailureSentinel = "DNS_RESOLUTION_FAILED"

// Config - The config.
type Config struct {
	SiteName        string   `json:"site_name"`
	Seeds           []string `json:"seeds"`
	BastionAddress  string   `json:"bastion_address"` // Optional, empty means direct connections
	CredentialsPath string   `json:"credentials_path"`
	CredentialOrder []string `json:"credential_order"` // Tried in order on rejected auth
	TimeoutSeconds  float64  `json:"timeout"`
	WorkerCount     int      `json:"workers"`
	ResultsDir      string   `json:"results_dir"`
	TemplatePath    string   `json:"template_path"`
	DNSServer       string   `json:"dns_server"`    // Optional, "host:port", empty means system resolver
	HTTPEndpoint    string   `json:"http_endpoint"` // Optional, empty disables the metrics server
	InfluxDBURL     string   `json:"influxdb_url"`  // Optional, empty disables the InfluxDB mirror
	InfluxDBOrg     string   `json:"influxdb_org"`
	InfluxDBToken   string   `json:"influxdb_token"`
}

// LoadConfig - Load configuration file into the global singleton.
func LoadConfig(configPath string) bool {
	if configPath == "" {
		log.Error("Config file path missing")
		return false
	}

	log.WithFields(log.Fields{
		"config_path": configPath,
	}).Info("Loading config")

	if !util.ParseJSONFile(&GlobalConfig, configPath) {
		return false
	}

	// Validate
	if GlobalConfig.SiteName == "" {
		log.Error("Site name missing")
		return false
	}
	if len(GlobalConfig.Seeds) == 0 {
		log.Error("No seed devices configured")
		return false
	}
	if GlobalConfig.TimeoutSeconds <= 0 {
		log.Error("Non-positive connection timeout not allowed")
		return false
	}
	if GlobalConfig.WorkerCount <= 0 {
		log.Error("Non-positive worker count not allowed")
		return false
	}
	if GlobalConfig.ResultsDir == "" {
		log.Error("Results directory missing")
		return false
	}
	if GlobalConfig.TemplatePath == "" {
		log.Error("Summary template path missing")
		return false
	}

	return true
}

// LoadCredentials - Load credentials from file from config.
func LoadCredentials() bool {
	if GlobalConfig.CredentialsPath == "" {
		log.Error("Credentials config path missing")
		return false
	}

	if !util.ParseJSONFile(&GlobalCredentials, GlobalConfig.CredentialsPath) {
		return false
	}

	for credentialID, credential := range GlobalCredentials {
		if credentialID == "" || credential.Username == "" {
			log.Errorf("Invalid credential, missing fields: %v", credentialID)
			return false
		}
	}

	// Default order is every credential in map order, acceptable for a single credential
	if len(GlobalConfig.CredentialOrder) == 0 {
		for credentialID := range GlobalCredentials {
			GlobalConfig.CredentialOrder = append(GlobalConfig.CredentialOrder, credentialID)
		}
	}
	for _, credentialID := range GlobalConfig.CredentialOrder {
		if _, found := GlobalCredentials[credentialID]; !found {
			log.Errorf("Credential order references unknown credential ID: %v", credentialID)
			return false
		}
	}

	log.Infof("Loaded %v credentials: %v", len(GlobalCredentials), GlobalConfig.CredentialsPath)

	return true
}

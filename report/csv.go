package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"dev.hon.one/scandium/common"
)

// WriteCSVReports - Write the neighbor, DNS and error CSV reports to the
// results directory, named by site.
func WriteCSVReports(store *Store, resultsDir string, siteName string) bool {
	ok := writeCSVFile(resultsDir, fmt.Sprintf("%v_neighbors.csv", siteName), neighborHeader, neighborRecords(store.Neighbors()))
	ok = writeCSVFile(resultsDir, fmt.Sprintf("%v_dns.csv", siteName), dnsHeader, dnsRecords(store.DNS())) && ok
	ok = writeCSVFile(resultsDir, fmt.Sprintf("%v_errors.csv", siteName), errorHeader, errorRecords(store)) && ok
	return ok
}

var neighborHeader = []string{
	"source", "device_id", "address", "local_interface", "remote_interface",
	"platform", "capabilities", "software_version", "uptime", "serial_number",
}
var dnsHeader = []string{"hostname", "address"}
var errorHeader = []string{"device", "error"}

func neighborRecords(entries []common.NeighborEntry) [][]string {
	records := make([][]string, 0, len(entries))
	for _, entry := range entries {
		records = append(records, []string{
			entry.Source, entry.DeviceID, entry.Address, entry.LocalInterface,
			entry.RemoteInterface, entry.Platform, entry.Capabilities,
			entry.SoftwareVersion, entry.Uptime, entry.SerialNumber,
		})
	}
	return records
}

func dnsRecords(entries []common.DNSEntry) [][]string {
	records := make([][]string, 0, len(entries))
	for _, entry := range entries {
		records = append(records, []string{entry.Hostname, entry.Address})
	}
	return records
}

func errorRecords(store *Store) [][]string {
	// A host appears in at most one of the two maps
	merged := make(map[string]common.ErrorKind)
	for host, kind := range store.AuthErrors() {
		merged[host] = kind
	}
	for host, kind := range store.ConnErrors() {
		merged[host] = kind
	}
	hosts := make([]string, 0, len(merged))
	for host := range merged {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	records := make([][]string, 0, len(hosts))
	for _, host := range hosts {
		records = append(records, []string{host, string(merged[host])})
	}
	return records
}

func writeCSVFile(resultsDir string, fileName string, header []string, records [][]string) bool {
	path := filepath.Join(resultsDir, fileName)
	file, err := os.Create(path)
	if err != nil {
		log.WithError(err).Errorf("Failed to create report file: %v", path)
		return false
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		log.WithError(err).Errorf("Failed to write report file: %v", path)
		return false
	}
	if err := writer.WriteAll(records); err != nil {
		log.WithError(err).Errorf("Failed to write report file: %v", path)
		return false
	}

	log.Infof("Wrote %v records: %v", len(records), path)
	return true
}

// Package parsing converts raw show-command output into structured rows. The
// discovery engine treats rows as opaque beyond the fields it needs to drive
// further enqueueing.
package parsing

import (
	"fmt"
	"regexp"
	"strings"
)

// Row - One parsed record, keyed by field name.
type Row map[string]string

// Field names produced by the built-in templates.
const (
	FieldDeviceID        = "device_id"
	FieldAddress         = "mgmt_address"
	FieldLocalInterface  = "local_interface"
	FieldRemoteInterface = "remote_interface"
	FieldPlatform        = "platform"
	FieldCapabilities    = "capabilities"
	FieldVersion         = "version"
	FieldUptime          = "uptime"
	FieldSerial          = "serial"
)

// Template names.
const (
	TemplateCDPNeighborsDetail = "cdp_neighbors_detail"
	TemplateShowVersion        = "show_version"
)

// Parser - Converts raw command output into structured rows using a named template.
type Parser interface {
	Parse(raw string, template string) ([]Row, error)
}

var cdpRecordSeparatorRegex = regexp.MustCompile(`^-{5,}`)
var cdpDeviceIDRegex = regexp.MustCompile(`^Device ID: *(.+?) *$`)
var cdpAddressRegex = regexp.MustCompile(`^ +IP(?:v4)? address: *([^ ]+)`)
var cdpPlatformRegex = regexp.MustCompile(`^Platform: *([^,]+?) *, *Capabilities: *(.+?) *$`)
var cdpInterfaceRegex = regexp.MustCompile(`^Interface: *([^,]+?) *, *Port ID \(outgoing port\): *(.+?) *$`)
var cdpVersionHeaderRegex = regexp.MustCompile(`^Version *:`)
var versionVersionRegex = regexp.MustCompile(`Version +([^,(\s]+(?:\([^)]*\)[^,\s]*)?)`)
var versionUptimeRegex = regexp.MustCompile(`^.+ uptime is +(.+?) *$`)
var versionSerialRegex = regexp.MustCompile(`^(?:Processor board ID|System serial number *:) *(.+?) *$`)

// CiscoParser - Regex-driven parser for Cisco IOS show-command output.
type CiscoParser struct{}

// Parse - Parse raw output using the named template.
func (parser CiscoParser) Parse(raw string, template string) ([]Row, error) {
	switch template {
	case TemplateCDPNeighborsDetail:
		return parseCDPNeighborsDetail(raw), nil
	case TemplateShowVersion:
		return parseShowVersion(raw), nil
	}
	return nil, fmt.Errorf("unknown parse template: %v", template)
}

// Parse "show cdp neighbors detail" output into one row per adjacency.
// Records are separated by dashed lines; the version block is the first
// non-empty line after the "Version :" header.
func parseCDPNeighborsDetail(raw string) []Row {
	rows := make([]Row, 0)
	var current Row
	inVersionBlock := false
	flush := func() {
		if current != nil && current[FieldDeviceID] != "" {
			rows = append(rows, current)
		}
		current = nil
		inVersionBlock = false
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if cdpRecordSeparatorRegex.MatchString(line) {
			flush()
			current = make(Row)
			continue
		}
		if current == nil {
			continue
		}
		if inVersionBlock {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				if result := versionVersionRegex.FindStringSubmatch(trimmed); result != nil {
					current[FieldVersion] = result[1]
				} else {
					current[FieldVersion] = trimmed
				}
				inVersionBlock = false
			}
			continue
		}
		if result := cdpDeviceIDRegex.FindStringSubmatch(line); result != nil {
			current[FieldDeviceID] = result[1]
			continue
		}
		if result := cdpAddressRegex.FindStringSubmatch(line); result != nil {
			// First advertised address only
			if current[FieldAddress] == "" {
				current[FieldAddress] = result[1]
			}
			continue
		}
		if result := cdpPlatformRegex.FindStringSubmatch(line); result != nil {
			current[FieldPlatform] = result[1]
			current[FieldCapabilities] = result[2]
			continue
		}
		if result := cdpInterfaceRegex.FindStringSubmatch(line); result != nil {
			current[FieldLocalInterface] = result[1]
			current[FieldRemoteInterface] = result[2]
			continue
		}
		if cdpVersionHeaderRegex.MatchString(line) {
			inVersionBlock = true
		}
	}
	flush()

	return rows
}

// Parse "show version" output into a single row.
func parseShowVersion(raw string) []Row {
	row := make(Row)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if row[FieldVersion] == "" {
			if result := versionVersionRegex.FindStringSubmatch(line); result != nil {
				row[FieldVersion] = result[1]
			}
		}
		if result := versionUptimeRegex.FindStringSubmatch(line); result != nil {
			row[FieldUptime] = result[1]
		}
		if result := versionSerialRegex.FindStringSubmatch(line); result != nil {
			row[FieldSerial] = result[1]
		}
	}
	return []Row{row}
}

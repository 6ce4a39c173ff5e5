package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cdpNeighborsDetailFixture = `switch1#show cdp neighbors detail
-------------------------
Device ID: switch2.example.com
Entry address(es):
  IP address: 10.0.0.2
Platform: cisco WS-C3750X-48P,  Capabilities: Switch IGMP
Interface: GigabitEthernet1/0/1,  Port ID (outgoing port): GigabitEthernet1/0/24
Holdtime : 155 sec

Version :
Cisco IOS Software, C3750E Software (C3750E-UNIVERSALK9-M), Version 15.0(2)SE4, RELEASE SOFTWARE (fc1)

advertisement version: 2
VTP Management Domain: 'example'
Native VLAN: 1
Duplex: full
-------------------------
Device ID: ap-floor2
Entry address(es):
  IP address: 10.0.0.31
  IPv6 address: FE80::1  (link-local)
Platform: cisco AIR-CAP3702I-E-K9,  Capabilities: Trans-Bridge Source-Route-Bridge IGMP
Interface: GigabitEthernet1/0/12,  Port ID (outgoing port): GigabitEthernet0
Holdtime : 122 sec

Version :
Cisco IOS Software, C3700 Software (AP3G2-K9W8-M), Version 15.3(3)JC, RELEASE SOFTWARE (fc1)

advertisement version: 2
Duplex: full
-------------------------
Device ID: phone-nohost
Entry address(es):
Platform: Cisco IP Phone 8841,  Capabilities: Host Phone
Interface: GigabitEthernet1/0/40,  Port ID (outgoing port): Port 1
Holdtime : 178 sec

Version :
sip88xx.12-0-1SR1-1

advertisement version: 2
`

func TestParseCDPNeighborsDetail(t *testing.T) {
	rows, err := CiscoParser{}.Parse(cdpNeighborsDetailFixture, TemplateCDPNeighborsDetail)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "switch2.example.com", rows[0][FieldDeviceID])
	assert.Equal(t, "10.0.0.2", rows[0][FieldAddress])
	assert.Equal(t, "cisco WS-C3750X-48P", rows[0][FieldPlatform])
	assert.Equal(t, "Switch IGMP", rows[0][FieldCapabilities])
	assert.Equal(t, "GigabitEthernet1/0/1", rows[0][FieldLocalInterface])
	assert.Equal(t, "GigabitEthernet1/0/24", rows[0][FieldRemoteInterface])
	assert.Equal(t, "15.0(2)SE4", rows[0][FieldVersion])

	// Only the first advertised address is kept
	assert.Equal(t, "ap-floor2", rows[1][FieldDeviceID])
	assert.Equal(t, "10.0.0.31", rows[1][FieldAddress])
	assert.Equal(t, "15.3(3)JC", rows[1][FieldVersion])

	// No management address, raw version line without a Version token
	assert.Equal(t, "phone-nohost", rows[2][FieldDeviceID])
	assert.Equal(t, "", rows[2][FieldAddress])
	assert.Equal(t, "Cisco IP Phone 8841", rows[2][FieldPlatform])
	assert.Equal(t, "sip88xx.12-0-1SR1-1", rows[2][FieldVersion])
}

func TestParseCDPNeighborsDetailEmpty(t *testing.T) {
	rows, err := CiscoParser{}.Parse("switch1#show cdp neighbors detail\n\n", TemplateCDPNeighborsDetail)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

const showVersionFixture = `Cisco IOS Software, C3750E Software (C3750E-UNIVERSALK9-M), Version 15.0(2)SE4, RELEASE SOFTWARE (fc1)
Technical Support: http://www.cisco.com/techsupport
Copyright (c) 1986-2013 by Cisco Systems, Inc.
Compiled Wed 26-Jun-13 02:49 by prod_rel_team

ROM: Bootstrap program is C3750E boot loader

switch1 uptime is 5 weeks, 3 days, 1 hour, 5 minutes
System returned to ROM by power-on
System image file is "flash:/c3750e-universalk9-mz.150-2.SE4.bin"

Processor board ID FDO1628V0KP
Last reset from power-on
`

func TestParseShowVersion(t *testing.T) {
	rows, err := CiscoParser{}.Parse(showVersionFixture, TemplateShowVersion)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "15.0(2)SE4", rows[0][FieldVersion])
	assert.Equal(t, "5 weeks, 3 days, 1 hour, 5 minutes", rows[0][FieldUptime])
	assert.Equal(t, "FDO1628V0KP", rows[0][FieldSerial])
}

func TestParseUnknownTemplate(t *testing.T) {
	_, err := CiscoParser{}.Parse("", "bogus")
	assert.Error(t, err)
}

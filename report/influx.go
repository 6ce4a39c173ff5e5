package report

import (
	"context"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2api "github.com/influxdata/influxdb-client-go/v2/api"
	log "github.com/sirupsen/logrus"

	"dev.hon.one/scandium/common"
	"dev.hon.one/scandium/util"
)

// InfluxDBBucket - InfluxDB bucket.
const InfluxDBBucket = "scandium"

// Sink - Optional InfluxDB mirror of discovery results. All Store* methods
// are safe to call on a nil sink or before the client is up.
type Sink struct {
	client   influxdb2.Client
	writeAPI influxdb2api.WriteAPI
}

// StartSink - Start the InfluxDB client in the background. Returns nil if no
// InfluxDB URL is configured.
func StartSink(waitGroup *sync.WaitGroup, shutdown *util.ShutdownChannelDistributor) *Sink {
	if common.GlobalConfig.InfluxDBURL == "" {
		return nil
	}

	shutdownChannel := make(chan bool, 1)
	if !shutdown.AddListener(shutdownChannel) {
		return nil
	}
	waitGroup.Add(1)

	sink := &Sink{}
	sink.client = influxdb2.NewClient(common.GlobalConfig.InfluxDBURL, common.GlobalConfig.InfluxDBToken)
	sink.writeAPI = sink.client.WriteAPI(common.GlobalConfig.InfluxDBOrg, InfluxDBBucket)

	writeErrors := sink.writeAPI.Errors()
	go func() {
		for err := range writeErrors {
			log.WithError(err).Error("Failed to write to database")
		}
	}()

	go func() {
		<-shutdownChannel
		sink.writeAPI.Flush()
		sink.client.Close()
		log.Info("DB sink stopped")
		waitGroup.Done()
	}()

	log.Info("DB sink started: ", common.GlobalConfig.InfluxDBURL)
	return sink
}

// WaitUp - Block until the database reports healthy or the deadline passes.
func (sink *Sink) WaitUp(deadline time.Duration) bool {
	if sink == nil {
		return true
	}
	checkHealth := func() bool {
		_, err := sink.client.Health(context.Background())
		if err != nil {
			log.WithError(err).Trace("Database connection error")
			return false
		}
		return true
	}
	if checkHealth() {
		return true
	}
	log.Info("Waiting for database")
	timeoutChannel := time.After(deadline)
	for {
		select {
		case <-time.Tick(1 * time.Second):
			if checkHealth() {
				return true
			}
		case <-timeoutChannel:
			log.Error("Database did not come up in time")
			return false
		}
	}
}

// StoreNeighborEntry - Attempt to store a neighbor entry in the DB.
func (sink *Sink) StoreNeighborEntry(entry common.NeighborEntry) {
	if sink == nil || sink.writeAPI == nil {
		return
	}

	point := influxdb2.NewPointWithMeasurement("neighbor").
		AddTag("source", entry.Source).
		AddField("device_id", entry.DeviceID).
		AddField("address", entry.Address).
		AddField("local_interface", entry.LocalInterface).
		AddField("remote_interface", entry.RemoteInterface).
		AddField("platform", entry.Platform).
		AddField("capabilities", entry.Capabilities).
		AddField("software_version", entry.SoftwareVersion).
		AddField("uptime", entry.Uptime).
		AddField("serial_number", entry.SerialNumber).
		SetTime(entry.Time)
	sink.writeAPI.WritePoint(point)
}

// StoreVisitEntry - Attempt to store a visit timing entry in the DB.
func (sink *Sink) StoreVisitEntry(entry common.VisitEntry) {
	if sink == nil || sink.writeAPI == nil {
		return
	}

	point := influxdb2.NewPointWithMeasurement("visit").
		AddTag("source", entry.Source).
		AddField("duration_seconds", float64(entry.Duration)/float64(time.Second)).
		AddField("attempts", entry.Attempts).
		AddField("success", entry.Success).
		SetTime(entry.Time)
	sink.writeAPI.WritePoint(point)
}

package main

import (
	"flag"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dev.hon.one/scandium/common"
	"dev.hon.one/scandium/discovery"
	scandiumhttp "dev.hon.one/scandium/http"
	"dev.hon.one/scandium/report"
	"dev.hon.one/scandium/util"
)

func main() {
	log.Infof("Starting %v version %v by %v", common.AppName, common.AppVersion, common.AppAuthor)

	// Parse CLI args (may exit)
	debug := false
	configPath := "config.json"
	flag.BoolVar(&debug, "debug", debug, "Show debug messages.")
	flag.StringVar(&configPath, "config", configPath, "Config file path.")
	flag.Parse()
	if debug {
		log.SetLevel(log.TraceLevel)
		log.Info("Debug mode enabled")
	}

	// Load config and credentials
	if !common.LoadConfig(configPath) {
		os.Exit(1)
	}
	if !common.LoadCredentials() {
		os.Exit(1)
	}

	// Pre-flight checks, fatal before any worker is started
	summaryTemplate, err := report.LoadSummaryTemplate(common.GlobalConfig.TemplatePath)
	if err != nil {
		log.WithError(err).Errorf("Failed to load summary template: %v", common.GlobalConfig.TemplatePath)
		os.Exit(1)
	}
	if err := os.MkdirAll(common.GlobalConfig.ResultsDir, 0o755); err != nil {
		log.WithError(err).Errorf("Failed to create results directory: %v", common.GlobalConfig.ResultsDir)
		os.Exit(1)
	}

	// Run background services alongside the discovery run
	var waitGroup sync.WaitGroup
	var shutdown util.ShutdownChannelDistributor
	scandiumhttp.StartServer(&waitGroup, &shutdown)
	sink := report.StartSink(&waitGroup, &shutdown)
	if !sink.WaitUp(10 * time.Second) {
		shutdown.Shutdown()
		waitGroup.Wait()
		os.Exit(1)
	}

	// Run discovery to quiescence
	store := report.NewStore()
	startTime := time.Now()
	ok := discovery.Run(store, sink)
	duration := time.Since(startTime)

	// Stop background services
	shutdown.Shutdown()
	waitGroup.Wait()

	if !ok {
		os.Exit(1)
	}

	// Write reports
	visitedCount := len(store.Visits())
	reportsOK := report.WriteCSVReports(store, common.GlobalConfig.ResultsDir, common.GlobalConfig.SiteName)
	reportsOK = report.WriteSummary(summaryTemplate, store, common.GlobalConfig.ResultsDir,
		common.GlobalConfig.SiteName, visitedCount, duration) && reportsOK
	if !reportsOK {
		os.Exit(1)
	}
}

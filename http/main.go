// Package http serves run metrics while a discovery run is in progress.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"dev.hon.one/scandium/common"
	"dev.hon.one/scandium/discovery"
	"dev.hon.one/scandium/util"
)

// StartServer - Start the metrics HTTP server in the background. No-op if no
// HTTP endpoint is configured.
func StartServer(waitGroup *sync.WaitGroup, shutdown *util.ShutdownChannelDistributor) {
	if common.GlobalConfig.HTTPEndpoint == "" {
		return
	}

	shutdownChannel := make(chan bool, 1)
	if !shutdown.AddListener(shutdownChannel) {
		return
	}
	waitGroup.Add(1)

	// Configure
	var mainServeMux http.ServeMux
	mainServeMux.HandleFunc("/", handleOtherRequest)
	mainServeMux.HandleFunc("/metrics", handleMetricsRequest)
	server := &http.Server{
		Addr:    common.GlobalConfig.HTTPEndpoint,
		Handler: &mainServeMux,
	}

	// Run
	var shutdownContextCancel context.CancelFunc = nil
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server failed")
		}
		// Cancel shutdown timer
		if shutdownContextCancel != nil {
			shutdownContextCancel()
		}
		log.Info("HTTP server stopped")
		waitGroup.Done()
	}()

	// Shutdown
	go func() {
		<-shutdownChannel
		var shutdownContext context.Context
		shutdownContext, shutdownContextCancel = context.WithTimeout(context.Background(), 5*time.Second)
		server.Shutdown(shutdownContext)
	}()

	log.Infof("HTTP server started: %v", common.GlobalConfig.HTTPEndpoint)
}

func handleOtherRequest(response http.ResponseWriter, request *http.Request) {
	if request.URL.Path == "/" {
		fmt.Fprintf(response, "%s version %s by %s.\n", common.AppName, common.AppVersion, common.AppAuthor)
		fmt.Fprintf(response, "\nPaths:\n")
		fmt.Fprintf(response, "- Metrics: /metrics\n")
	} else {
		message := fmt.Sprintf("404 - Page not found.\n")
		http.Error(response, message, 404)
	}
}

func handleMetricsRequest(response http.ResponseWriter, request *http.Request) {
	log.WithFields(log.Fields{
		"endpoint": "metrics",
		"client":   request.RemoteAddr,
		"url":      request.URL,
	}).Trace("Request")

	// Combine process metrics and the discovery run metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	util.NewExporterMetric(registry, common.PrometheusNamespace, common.AppVersion)

	gatherers := prometheus.Gatherers{registry, discovery.MetricsRegistry}
	promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}).ServeHTTP(response, request)
}

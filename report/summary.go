package report

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	log "github.com/sirupsen/logrus"

	"dev.hon.one/scandium/common"
)

// SummaryData - Values available to the summary template.
type SummaryData struct {
	SiteName        string
	Time            time.Time
	Duration        time.Duration
	VisitedCount    int
	NeighborCount   int
	DNSFailureCount int
	AuthErrors      map[string]string
	ConnErrors      map[string]string
}

// LoadSummaryTemplate - Parse the summary template file. A missing template
// is fatal to the run and must be checked before any worker is started.
func LoadSummaryTemplate(path string) (*template.Template, error) {
	return template.ParseFiles(path)
}

// WriteSummary - Render the templated run summary to the results directory.
func WriteSummary(summaryTemplate *template.Template, store *Store, resultsDir string,
	siteName string, visitedCount int, duration time.Duration) bool {
	data := SummaryData{
		SiteName:      siteName,
		Time:          time.Now(),
		Duration:      duration.Round(time.Second),
		VisitedCount:  visitedCount,
		NeighborCount: len(store.Neighbors()),
		AuthErrors:    make(map[string]string),
		ConnErrors:    make(map[string]string),
	}
	for host, kind := range store.AuthErrors() {
		data.AuthErrors[host] = string(kind)
	}
	for host, kind := range store.ConnErrors() {
		data.ConnErrors[host] = string(kind)
	}
	for _, entry := range store.DNS() {
		if entry.Address == common.DNSFailureSentinel {
			data.DNSFailureCount++
		}
	}

	path := filepath.Join(resultsDir, fmt.Sprintf("%v_summary.txt", siteName))
	file, err := os.Create(path)
	if err != nil {
		log.WithError(err).Errorf("Failed to create summary file: %v", path)
		return false
	}
	defer file.Close()
	if err := summaryTemplate.Execute(file, data); err != nil {
		log.WithError(err).Errorf("Failed to render summary: %v", path)
		return false
	}

	log.Infof("Wrote run summary: %v", path)
	return true
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportData(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	r := Report{
		ID:          "report_1",
		GeneratedAt: at,
		Stats:       ReportStats{TotalUsers: 150, ActiveUsers: 75, SystemLoad: 7.5, UptimeHours: 12},
		Environment: "production",
		Location:    "Google Cloud Run",
	}

	data := r.Data()

	stats := data["stats"].(map[string]any)
	assert.Equal(t, "7.50%", stats["systemLoad"])
	assert.Equal(t, "12 hours", stats["uptime"])
	assert.Equal(t, "2026-02-03T04:05:06.000Z", data["generatedAt"])
	info := data["serverInfo"].(map[string]any)
	assert.Equal(t, "Google Cloud Run", info["location"])
	assert.Equal(t, data["generatedAt"], info["timestamp"])
}

func TestProcessedRecordData(t *testing.T) {
	p := ProcessedRecord{ID: 42, Title: "t", Description: "d", Priority: "urgent", ProcessedBy: "Cloud Run Server"}

	data := p.Data()

	assert.Equal(t, 42, data["id"])
	assert.Equal(t, "urgent", data["priority"])
	assert.Equal(t, "Cloud Run Server", data["processedBy"])
}

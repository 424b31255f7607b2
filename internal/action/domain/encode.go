package domain

import (
	"fmt"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
)

func (p ProcessedRecord) Data() map[string]any {
	return map[string]any{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"priority":    p.Priority,
		"createdAt":   clock.FormatISO(p.CreatedAt),
		"processedBy": p.ProcessedBy,
		"environment": p.Environment,
	}
}

func (r Report) Data() map[string]any {
	ts := clock.FormatISO(r.GeneratedAt)
	return map[string]any{
		"id":          r.ID,
		"generatedAt": ts,
		"stats": map[string]any{
			"totalUsers":  r.Stats.TotalUsers,
			"activeUsers": r.Stats.ActiveUsers,
			"systemLoad":  fmt.Sprintf("%.2f%%", r.Stats.SystemLoad),
			"uptime":      fmt.Sprintf("%d hours", r.Stats.UptimeHours),
		},
		"serverInfo": map[string]any{
			"environment": r.Environment,
			"timestamp":   ts,
			"location":    r.Location,
		},
	}
}

// Package report renders analysis results as markdown text for the CLI.
package report

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/paraflow/paraflow/internal/analytics"
	"github.com/paraflow/paraflow/internal/health"
	"github.com/paraflow/paraflow/internal/schedule"
)

// FormatPortfolio renders the area portfolio dashboard.
func FormatPortfolio(d *health.Dashboard) (string, error) {
	tmpl, err := template.New("portfolio").Parse(portfolioTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var output strings.Builder
	if err := tmpl.Execute(&output, d); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return output.String(), nil
}

const portfolioTemplate = `# Area Portfolio

> Generated at {{ .GeneratedAt.Format "2006-01-02 15:04:05 MST" }}.

## Overview

| Metric | Value |
|--------|-------|
| Total Areas | {{ .Overview.TotalAreas }} |
| Needing Attention | {{ .Overview.AreasNeedingAttention }} |
| Reviews Overdue | {{ .Overview.ReviewsOverdue }} |
| Reviews Due Soon | {{ .Overview.ReviewsDueSoon }} |
| Inactive | {{ .Overview.InactiveAreas }} |
| Low Health | {{ .Overview.LowHealthAreas }} |

## Health Distribution

| Bucket | Areas |
|--------|-------|
| Excellent (>= 0.8) | {{ .Distribution.Excellent }} |
| Good (>= 0.6) | {{ .Distribution.Good }} |
| Fair (>= 0.4) | {{ .Distribution.Fair }} |
| Poor (>= 0.2) | {{ .Distribution.Poor }} |
| Critical (< 0.2) | {{ .Distribution.Critical }} |
| Unscored | {{ .Distribution.Unscored }} |

## Alerts

{{ if .CriticalAlerts -}}
### Critical
{{ range .CriticalAlerts -}}
- [{{ .Type }}] {{ .AreaTitle }}{{ if .DaysOverdue }} ({{ .DaysOverdue }}d overdue){{ end }}
{{ end -}}
{{ end -}}
{{ if .WarningAlerts -}}
### Warning
{{ range .WarningAlerts -}}
- [{{ .Type }}] {{ .AreaTitle }}{{ if .DaysInactive }} ({{ .DaysInactive }}d inactive){{ end }}
{{ end -}}
{{ end -}}
{{ if .InfoAlerts -}}
### Info
{{ range .InfoAlerts -}}
- [{{ .Type }}] {{ .AreaTitle }}
{{ end -}}
{{ end -}}
{{ if not (or .CriticalAlerts .WarningAlerts .InfoAlerts) -}}
_No alerts._
{{ end }}
## Scheduled Maintenance (next 7 days)

{{ if .ScheduledMaintenance -}}
| Area | Review Date | In | Priority |
|------|-------------|----|----------|
{{ range .ScheduledMaintenance -}}
| {{ .AreaTitle }} | {{ .NextReviewDate.Format "2006-01-02" }} | {{ .DaysUntilDue }}d | {{ .Priority }} |
{{ end -}}
{{ else -}}
_Nothing scheduled._
{{ end }}
## Recommendations

{{ range .Recommendations -}}
- {{ . }}
{{ end }}`

// FormatSchedule renders just the critical-path schedule for a project.
func FormatSchedule(projectID string, result *schedule.Result) (string, error) {
	tmpl, err := template.New("schedule").Parse(scheduleTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := struct {
		ProjectID    string
		Schedule     *schedule.Result
		ScheduleRows []*schedule.Node
	}{ProjectID: projectID, Schedule: result, ScheduleRows: scheduleRows(result)}

	var output strings.Builder
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return output.String(), nil
}

const scheduleTemplate = `# Schedule: {{ .ProjectID }}

{{ if .Schedule -}}
Project duration: {{ .Schedule.ProjectDuration }}d, total slack: {{ .Schedule.TotalSlack }}d.
{{ if .Schedule.Cycle }}
WARNING: dependency cycle detected: {{ range $i, $id := .Schedule.Cycle }}{{ if $i }} -> {{ end }}{{ $id }}{{ end }}
{{ end }}
| Task | Duration | ES | EF | LS | LF | Slack | Critical |
|------|----------|----|----|----|----|-------|----------|
{{ range .ScheduleRows -}}
| {{ .Title }} | {{ .Duration }}d | {{ .EarliestStart }} | {{ .EarliestFinish }} | {{ .LatestStart }} | {{ .LatestFinish }} | {{ .Slack }} | {{ if .IsCritical }}yes{{ else }}-{{ end }} |
{{ end -}}
{{ else -}}
_No tasks to schedule._
{{ end }}`

// FormatProjectReport renders the project analytics plus the critical-path
// schedule.
func FormatProjectReport(r *analytics.Report) (string, error) {
	tmpl, err := template.New("project").Parse(projectTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := struct {
		*analytics.Report
		ScheduleRows []*schedule.Node
	}{Report: r, ScheduleRows: scheduleRows(r.Schedule)}

	var output strings.Builder
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return output.String(), nil
}

// scheduleRows orders nodes for display: by earliest start, then id.
func scheduleRows(result *schedule.Result) []*schedule.Node {
	if result == nil {
		return nil
	}
	rows := make([]*schedule.Node, 0, len(result.Nodes))
	for _, n := range result.Nodes {
		rows = append(rows, n)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EarliestStart != rows[j].EarliestStart {
			return rows[i].EarliestStart < rows[j].EarliestStart
		}
		return rows[i].TaskID < rows[j].TaskID
	})
	return rows
}

const projectTemplate = `# Project Report: {{ .ProjectID }}

> Generated at {{ .GeneratedAt.Format "2006-01-02 15:04:05 MST" }}.

## Metrics

| Metric | Value |
|--------|-------|
| Total Tasks | {{ .Analytics.TotalTasks }} |
| Completed | {{ .Analytics.CompletedTasks }} ({{ printf "%.1f" .Analytics.CompletionRate }}%) |
| Overdue | {{ len .Analytics.OverdueTasks }} |
| Due Soon | {{ len .Analytics.DueSoonTasks }} |
| Blocked | {{ len .Analytics.BlockedTasks }} |
| Estimated Hours | {{ printf "%.1f" .Analytics.TotalEstimatedHours }} |
| Actual Hours | {{ printf "%.1f" .Analytics.TotalActualHours }} |
| Time Variance | {{ printf "%.1f" .Analytics.TimeVariance }}% |
| Time Progress | {{ printf "%.1f" .Analytics.TimeProgress }}% |
| Velocity | {{ printf "%.2f" .Analytics.Velocity }} tasks/week |
| Health Score | {{ .Analytics.HealthScore }}/100 |

## Schedule

{{ if .Schedule -}}
Project duration: {{ .Schedule.ProjectDuration }}d, total slack: {{ .Schedule.TotalSlack }}d.
{{ if .Schedule.Cycle }}
WARNING: dependency cycle detected: {{ range $i, $id := .Schedule.Cycle }}{{ if $i }} -> {{ end }}{{ $id }}{{ end }}
{{ end }}
| Task | Duration | ES | EF | LS | LF | Slack | Critical |
|------|----------|----|----|----|----|-------|----------|
{{ range .ScheduleRows -}}
| {{ .Title }} | {{ .Duration }}d | {{ .EarliestStart }} | {{ .EarliestFinish }} | {{ .LatestStart }} | {{ .LatestFinish }} | {{ .Slack }} | {{ if .IsCritical }}yes{{ else }}-{{ end }} |
{{ end -}}
{{ else -}}
_No tasks to schedule._
{{ end }}`

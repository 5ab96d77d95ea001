package model

import "fmt"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "PLANNING"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

type AreaType string

const (
	AreaTypeResponsibility AreaType = "RESPONSIBILITY"
	AreaTypeInterest       AreaType = "INTEREST"
	AreaTypeLearning       AreaType = "LEARNING"
	AreaTypeHealth         AreaType = "HEALTH"
	AreaTypeFinance        AreaType = "FINANCE"
	AreaTypeCareer         AreaType = "CAREER"
	AreaTypePersonal       AreaType = "PERSONAL"
	AreaTypeOther          AreaType = "OTHER"
)

type ResponsibilityLevel string

const (
	ResponsibilityLow    ResponsibilityLevel = "LOW"
	ResponsibilityMedium ResponsibilityLevel = "MEDIUM"
	ResponsibilityHigh   ResponsibilityLevel = "HIGH"
)

type ReviewFrequency string

const (
	ReviewWeekly     ReviewFrequency = "WEEKLY"
	ReviewBiweekly   ReviewFrequency = "BIWEEKLY"
	ReviewMonthly    ReviewFrequency = "MONTHLY"
	ReviewQuarterly  ReviewFrequency = "QUARTERLY"
	ReviewBiannually ReviewFrequency = "BIANNUALLY"
	ReviewAnnually   ReviewFrequency = "ANNUALLY"
	ReviewCustom     ReviewFrequency = "CUSTOM"
)

var terminalTaskStatuses = map[TaskStatus]bool{
	TaskStatusCompleted: true,
	TaskStatusCancelled: true,
}

var terminalProjectStatuses = map[ProjectStatus]bool{
	ProjectStatusCompleted: true,
	ProjectStatusCancelled: true,
}

// Task status transitions: TODO ↔ IN_PROGRESS ↔ BLOCKED; IN_REVIEW can
// bounce back to IN_PROGRESS on review rejection.
var validTaskTransitions = map[TaskStatus]map[TaskStatus]bool{
	TaskStatusTodo: {
		TaskStatusInProgress: true,
		TaskStatusCancelled:  true,
	},
	TaskStatusInProgress: {
		TaskStatusTodo:      true,
		TaskStatusInReview:  true,
		TaskStatusBlocked:   true,
		TaskStatusCompleted: true,
		TaskStatusCancelled: true,
	},
	TaskStatusInReview: {
		TaskStatusInProgress: true,
		TaskStatusCompleted:  true,
		TaskStatusCancelled:  true,
	},
	TaskStatusBlocked: {
		TaskStatusTodo:       true,
		TaskStatusInProgress: true,
		TaskStatusCancelled:  true,
	},
}

var validProjectTransitions = map[ProjectStatus]map[ProjectStatus]bool{
	ProjectStatusPlanning: {
		ProjectStatusActive:    true,
		ProjectStatusCancelled: true,
	},
	ProjectStatusActive: {
		ProjectStatusOnHold:    true,
		ProjectStatusCompleted: true,
		ProjectStatusCancelled: true,
	},
	ProjectStatusOnHold: {
		ProjectStatusActive:    true,
		ProjectStatusCancelled: true,
	},
}

func IsTaskTerminal(s TaskStatus) bool {
	return terminalTaskStatuses[s]
}

func IsProjectTerminal(s ProjectStatus) bool {
	return terminalProjectStatuses[s]
}

func ValidateTaskTransition(from, to TaskStatus) error {
	if IsTaskTerminal(from) {
		return fmt.Errorf("cannot transition from terminal task status %q", from)
	}
	allowed, ok := validTaskTransitions[from]
	if !ok {
		return fmt.Errorf("unknown task status %q", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid task transition: %q → %q", from, to)
	}
	return nil
}

func ValidateProjectTransition(from, to ProjectStatus) error {
	if IsProjectTerminal(from) {
		return fmt.Errorf("cannot transition from terminal project status %q", from)
	}
	allowed, ok := validProjectTransitions[from]
	if !ok {
		return fmt.Errorf("unknown project status %q", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid project transition: %q → %q", from, to)
	}
	return nil
}

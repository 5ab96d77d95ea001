package model

// Workspace file wrappers. Every persisted YAML file carries a schema
// header so the store can validate file identity before decoding the body.

type TaskFile struct {
	SchemaVersion int    `yaml:"schema_version"`
	FileType      string `yaml:"file_type"`
	Tasks         []Task `yaml:"tasks"`
}

type ProjectFile struct {
	SchemaVersion int       `yaml:"schema_version"`
	FileType      string    `yaml:"file_type"`
	Projects      []Project `yaml:"projects"`
}

type AreaFile struct {
	SchemaVersion int    `yaml:"schema_version"`
	FileType      string `yaml:"file_type"`
	Areas         []Area `yaml:"areas"`
}

const (
	FileTypeTasks    = "workspace_tasks"
	FileTypeProjects = "workspace_projects"
	FileTypeAreas    = "workspace_areas"
)

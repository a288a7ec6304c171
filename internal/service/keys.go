package service

const (
	projectKeyPrefix    = "project:"
	jobKeyPrefix        = ":job:"
	pipelineKeyPrefix   = ":pipeline:"
	connectionKeyPrefix = "connection:"

	jobKind      = "job"
	pipelineKind = "pipeline"
)

// JobPartition is the partition holding every job of a project.
func JobPartition(projectID string) string {
	return projectKeyPrefix + projectID
}

func JobKey(projectID, jobID string) string {
	return JobPartition(projectID) + jobKeyPrefix + jobID
}

func PipelinePartition(projectID string) string {
	return projectKeyPrefix + projectID + pipelineKeyPrefix
}

func PipelineKey(projectID, pipelineID string) string {
	return PipelinePartition(projectID) + pipelineID
}

func ConnectionPartition(projectID string) string {
	return connectionKeyPrefix + projectID
}

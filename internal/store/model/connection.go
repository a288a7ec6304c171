package model

import "github.com/ibagroup-eu/vf-job-storage/pkg/definition"

// Connection is stored under connection:{projectId} keyed by Key. Last write wins.
type Connection struct {
	Key   string            `json:"key"`
	Value definition.Object `json:"value"`
}

type ConnectionList []Connection

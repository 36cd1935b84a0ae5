package entity

import "github.com/google/uuid"

// CacheBuiltMessage is published once a split's cache build finishes.
type CacheBuiltMessage struct {
	RunID    uuid.UUID `json:"run_id"`
	Split    Split     `json:"split"`
	Status   RunStatus `json:"status"`
	Total    int       `json:"total"`
	Written  int       `json:"written"`
	Skipped  int       `json:"skipped"`
	CacheDir string    `json:"cache_dir"`
}

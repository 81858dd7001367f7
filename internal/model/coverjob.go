package model

import "time"

// CoverJobStatus is the state of one asynchronous cover-generation job.
type CoverJobStatus string

const (
	// CoverJobProcessing means the upstream task was submitted and has
	// not yet resolved.
	CoverJobProcessing CoverJobStatus = "processing"

	// CoverJobSuccess means cover art was generated, downloaded, and
	// written to disk. Terminal: never restarted automatically.
	CoverJobSuccess CoverJobStatus = "success"

	// CoverJobError means the job failed; Reason carries a
	// machine-readable code. A later sync that still finds the album
	// coverless, or an explicit regenerate request, may retry.
	CoverJobError CoverJobStatus = "error"
)

// CoverJob tracks one image-generation job for one album.
//
// Lifecycle: created when a coverless album is discovered, transitions
// processing -> success|error. A regenerate request clears the album's
// cover fields and deletes the job entry, allowing a fresh job.
type CoverJob struct {
	AlbumID   string         `json:"albumId"`
	TaskID    string         `json:"taskId"`
	Status    CoverJobStatus `json:"status"`
	UpdatedAt time.Time      `json:"updatedAt"`

	// Reason is a machine-readable error code, set only on error.
	Reason string `json:"reason,omitempty"`

	// Filename is the cover file written under the covers directory,
	// set only on success.
	Filename string `json:"filename,omitempty"`
}

// Terminal reports whether the job can no longer change state on its
// own (success is final; error waits for an external retry trigger).
func (j *CoverJob) Terminal() bool {
	return j.Status == CoverJobSuccess || j.Status == CoverJobError
}

// Package imagegen is a client for the external image-generation API
// used to produce album cover art.
//
// The API is asynchronous: CreateTask submits a prompt and returns a
// task id; TaskStatus polls the task until it resolves to a result URL
// or an error. The cover orchestrator owns the polling loop; this
// package only maps one HTTP call to one typed result.
package imagegen

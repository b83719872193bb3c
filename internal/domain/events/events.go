package events

import (
	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/kelindar/event"
)

// Event types
const (
	JobUpdatedEventType   uint32 = 1
	FileUploadedEventType uint32 = 2
)

// JobUpdatedEventData carries a job after any change to it
type JobUpdatedEventData struct {
	Job *entities.Job
}

// FileUploadedEventData carries a newly stored file
type FileUploadedEventData struct {
	File *entities.File
}

// Type implements the Event interface
func (j JobUpdatedEventData) Type() uint32 {
	return JobUpdatedEventType
}

// Type implements the Event interface
func (f FileUploadedEventData) Type() uint32 {
	return FileUploadedEventType
}

// PublishJobUpdatedEvent publishes a job change
func PublishJobUpdatedEvent(job *entities.Job) {
	event.Emit(JobUpdatedEventData{Job: job})
}

// SubscribeToJobUpdatedEvents subscribes to job changes
func SubscribeToJobUpdatedEvents(handler func(data JobUpdatedEventData)) func() {
	return event.On(handler)
}

// PublishFileUploadedEvent publishes a file upload
func PublishFileUploadedEvent(file *entities.File) {
	event.Emit(FileUploadedEventData{File: file})
}

// SubscribeToFileUploadedEvents subscribes to file uploads
func SubscribeToFileUploadedEvents(handler func(data FileUploadedEventData)) func() {
	return event.On(handler)
}

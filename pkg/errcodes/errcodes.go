package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Snapshot documents.
	SnapshotNotFound  failure.ErrorCode = "SnapshotNotFound"
	MalformedSnapshot failure.ErrorCode = "MalformedSnapshot"
	MalformedSeason   failure.ErrorCode = "MalformedSeason"

	// Run coordination.
	RunInProgress failure.ErrorCode = "RunInProgress"

	// Price reconciliation.
	InvalidReconcileMode failure.ErrorCode = "InvalidReconcileMode"
	InvalidTaskPayload   failure.ErrorCode = "InvalidTaskPayload"
)

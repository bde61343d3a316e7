package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// UnauthenticatedError indicates a call without a session.
type UnauthenticatedError struct{}

func (e UnauthenticatedError) Error() string { return "authentication required" }

var ErrUnauthenticated = UnauthenticatedError{}

// ForbiddenError indicates an authenticated caller failing a role or
// ownership check.
type ForbiddenError struct {
	Reason string
}

func (e ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

func (e ForbiddenError) Is(target error) bool {
	_, ok := target.(ForbiddenError)
	if ok {
		return true
	}
	_, ok = target.(*ForbiddenError)
	return ok
}

var ErrForbidden = ForbiddenError{}

// InvalidStatusError indicates an operation that is not legal from the
// request's current status.
type InvalidStatusError struct {
	Current Status
}

func (e InvalidStatusError) Error() string {
	return fmt.Sprintf("operation not allowed in status %q", e.Current)
}

func (e InvalidStatusError) Is(target error) bool {
	_, ok := target.(InvalidStatusError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidStatusError)
	return ok
}

var ErrInvalidStatus = InvalidStatusError{}

// InvalidTransitionError indicates a target status that is not reachable
// from the current one for the acting side.
type InvalidTransitionError struct {
	From Status
	To   Status
	Side ActorSide
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %q -> %q not allowed for %s", e.From, e.To, e.Side)
}

func (e InvalidTransitionError) Is(target error) bool {
	_, ok := target.(InvalidTransitionError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidTransitionError)
	return ok
}

var ErrInvalidTransition = InvalidTransitionError{}

// TerminalStateError indicates a transition attempted out of a terminal
// status.
type TerminalStateError struct {
	Status Status
}

func (e TerminalStateError) Error() string {
	return fmt.Sprintf("request is already %s", e.Status)
}

func (e TerminalStateError) Is(target error) bool {
	_, ok := target.(TerminalStateError)
	if ok {
		return true
	}
	_, ok = target.(*TerminalStateError)
	return ok
}

var ErrTerminalState = TerminalStateError{}

// MessageRequiredError indicates an empty info-request response text.
type MessageRequiredError struct{}

func (e MessageRequiredError) Error() string { return "message text is required" }

var ErrMessageRequired = MessageRequiredError{}

// RejectionReasonRequiredError indicates a rejection attempted without a
// reason. Rejection is the only transition writing rejectionReason, and it
// never writes it empty.
type RejectionReasonRequiredError struct{}

func (e RejectionReasonRequiredError) Error() string { return "rejection reason is required" }

var ErrRejectionReasonRequired = RejectionReasonRequiredError{}

// EmptyFileError indicates a zero-byte upload.
type EmptyFileError struct {
	Name string
}

func (e EmptyFileError) Error() string {
	return fmt.Sprintf("file %q is empty", e.Name)
}

func (e EmptyFileError) Is(target error) bool {
	_, ok := target.(EmptyFileError)
	if ok {
		return true
	}
	_, ok = target.(*EmptyFileError)
	return ok
}

var ErrEmptyFile = EmptyFileError{}

// FileTooLargeError indicates an upload exceeding the size limit.
type FileTooLargeError struct {
	Name string
	Size int64
	Max  int64
}

func (e FileTooLargeError) Error() string {
	return fmt.Sprintf("file %q is %d bytes, limit is %d", e.Name, e.Size, e.Max)
}

func (e FileTooLargeError) Is(target error) bool {
	_, ok := target.(FileTooLargeError)
	if ok {
		return true
	}
	_, ok = target.(*FileTooLargeError)
	return ok
}

var ErrFileTooLarge = FileTooLargeError{}

// InvalidFileTypeError indicates a MIME type outside the allow-list.
type InvalidFileTypeError struct {
	Name string
	Mime string
}

func (e InvalidFileTypeError) Error() string {
	return fmt.Sprintf("file %q has unsupported type %q", e.Name, e.Mime)
}

func (e InvalidFileTypeError) Is(target error) bool {
	_, ok := target.(InvalidFileTypeError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidFileTypeError)
	return ok
}

var ErrInvalidFileType = InvalidFileTypeError{}

// AdopterEmailNotFoundError indicates that no contact address could be
// resolved for the info-request email.
type AdopterEmailNotFoundError struct {
	RequestID int64
}

func (e AdopterEmailNotFoundError) Error() string {
	return fmt.Sprintf("no adopter email resolvable for request %d", e.RequestID)
}

func (e AdopterEmailNotFoundError) Is(target error) bool {
	_, ok := target.(AdopterEmailNotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*AdopterEmailNotFoundError)
	return ok
}

var ErrAdopterEmailNotFound = AdopterEmailNotFoundError{}

package service

import "fmt"

// RejectReason identifies why a scan was not accepted.
type RejectReason string

const (
	RejectNothingDecoded RejectReason = "NOTHING_DECODED"
	RejectUnknownSubject RejectReason = "UNKNOWN_SUBJECT"
	RejectWrongNetwork   RejectReason = "WRONG_NETWORK"
	RejectUpdateFailed   RejectReason = "UPDATE_FAILED"
)

// Rejection messages shown to the student.
const (
	MsgNothingDecoded = "No QR code detected or scan cancelled."
	MsgUnknownSubject = "Invalid QR Code"
	MsgWrongNetwork   = "Wrong WiFi Network"
	MsgInvalidClass   = "Invalid Class ID"
	MsgUpdateFailed   = "Attendance could not be saved, try again."
)

// ScanRejectedError is the single error kind returned for every refused scan.
// Callers distinguish cases by Reason; Message is display text.
type ScanRejectedError struct {
	Reason  RejectReason
	Message string
	Err     error
}

func (e *ScanRejectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scan rejected (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("scan rejected (%s)", e.Reason)
}

func (e *ScanRejectedError) Unwrap() error { return e.Err }

func reject(reason RejectReason, msg string, err error) *ScanRejectedError {
	return &ScanRejectedError{Reason: reason, Message: msg, Err: err}
}

package models

import (
	"strings"
	"time"
)

// Class groups endpoints that share a request budget.
type Class string

const (
	// ClassAuth covers /kyc/auth, which drives an IDA authentication.
	ClassAuth Class = "auth"
	// ClassOTP covers /otp/send, which makes IDA deliver a message.
	ClassOTP Class = "otp"
)

// Limit is a sliding window budget.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of consuming from a bucket.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, zero when allowed
}

// Key builds the bucket key for a class and caller.
func Key(class Class, caller string) string {
	return "rl:" + string(class) + ":" + strings.ToLower(caller)
}

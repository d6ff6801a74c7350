package errors

import (
	"errors"
	"fmt"
)

// Category says how much of the connection a broker error takes down.
type Category int

const (
	// CategoryChannel errors close only the channel they were raised on.
	CategoryChannel Category = iota + 1
	// CategoryConnection errors close the whole connection.
	CategoryConnection
)

func (c Category) String() string {
	switch c {
	case CategoryChannel:
		return "channel"
	case CategoryConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// AMQP 0-9-1 reply codes
const (
	// ReplySuccess is used for a normal close. It is not an error.
	ReplySuccess = 200

	// Channel errors
	ContentTooLarge    = 311
	NoRoute            = 312
	NoConsumers        = 313
	AccessRefused      = 403
	NotFound           = 404
	ResourceLocked     = 405
	PreconditionFailed = 406

	// Connection errors
	ConnectionForced = 320
	InvalidPath      = 402
	FrameError       = 501
	SyntaxError      = 502
	CommandInvalid   = 503
	ChannelErrorCode = 504
	UnexpectedFrame  = 505
	ResourceError    = 506
	NotAllowed       = 530
	NotImplemented   = 540
	InternalError    = 541
)

type replyKind struct {
	category Category
	name     string
}

var replyKinds = map[int]replyKind{
	ContentTooLarge:    {CategoryChannel, "CONTENT_TOO_LARGE"},
	NoRoute:            {CategoryChannel, "NO_ROUTE"},
	NoConsumers:        {CategoryChannel, "NO_CONSUMERS"},
	AccessRefused:      {CategoryChannel, "ACCESS_REFUSED"},
	NotFound:           {CategoryChannel, "NOT_FOUND"},
	ResourceLocked:     {CategoryChannel, "RESOURCE_LOCKED"},
	PreconditionFailed: {CategoryChannel, "PRECONDITION_FAILED"},

	ConnectionForced: {CategoryConnection, "CONNECTION_FORCED"},
	InvalidPath:      {CategoryConnection, "INVALID_PATH"},
	FrameError:       {CategoryConnection, "FRAME_ERROR"},
	SyntaxError:      {CategoryConnection, "SYNTAX_ERROR"},
	CommandInvalid:   {CategoryConnection, "COMMAND_INVALID"},
	ChannelErrorCode: {CategoryConnection, "CHANNEL_ERROR"},
	UnexpectedFrame:  {CategoryConnection, "UNEXPECTED_FRAME"},
	ResourceError:    {CategoryConnection, "RESOURCE_ERROR"},
	NotAllowed:       {CategoryConnection, "NOT_ALLOWED"},
	NotImplemented:   {CategoryConnection, "NOT_IMPLEMENTED"},
	InternalError:    {CategoryConnection, "INTERNAL_ERROR"},
}

// AMQPError is an error reported by the broker through channel.close or
// connection.close.
type AMQPError struct {
	Category  Category `json:"category"`
	Code      int      `json:"code"`
	Name      string   `json:"name"`
	Message   string   `json:"message"`
	Method    string   `json:"method,omitempty"`
	ClassID   uint16   `json:"class_id,omitempty"`
	MethodID  uint16   `json:"method_id,omitempty"`
	ChannelID uint16   `json:"channel_id,omitempty"`
}

func (e *AMQPError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("AMQP %s error %d (%s) in %s: %s", e.Category, e.Code, e.Name, e.Method, e.Message)
	}
	return fmt.Sprintf("AMQP %s error %d (%s): %s", e.Category, e.Code, e.Name, e.Message)
}

// Is matches another *AMQPError with the same code, so callers can write
// errors.Is(err, &AMQPError{Code: NotFound}).
func (e *AMQPError) Is(target error) bool {
	t, ok := target.(*AMQPError)
	return ok && t.Code == e.Code
}

// UnknownReplyCodeError is returned when a close carries a reply code that
// is not part of the protocol. It is not an *AMQPError.
type UnknownReplyCodeError struct {
	Code      int
	Message   string
	ClassID   uint16
	MethodID  uint16
	ChannelID uint16
	Fatal     bool
}

func (e *UnknownReplyCodeError) Error() string {
	scope := "channel"
	if e.Fatal {
		scope = "connection"
	}
	return fmt.Sprintf("unknown AMQP reply code %d on %s close: %s", e.Code, scope, e.Message)
}

// Reply describes a broker close.
type Reply struct {
	Code      uint16
	Text      string
	ClassID   uint16
	MethodID  uint16
	ChannelID uint16
	// Method is the dotted name of ClassID/MethodID, if known.
	Method string
}

// FromReply maps a broker close to its typed error. Codes outside the
// protocol table produce an *UnknownReplyCodeError. fatal marks a
// connection.close and is only used to describe unknown codes.
func FromReply(r Reply, fatal bool) error {
	kind, ok := replyKinds[int(r.Code)]
	if !ok {
		return &UnknownReplyCodeError{
			Code:      int(r.Code),
			Message:   r.Text,
			ClassID:   r.ClassID,
			MethodID:  r.MethodID,
			ChannelID: r.ChannelID,
			Fatal:     fatal,
		}
	}
	return &AMQPError{
		Category:  kind.category,
		Code:      int(r.Code),
		Name:      kind.name,
		Message:   r.Text,
		Method:    r.Method,
		ClassID:   r.ClassID,
		MethodID:  r.MethodID,
		ChannelID: r.ChannelID,
	}
}

// CategoryOf returns the category the protocol assigns to code, or 0.
func CategoryOf(code int) Category {
	return replyKinds[code].category
}

// ReplyName returns the protocol name of code, e.g. "NOT_FOUND".
func ReplyName(code int) string {
	if kind, ok := replyKinds[code]; ok {
		return kind.name
	}
	return fmt.Sprintf("UNKNOWN_%d", code)
}

// Helper functions for common error checking

// IsConnectionError checks if an error closed the whole connection
func IsConnectionError(err error) bool {
	var amqpErr *AMQPError
	return errors.As(err, &amqpErr) && amqpErr.Category == CategoryConnection
}

// IsChannelError checks if an error closed a single channel
func IsChannelError(err error) bool {
	var amqpErr *AMQPError
	return errors.As(err, &amqpErr) && amqpErr.Category == CategoryChannel
}

// IsNotFound checks if an error indicates a resource was not found
func IsNotFound(err error) bool {
	return GetErrorCode(err) == NotFound
}

// IsPreconditionFailed checks if an error indicates a precondition failed
func IsPreconditionFailed(err error) bool {
	return GetErrorCode(err) == PreconditionFailed
}

// IsAccessRefused checks if an error indicates access was refused
func IsAccessRefused(err error) bool {
	return GetErrorCode(err) == AccessRefused
}

// GetErrorCode returns the AMQP reply code if the error is an AMQPError
func GetErrorCode(err error) int {
	var amqpErr *AMQPError
	if errors.As(err, &amqpErr) {
		return amqpErr.Code
	}
	return 0
}

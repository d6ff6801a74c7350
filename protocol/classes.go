package protocol

import "fmt"

// Class IDs
const (
	ClassConnection = 10
	ClassChannel    = 20
	ClassExchange   = 40
	ClassQueue      = 50
	ClassBasic      = 60
	ClassConfirm    = 85
	ClassTx         = 90
)

// Method IDs for connection class
const (
	ConnectionStart     = 10
	ConnectionStartOK   = 11
	ConnectionSecure    = 20
	ConnectionSecureOK  = 21
	ConnectionTune      = 30
	ConnectionTuneOK    = 31
	ConnectionOpen      = 40
	ConnectionOpenOK    = 41
	ConnectionClose     = 50
	ConnectionCloseOK   = 51
	ConnectionBlocked   = 60
	ConnectionUnblocked = 61
)

// Method IDs for channel class
const (
	ChannelOpen    = 10
	ChannelOpenOK  = 11
	ChannelFlow    = 20
	ChannelFlowOK  = 21
	ChannelClose   = 40
	ChannelCloseOK = 41
)

// Method IDs for exchange class
const (
	ExchangeDeclare   = 10 // 40.10
	ExchangeDeclareOK = 11 // 40.11
	ExchangeDelete    = 20 // 40.20
	ExchangeDeleteOK  = 21 // 40.21
	ExchangeBind      = 30 // 40.30
	ExchangeBindOK    = 31 // 40.31
	ExchangeUnbind    = 40 // 40.40
	ExchangeUnbindOK  = 51 // 40.51
)

// Method IDs for queue class
const (
	QueueDeclare   = 10 // 50.10
	QueueDeclareOK = 11 // 50.11
	QueueBind      = 20 // 50.20
	QueueBindOK    = 21 // 50.21
	QueuePurge     = 30 // 50.30
	QueuePurgeOK   = 31 // 50.31
	QueueDelete    = 40 // 50.40
	QueueDeleteOK  = 41 // 50.41
	QueueUnbind    = 50 // 50.50
	QueueUnbindOK  = 51 // 50.51
)

// Method IDs for basic class
const (
	BasicQos          = 10  // 60.10
	BasicQosOK        = 11  // 60.11
	BasicConsume      = 20  // 60.20
	BasicConsumeOK    = 21  // 60.21
	BasicCancel       = 30  // 60.30
	BasicCancelOK     = 31  // 60.31
	BasicPublish      = 40  // 60.40
	BasicReturn       = 50  // 60.50
	BasicDeliver      = 60  // 60.60
	BasicGet          = 70  // 60.70
	BasicGetOK        = 71  // 60.71
	BasicGetEmpty     = 72  // 60.72
	BasicAck          = 80  // 60.80
	BasicReject       = 90  // 60.90
	BasicRecoverAsync = 100 // 60.100
	BasicRecover      = 110 // 60.110
	BasicRecoverOK    = 111 // 60.111
	BasicNack         = 120 // 60.120
)

// Method IDs for confirm class
const (
	ConfirmSelect   = 10 // 85.10
	ConfirmSelectOK = 11 // 85.11
)

var classNames = map[uint16]string{
	ClassConnection: "connection",
	ClassChannel:    "channel",
	ClassExchange:   "exchange",
	ClassQueue:      "queue",
	ClassBasic:      "basic",
	ClassConfirm:    "confirm",
	ClassTx:         "tx",
}

// MethodKey identifies a method by class and method number.
type MethodKey struct {
	Class  uint16
	Method uint16
}

// Key returns the identifier of m.
func Key(m Method) MethodKey {
	return MethodKey{Class: m.ClassID(), Method: m.MethodID()}
}

func (id MethodKey) String() string {
	return MethodName(id.Class, id.Method)
}

// MethodName returns a dotted name like "queue.declare-ok", or the numeric
// pair when the method is not known.
func MethodName(classID, methodID uint16) string {
	if m := NewMethod(classID, methodID); m != nil {
		return m.Name()
	}
	if class, ok := classNames[classID]; ok {
		return fmt.Sprintf("%s.%d", class, methodID)
	}
	return fmt.Sprintf("%d.%d", classID, methodID)
}

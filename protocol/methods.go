package protocol

import (
	"encoding/binary"
	"fmt"
)

// Method is an AMQP method with its arguments. Serialize produces the
// argument bytes only; the class and method ids are added by the frame
// encoder.
type Method interface {
	ClassID() uint16
	MethodID() uint16
	Name() string
	Serialize() ([]byte, error)
	Deserialize(data []byte) error
}

// NewMethod returns a zero value of the method identified by the pair, or
// nil when the pair is not part of the protocol.
func NewMethod(classID, methodID uint16) Method {
	switch classID {
	case ClassConnection:
		switch methodID {
		case ConnectionStart:
			return &ConnectionStartMethod{}
		case ConnectionStartOK:
			return &ConnectionStartOKMethod{}
		case ConnectionSecure:
			return &ConnectionSecureMethod{}
		case ConnectionSecureOK:
			return &ConnectionSecureOKMethod{}
		case ConnectionTune:
			return &ConnectionTuneMethod{}
		case ConnectionTuneOK:
			return &ConnectionTuneOKMethod{}
		case ConnectionOpen:
			return &ConnectionOpenMethod{}
		case ConnectionOpenOK:
			return &ConnectionOpenOKMethod{}
		case ConnectionClose:
			return &ConnectionCloseMethod{}
		case ConnectionCloseOK:
			return &ConnectionCloseOKMethod{}
		case ConnectionBlocked:
			return &ConnectionBlockedMethod{}
		case ConnectionUnblocked:
			return &ConnectionUnblockedMethod{}
		}
	case ClassChannel:
		switch methodID {
		case ChannelOpen:
			return &ChannelOpenMethod{}
		case ChannelOpenOK:
			return &ChannelOpenOKMethod{}
		case ChannelFlow:
			return &ChannelFlowMethod{}
		case ChannelFlowOK:
			return &ChannelFlowOKMethod{}
		case ChannelClose:
			return &ChannelCloseMethod{}
		case ChannelCloseOK:
			return &ChannelCloseOKMethod{}
		}
	case ClassExchange:
		switch methodID {
		case ExchangeDeclare:
			return &ExchangeDeclareMethod{}
		case ExchangeDeclareOK:
			return &ExchangeDeclareOKMethod{}
		case ExchangeDelete:
			return &ExchangeDeleteMethod{}
		case ExchangeDeleteOK:
			return &ExchangeDeleteOKMethod{}
		case ExchangeBind:
			return &ExchangeBindMethod{}
		case ExchangeBindOK:
			return &ExchangeBindOKMethod{}
		case ExchangeUnbind:
			return &ExchangeUnbindMethod{}
		case ExchangeUnbindOK:
			return &ExchangeUnbindOKMethod{}
		}
	case ClassQueue:
		switch methodID {
		case QueueDeclare:
			return &QueueDeclareMethod{}
		case QueueDeclareOK:
			return &QueueDeclareOKMethod{}
		case QueueBind:
			return &QueueBindMethod{}
		case QueueBindOK:
			return &QueueBindOKMethod{}
		case QueuePurge:
			return &QueuePurgeMethod{}
		case QueuePurgeOK:
			return &QueuePurgeOKMethod{}
		case QueueDelete:
			return &QueueDeleteMethod{}
		case QueueDeleteOK:
			return &QueueDeleteOKMethod{}
		case QueueUnbind:
			return &QueueUnbindMethod{}
		case QueueUnbindOK:
			return &QueueUnbindOKMethod{}
		}
	case ClassBasic:
		switch methodID {
		case BasicQos:
			return &BasicQosMethod{}
		case BasicQosOK:
			return &BasicQosOKMethod{}
		case BasicConsume:
			return &BasicConsumeMethod{}
		case BasicConsumeOK:
			return &BasicConsumeOKMethod{}
		case BasicCancel:
			return &BasicCancelMethod{}
		case BasicCancelOK:
			return &BasicCancelOKMethod{}
		case BasicPublish:
			return &BasicPublishMethod{}
		case BasicReturn:
			return &BasicReturnMethod{}
		case BasicDeliver:
			return &BasicDeliverMethod{}
		case BasicGet:
			return &BasicGetMethod{}
		case BasicGetOK:
			return &BasicGetOKMethod{}
		case BasicGetEmpty:
			return &BasicGetEmptyMethod{}
		case BasicAck:
			return &BasicAckMethod{}
		case BasicReject:
			return &BasicRejectMethod{}
		case BasicRecoverAsync:
			return &BasicRecoverAsyncMethod{}
		case BasicRecover:
			return &BasicRecoverMethod{}
		case BasicRecoverOK:
			return &BasicRecoverOKMethod{}
		case BasicNack:
			return &BasicNackMethod{}
		}
	case ClassConfirm:
		switch methodID {
		case ConfirmSelect:
			return &ConfirmSelectMethod{}
		case ConfirmSelectOK:
			return &ConfirmSelectOKMethod{}
		}
	}
	return nil
}

// DecodeMethod decodes the payload of a method frame.
func DecodeMethod(payload []byte) (Method, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("method frame too short: %d bytes", len(payload))
	}
	classID := binary.BigEndian.Uint16(payload[0:2])
	methodID := binary.BigEndian.Uint16(payload[2:4])

	m := NewMethod(classID, methodID)
	if m == nil {
		return nil, fmt.Errorf("unknown method %d.%d", classID, methodID)
	}
	if err := m.Deserialize(payload[4:]); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.Name(), err)
	}
	return m, nil
}

// HasContent reports whether a method is followed by a content header and
// body frames.
func HasContent(m Method) bool {
	if m.ClassID() != ClassBasic {
		return false
	}
	switch m.MethodID() {
	case BasicPublish, BasicReturn, BasicDeliver, BasicGetOK:
		return true
	}
	return false
}

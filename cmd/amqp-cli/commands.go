package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/client"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

func (a *app) publish(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	exchange := fs.String("exchange", "", "Exchange to publish to")
	routingKey := fs.String("routing-key", "", "Routing key")
	body := fs.String("body", "", "Message body; read from -file or stdin when empty")
	file := fs.String("file", "", "Read the body from this file")
	contentType := fs.String("content-type", "", "Content type; detected from the body when empty")
	persistent := fs.Bool("persistent", false, "Mark the message persistent")
	mandatory := fs.Bool("mandatory", false, "Ask the broker to return unroutable messages")
	ttl := fs.Duration("ttl", 0, "Per-message expiration")
	count := fs.Int("count", 1, "Number of copies to publish")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload, err := readBody(*body, *file, os.Stdin)
	if err != nil {
		return err
	}

	conn, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	for i := 0; i < *count; i++ {
		msg := newMessage(payload, *contentType, *persistent, *ttl)
		err := conn.BasicPublish(*exchange, *routingKey, msg, *mandatory, false)
		if returned, ok := client.ReturnedMessage(err); ok {
			var ret *amqperrors.MessageReturnedError
			errors.As(err, &ret)
			fmt.Printf("returned %s: %d %s\n", returned.MessageID(), ret.ReplyCode, ret.ReplyText)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Printf("published %s (%d bytes, %s)\n", msg.MessageID(), len(payload), msg.ContentType())
	}
	return nil
}

func (a *app) get(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	queue := fs.String("queue", "", "Queue to read from")
	noAck := fs.Bool("no-ack", false, "Let the broker consider the message acknowledged on delivery")
	requeue := fs.Bool("requeue", false, "Reject the message back onto the queue after printing it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *queue == "" {
		return fmt.Errorf("-queue is required")
	}

	conn, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	env, ok, err := conn.BasicGet(*queue, *noAck)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("queue is empty")
		return nil
	}
	printEnvelope(os.Stdout, env)
	if *noAck {
		return nil
	}
	if *requeue {
		return conn.BasicReject(env.DeliveryInfo(), true, false)
	}
	return conn.BasicAck(env.DeliveryInfo(), false)
}

func (a *app) consume(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("consume", flag.ContinueOnError)
	queue := fs.String("queue", "", "Queue to consume from")
	tag := fs.String("tag", "", "Consumer tag; generated by the broker when empty")
	prefetch := fs.Uint("prefetch", 10, "Prefetch count")
	noAck := fs.Bool("no-ack", false, "Consume without acknowledgements")
	limit := fs.Int("limit", 0, "Stop after this many messages (0 means no limit)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *queue == "" {
		return fmt.Errorf("-queue is required")
	}

	conn, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	consumerTag, err := conn.BasicConsume(*queue, client.ConsumeOptions{
		ConsumerTag:   *tag,
		NoAck:         *noAck,
		PrefetchCount: uint16(*prefetch),
	})
	if err != nil {
		return err
	}
	a.logger.Info("Consuming", zap.String("queue", *queue), zap.String("consumer_tag", consumerTag))

	received := 0
	for ctx.Err() == nil && (*limit == 0 || received < *limit) {
		env, err := conn.BasicConsumeMessageTimeout(consumerTag, time.Second)
		if err != nil {
			var cancelled *amqperrors.ConsumerCancelledError
			if errors.As(err, &cancelled) {
				fmt.Printf("consumer %s cancelled by broker\n", cancelled.ConsumerTag)
				return nil
			}
			return err
		}
		if env == nil {
			continue
		}
		received++
		printEnvelope(os.Stdout, env)
		if !*noAck {
			if err := conn.BasicAck(env.DeliveryInfo(), false); err != nil {
				return err
			}
		}
	}
	return conn.BasicCancel(consumerTag)
}

func (a *app) declare(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("declare", flag.ContinueOnError)
	exchange := fs.String("exchange", "", "Exchange to declare")
	kind := fs.String("type", client.ExchangeDirect, "Exchange type")
	queue := fs.String("queue", "", "Queue to declare; use - for a server-named queue")
	bindKey := fs.String("bind", "", "Bind the queue to the exchange with this routing key")
	durable := fs.Bool("durable", false, "Survive broker restarts")
	autoDelete := fs.Bool("auto-delete", false, "Delete when no longer used")
	passive := fs.Bool("passive", false, "Only check that the entities exist")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *exchange == "" && *queue == "" {
		return fmt.Errorf("-exchange or -queue is required")
	}

	conn, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if *exchange != "" {
		if err := conn.ExchangeDeclare(*exchange, *kind, *passive, *durable, *autoDelete, nil); err != nil {
			return err
		}
		fmt.Printf("exchange %s (%s) ok\n", *exchange, *kind)
	}

	if *queue == "" {
		return nil
	}
	name := *queue
	if name == "-" {
		name = ""
	}
	q, err := conn.QueueDeclareWithCounts(name, *passive, *durable, name == "", *autoDelete || name == "", nil)
	if err != nil {
		return err
	}
	fmt.Printf("queue %s ok: %d messages, %d consumers\n", q.Name, q.MessageCount, q.ConsumerCount)

	if *exchange != "" && *bindKey != "" {
		if err := conn.QueueBind(q.Name, *exchange, *bindKey, nil); err != nil {
			return err
		}
		fmt.Printf("bound %s -> %s (%s)\n", *exchange, q.Name, *bindKey)
	}
	return nil
}

// newMessage builds a message with a fresh id, detecting the content type
// from the body when none is given.
func newMessage(body []byte, contentType string, persistent bool, ttl time.Duration) *client.Message {
	msg := client.NewMessage(body)
	if contentType == "" {
		contentType = mimetype.Detect(body).String()
	}
	msg.SetContentType(contentType)
	msg.SetMessageID(uuid.New().String())
	msg.SetTimestamp(time.Now())
	if persistent {
		msg.SetDeliveryMode(client.Persistent)
	}
	if ttl > 0 {
		msg.SetTTL(ttl)
	}
	return msg
}

func readBody(body, file string, stdin io.Reader) ([]byte, error) {
	switch {
	case body != "":
		return []byte(body), nil
	case file != "":
		return os.ReadFile(file)
	default:
		return io.ReadAll(stdin)
	}
}

func printEnvelope(w io.Writer, env *client.Envelope) {
	fmt.Fprintf(w, "delivery %d exchange=%q routing_key=%q redelivered=%t\n",
		env.DeliveryTag, env.Exchange, env.RoutingKey, env.Redelivered)
	msg := env.Message
	if msg.HasMessageID() {
		fmt.Fprintf(w, "  message-id: %s\n", msg.MessageID())
	}
	if msg.HasContentType() {
		fmt.Fprintf(w, "  content-type: %s\n", msg.ContentType())
	}
	for k, v := range msg.Headers() {
		fmt.Fprintf(w, "  header %s: %v\n", k, v)
	}
	if isText(msg.ContentType()) {
		fmt.Fprintf(w, "  %s\n", msg.Body)
	} else {
		fmt.Fprintf(w, "  <%d bytes>\n", len(msg.Body))
	}
}

func isText(contentType string) bool {
	return strings.HasPrefix(contentType, "text/") ||
		strings.HasPrefix(contentType, "application/json") ||
		contentType == ""
}

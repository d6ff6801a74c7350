package main

import (
	"context"
	"flag"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/maxpert/amqp-go-client/client"
)

type perfResult struct {
	published atomic.Int64
	consumed  atomic.Int64
	bytes     atomic.Int64
}

// perf drives producers and consumers, each on its own connection since a
// Connection must not be shared between goroutines.
func (a *app) perf(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("perf", flag.ContinueOnError)
	queue := fs.String("queue", "amqp-cli.perf", "Queue used for the run")
	producers := fs.Int("producers", 2, "Publishing connections")
	consumers := fs.Int("consumers", 2, "Consuming connections")
	messages := fs.Int("messages", 1000, "Messages per producer")
	size := fs.Int("size", 256, "Body size in bytes")
	prefetch := fs.Uint("prefetch", 100, "Consumer prefetch count")
	if err := fs.Parse(args); err != nil {
		return err
	}

	setup, err := a.connect(ctx)
	if err != nil {
		return err
	}
	if _, err := setup.QueueDeclare(*queue, false, false, false, false, nil); err != nil {
		setup.Close()
		return err
	}
	if _, err := setup.QueuePurge(*queue); err != nil {
		setup.Close()
		return err
	}
	setup.Close()

	body := make([]byte, *size)
	for i := range body {
		body[i] = byte('a' + i%26)
	}

	total := int64(*producers * *messages)
	res := &perfResult{}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for p := 0; p < *producers; p++ {
		g.Go(func() error {
			return a.produce(gctx, *queue, body, *messages, res)
		})
	}
	for c := 0; c < *consumers; c++ {
		g.Go(func() error {
			return a.drain(gctx, *queue, uint16(*prefetch), total, res)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	fmt.Printf("published %d, consumed %d, %d bytes in %s\n",
		res.published.Load(), res.consumed.Load(), res.bytes.Load(), elapsed.Round(time.Millisecond))
	if secs := elapsed.Seconds(); secs > 0 {
		fmt.Printf("%.0f msg/s published, %.0f msg/s consumed\n",
			float64(res.published.Load())/secs, float64(res.consumed.Load())/secs)
	}
	return nil
}

func (a *app) produce(ctx context.Context, queue string, body []byte, n int, res *perfResult) error {
	conn, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.BasicPublish("", queue, newMessage(body, "application/octet-stream", false, 0), false, false); err != nil {
			return err
		}
		res.published.Add(1)
		res.bytes.Add(int64(len(body)))
	}
	return nil
}

// drain consumes until every published message has been seen by some
// consumer or the run is cancelled.
func (a *app) drain(ctx context.Context, queue string, prefetch uint16, total int64, res *perfResult) error {
	conn, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tag, err := conn.BasicConsume(queue, client.ConsumeOptions{PrefetchCount: prefetch})
	if err != nil {
		return err
	}

	for res.consumed.Load() < total {
		if err := ctx.Err(); err != nil {
			return err
		}
		env, err := conn.BasicConsumeMessageTimeout(tag, 200*time.Millisecond)
		if err != nil {
			return err
		}
		if env == nil {
			continue
		}
		if err := conn.BasicAck(env.DeliveryInfo(), false); err != nil {
			return err
		}
		res.consumed.Add(1)
	}
	a.logger.Debug("Consumer done", zap.String("consumer_tag", tag))
	return conn.BasicCancel(tag)
}

package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/altera-oes/backend/internal/logging"
)

// ContactConsumer listens to the contact.received queue and appends each
// message to <Dir>/contact.log in a single-line, human-friendly format.
type ContactConsumer struct {
    URL string
    Dir string
    Log logging.Logger
}

// Run consumes until ctx is cancelled. See consume for the retry policy.
func (c *ContactConsumer) Run(ctx context.Context) error {
    return consume(ctx, c.URL, ContactReceivedQueue, c.Log.With("consumer", "contact"), c.handleMessage)
}

func (c *ContactConsumer) handleMessage(body []byte) error {
    var ev ContactReceivedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    // %q keeps multi-line messages on one record line
    return appendLine(c.Dir, "contact.log", fmt.Sprintf(
        "[%s] Contact received | contact_id=%d | name=%q | email=%q | message=%q\n",
        ev.ReceivedAt, ev.ContactID, ev.Name, ev.Email, ev.Message))
}

// CommentConsumer drains the comment.created queue into <Dir>/comment.log.
type CommentConsumer struct {
    URL string
    Dir string
    Log logging.Logger
}

// Run consumes until ctx is cancelled.
func (c *CommentConsumer) Run(ctx context.Context) error {
    return consume(ctx, c.URL, CommentCreatedQueue, c.Log.With("consumer", "comment"), c.handleMessage)
}

func (c *CommentConsumer) handleMessage(body []byte) error {
    var ev CommentCreatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    return appendLine(c.Dir, "comment.log", fmt.Sprintf(
        "[%s] Comment created | comment_id=%d | user_id=%d | email=%q | content=%q\n",
        ev.CreatedAt, ev.CommentID, ev.UserID, ev.Email, ev.Content))
}

// consume dials the broker and feeds every delivery of queue to handle
// until ctx is cancelled.  Connection failures are retried with exponential
// backoff capped at 30s; a message that cannot be handled is rejected
// without requeue so a poison message cannot loop forever.
func consume(ctx context.Context, url, queue string, log logging.Logger, handle func([]byte) error) error {
    backoff := time.Second
    for {
        conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
        if err != nil {
            log.Warn(ctx, "dial failed", "err", err, "retry_in", backoff.String())
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, queue, log, handle)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn(ctx, "consume loop ended; reconnecting", "err", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, log logging.Logger, handle func([]byte) error) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn(ctx, "set QoS failed", "err", err)
    }
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handle(d.Body); err != nil {
            log.Error(ctx, "handle message failed", "queue", queue, "err", err)
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func appendLine(dir, name, line string) error {
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", dir, err)
    }
    f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

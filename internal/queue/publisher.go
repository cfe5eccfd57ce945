package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/altera-oes/backend/internal/logging"
)

const (
    // dialTimeout bounds the broker handshake.
    dialTimeout = 2 * time.Second
    // sendTimeout bounds one publish on an open channel.
    sendTimeout = 5 * time.Second
    // backlogSize is how many events may wait for the sender loop.
    backlogSize = 256
)

// ErrBacklogFull is returned when the sender loop is not keeping up.
var ErrBacklogFull = errors.New("rabbitmq: publish backlog full")

type envelope struct {
    queue string
    body  []byte
}

// Publisher sends domain events to RabbitMQ.  Publish calls only enqueue;
// Run owns the single long-lived connection and does the network work, so
// a slow broker never holds up an HTTP request.  A Publisher with an empty
// URL is disabled and every publish is a successful no-op.
type Publisher struct {
    url     string
    log     logging.Logger
    backlog chan envelope

    conn     *amqp.Connection
    ch       *amqp.Channel
    declared map[string]bool
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log logging.Logger) *Publisher {
    return &Publisher{
        url:     url,
        log:     log.With("component", "publisher"),
        backlog: make(chan envelope, backlogSize),
    }
}

// Enabled reports whether events are actually sent.
func (p *Publisher) Enabled() bool { return p != nil && p.url != "" }

// PublishContactReceived queues ev for the contact.received queue.
func (p *Publisher) PublishContactReceived(_ context.Context, ev ContactReceivedEvent) error {
    return p.enqueue(ContactReceivedQueue, ev)
}

// PublishCommentCreated queues ev for the comment.created queue.
func (p *Publisher) PublishCommentCreated(_ context.Context, ev CommentCreatedEvent) error {
    return p.enqueue(CommentCreatedQueue, ev)
}

func (p *Publisher) enqueue(queue string, event any) error {
    if !p.Enabled() {
        return nil
    }
    body, err := json.Marshal(event)
    if err != nil {
        return fmt.Errorf("rabbitmq: marshal event: %w", err)
    }
    select {
    case p.backlog <- envelope{queue: queue, body: body}:
        return nil
    default:
        return ErrBacklogFull
    }
}

// Run sends queued events until ctx is cancelled. A failed send is logged,
// the connection is dropped and redialled for the next event.
func (p *Publisher) Run(ctx context.Context) error {
    defer p.reset()
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case env := <-p.backlog:
            sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
            err := p.send(sendCtx, env)
            cancel()
            if err != nil {
                p.log.Warn(ctx, "event dropped", "queue", env.queue, "err", err)
                p.reset()
            }
        }
    }
}

func (p *Publisher) send(ctx context.Context, env envelope) error {
    if p.ch == nil || p.ch.IsClosed() {
        if err := p.connect(); err != nil {
            return err
        }
    }
    if !p.declared[env.queue] {
        // durable so messages survive broker restarts
        if _, err := p.ch.QueueDeclare(env.queue, true, false, false, false, nil); err != nil {
            return fmt.Errorf("rabbitmq: queue declare: %w", err)
        }
        p.declared[env.queue] = true
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         env.body,
    }
    // default exchange, routing key = queue name
    if err := p.ch.PublishWithContext(ctx, "", env.queue, false, false, pub); err != nil {
        return fmt.Errorf("rabbitmq: publish: %w", err)
    }
    return nil
}

func (p *Publisher) connect() error {
    p.reset()
    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
    if err != nil {
        return fmt.Errorf("rabbitmq: dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return fmt.Errorf("rabbitmq: channel open: %w", err)
    }
    p.conn, p.ch, p.declared = conn, ch, map[string]bool{}
    return nil
}

func (p *Publisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}

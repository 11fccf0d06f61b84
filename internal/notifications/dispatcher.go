package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"

	"neighborly/internal/middleware"
	"neighborly/internal/models"
	"neighborly/internal/observability"
	"neighborly/internal/repository"
)

const previewRunes = 100

// DispatchReport summarizes one fan-out batch.
type DispatchReport struct {
	BatchID string
	// Attempted counts messages handed to the gateway; skipped recipients
	// are not attempts.
	Attempted int
	Skipped   int
	Delivered int
	Failed    int
	// FailedChunks counts chunks whose provider call errored outright.
	FailedChunks int
}

// Dispatcher fans creation notices out to building residents.
type Dispatcher struct {
	userRepo  repository.UserRepository
	gateway   Gateway
	notifier  *Notifier
	chunkSize int
	log       *slog.Logger
}

// NewDispatcher creates a Dispatcher. notifier may be nil when no pub/sub
// backend is configured.
func NewDispatcher(userRepo repository.UserRepository, gateway Gateway, notifier *Notifier, chunkSize int) *Dispatcher {
	return &Dispatcher{
		userRepo:  userRepo,
		gateway:   gateway,
		notifier:  notifier,
		chunkSize: chunkSize,
		log:       middleware.Logger.With(slog.String("component", "dispatcher")),
	}
}

// DispatchCreationNotice notifies every resident of the author's building
// about new content, except the author and residents who muted the content's
// category. Recipients are resolved once, at dispatch time; a failing chunk
// never blocks the remaining chunks.
func (d *Dispatcher) DispatchCreationNotice(ctx context.Context, content models.ContentItem, author *models.User) (*DispatchReport, error) {
	report := &DispatchReport{BatchID: uuid.NewString()}
	observability.PushDispatches.Inc()

	recipients, err := d.userRepo.ListRecipients(ctx, author.Building, author.ID)
	if err != nil {
		return report, err
	}

	title, body := d.renderNotice(content, author)
	data := map[string]any{
		"contentId": strconv.FormatUint(uint64(d.contentID(content)), 10),
		"category":  string(content.Category()),
		"type":      string(content.Kind),
	}

	var messages []PushMessage
	for _, r := range recipients {
		if r.HasMuted(content.Category()) || !d.gateway.IsValidAddress(r.PushToken) {
			report.Skipped++
			observability.PushMessages.WithLabelValues("skipped").Inc()
			continue
		}
		messages = append(messages, PushMessage{
			To:    r.PushToken,
			Title: title,
			Body:  body,
			Data:  data,
			Sound: "default",
		})
	}
	report.Attempted = len(messages)

	for i, chunk := range Chunk(messages, d.chunkSize) {
		tickets, err := d.gateway.Send(ctx, chunk)
		if err != nil {
			report.Failed += len(chunk)
			report.FailedChunks++
			observability.PushChunkFailures.Inc()
			observability.PushMessages.WithLabelValues("failed").Add(float64(len(chunk)))
			d.log.ErrorContext(ctx, "push chunk failed",
				slog.String("batch_id", report.BatchID),
				slog.Int("chunk", i),
				slog.Int("size", len(chunk)),
				slog.Any("error", err))
			continue
		}
		for j, t := range tickets {
			if t.Status == "ok" {
				report.Delivered++
				observability.PushMessages.WithLabelValues("delivered").Inc()
				continue
			}
			report.Failed++
			observability.PushMessages.WithLabelValues("failed").Inc()
			d.log.WarnContext(ctx, "push message rejected",
				slog.String("batch_id", report.BatchID),
				slog.Int("chunk", i),
				slog.Int("index", j),
				slog.String("detail", t.Message))
		}
		// Provider may return fewer tickets than messages on partial errors.
		if len(tickets) < len(chunk) {
			missing := len(chunk) - len(tickets)
			report.Failed += missing
			observability.PushMessages.WithLabelValues("failed").Add(float64(missing))
		}
	}

	if d.notifier != nil {
		if err := d.notifier.PublishFeedEvent(ctx, author.Building, content); err != nil {
			d.log.WarnContext(ctx, "feed event publish failed",
				slog.String("batch_id", report.BatchID),
				slog.Any("error", err))
		}
	}

	d.log.InfoContext(ctx, "creation notice dispatched",
		slog.String("batch_id", report.BatchID),
		slog.String("building", author.Building),
		slog.Int("attempted", report.Attempted),
		slog.Int("skipped", report.Skipped),
		slog.Int("delivered", report.Delivered),
		slog.Int("failed", report.Failed))

	return report, nil
}

// DispatchAsync runs the fan-out on a detached goroutine so content creation
// returns immediately. The dispatch gets its own deadline; it must not die
// with the request context.
func (d *Dispatcher) DispatchAsync(content models.ContentItem, author *models.User) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("panic in dispatch",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := d.DispatchCreationNotice(ctx, content, author); err != nil {
			d.log.ErrorContext(ctx, "dispatch failed", slog.Any("error", err))
		}
	}()
}

func (d *Dispatcher) renderNotice(content models.ContentItem, author *models.User) (title, body string) {
	switch content.Kind {
	case models.KindPoll:
		title = fmt.Sprintf("New poll in %s", author.Building)
		body = fmt.Sprintf("%s: %s", author.Name, content.Poll.Question)
	default:
		title = fmt.Sprintf("New post in %s", author.Building)
		body = preview(content.Post.Text)
	}
	return title, body
}

func (d *Dispatcher) contentID(content models.ContentItem) uint {
	if content.Kind == models.KindPoll {
		return content.Poll.ID
	}
	return content.Post.ID
}

// preview truncates text to a notification-sized excerpt without splitting
// a multi-byte character.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}

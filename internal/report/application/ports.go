package application

import (
	"context"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/settings"
	"github.com/dmehra2102/Restaurant-POS/pkg/workpool"
)

type OrderSource interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
}

type MailSettings interface {
	Mail(ctx context.Context) (settings.Mail, error)
}

type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
}

// Mailer delivers one message. The credential is passed per call because
// the admin can change it at any time.
type Mailer interface {
	Send(ctx context.Context, apiKey string, m Message) error
}

type Submitter interface {
	Submit(job workpool.Job) error
}

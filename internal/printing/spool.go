package printing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Printer interface {
	Print(ctx context.Context, t Ticket) error
	Void(ctx context.Context, orderID int64, slip string) error
}

// Spool writes tickets as text files, one directory per station, for the
// station printers' drivers to pick up.
type Spool struct {
	dir string
}

func NewSpool(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{dir: dir}, nil
}

func (s *Spool) Print(_ context.Context, t Ticket) error {
	name := fmt.Sprintf("%03d-%d.txt", t.DailySeq, t.OrderID)
	return s.write(filepath.Join(s.dir, stationDir(t.Station)), name, t.Render())
}

func (s *Spool) Void(_ context.Context, orderID int64, slip string) error {
	return s.write(filepath.Join(s.dir, "void"), fmt.Sprintf("%d.txt", orderID), slip)
}

// write goes through a temp file so a printer driver never sees half a ticket.
func (s *Spool) write(dir, name, body string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".ticket-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

func stationDir(station string) string {
	station = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '.' {
			return '_'
		}
		return r
	}, station)
	if station == "" {
		return "_"
	}
	return station
}

package dbprobe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var ErrNotReady = errors.New("database not ready")

// OpenFunc opens a database handle without connecting.
type OpenFunc func(driverName, dsn string) (*sqlx.DB, error)

// Prober pings a database until it answers.
type Prober struct {
	Open        OpenFunc
	Timeout     time.Duration
	Interval    time.Duration
	MaxInterval time.Duration
	log         logrus.FieldLogger
}

func NewProber(log logrus.FieldLogger) *Prober {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Prober{
		Open:        sqlx.Open,
		Timeout:     30 * time.Second,
		Interval:    500 * time.Millisecond,
		MaxInterval: 5 * time.Second,
		log:         log,
	}
}

// Wait pings target until it succeeds, the timeout elapses or ctx is done.
// Authentication and missing-database errors end the wait immediately since
// retrying cannot fix them. It returns the number of attempts made.
func (p *Prober) Wait(ctx context.Context, target Target) (int, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	db, err := p.Open("postgres", target.DSN())
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", target, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	log := p.log.WithField("target", target.String())
	delay := p.Interval
	attempts := 0
	for {
		attempts++
		err := db.PingContext(ctx)
		if err == nil {
			log.WithField("attempts", attempts).Debug("database is ready")
			return attempts, nil
		}
		if permanent(err) {
			return attempts, fmt.Errorf("%s rejected the connection: %w", target, err)
		}
		log.WithError(err).WithField("attempt", attempts).Debug("database not ready")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempts, fmt.Errorf("%w: %s after %d attempts: %v", ErrNotReady, target, attempts, err)
		case <-timer.C:
		}

		delay *= 2
		if p.MaxInterval > 0 && delay > p.MaxInterval {
			delay = p.MaxInterval
		}
	}
}

// permanent reports server errors that retrying cannot fix: bad credentials
// (class 28) and unknown database (class 3D).
func permanent(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code.Class() {
	case "28", "3D":
		return true
	}
	return false
}

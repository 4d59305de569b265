package database

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stemsi/mockview-backend/internal/config"
)

// NewNATSConn connects to NATS when NATS_URL is configured.
// It returns (nil, nil) when event publishing is disabled.
func NewNATSConn(cfg *config.Config, log zerolog.Logger) (*nats.Conn, error) {
	if cfg.NATSURL == "" {
		log.Info().Msg("NATS_URL not set, interview events disabled")
		return nil, nil
	}

	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("mockview-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	log.Info().
		Str("url", nc.ConnectedUrl()).
		Msg("NATS connected")

	return nc, nil
}

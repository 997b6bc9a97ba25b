package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/almanac/internal/upstream"
	"github.com/briangreenhill/almanac/plugins"
)

// NewMux routes warm tasks to the registered plugins.
func NewMux(reg *plugins.Registry, logger zerolog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWarmSource, func(ctx context.Context, t *asynq.Task) error {
		var p WarmSourcePayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			logger.Error().Err(err).Msg("bad warm payload")
			return fmt.Errorf("decode warm payload: %w", asynq.SkipRetry)
		}
		log := logger.With().Str("plugin", p.Plugin).Str("param", p.Param).Logger()

		plugin, ok := reg.GetPlugin(p.Plugin)
		if !ok {
			log.Error().Msg("unknown plugin")
			return fmt.Errorf("unknown plugin %q: %w", p.Plugin, asynq.SkipRetry)
		}

		start := time.Now()
		err := plugin.Refresh(log.WithContext(ctx), p.Param)
		duration := time.Since(start)

		if err != nil {
			if IsRetryable(err) {
				log.Warn().Err(err).Dur("duration", duration).Msg("retryable warm error")
				return err
			}
			log.Error().Err(err).Dur("duration", duration).Msg("permanent warm error, dropping task")
			return nil
		}
		log.Info().Dur("duration", duration).Msg("cache warmed")
		return nil
	})
	return mux
}

// IsRetryable reports whether a failed refresh should be retried: network
// failures, rate limiting and upstream 5xx.
func IsRetryable(err error) bool {
	var te *upstream.TransportError
	if errors.As(err, &te) {
		return te.Temporary()
	}
	return false
}

package model

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Validate reports whether m passes its own validator. A validator that fails,
// by returning an error or by panicking, is logged through the context logger
// and counts as invalid.
func Validate(ctx context.Context, m *Model) (valid bool) {
	if m == nil {
		return false
	}
	log := zerolog.Ctx(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("model", m.Name()).
				Str("id", m.ID()).
				Str("panic", fmt.Sprint(r)).
				Msg("model validator panicked")
			valid = false
		}
	}()
	ok, err := m.IsValid(ctx)
	if err != nil {
		log.Error().Err(err).Str("model", m.Name()).Str("id", m.ID()).Msg("model validation failed")
		return false
	}
	return ok
}

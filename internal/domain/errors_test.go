package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"fantasy_trades/internal/domain"
	"fantasy_trades/pkg/errcodes"
)

func TestAppError(t *testing.T) {
	rq := require.New(t)

	cause := errors.New("disk full")
	err := domain.WrapError(cause, errcodes.InternalServerError, "failed to save snapshot")

	rq.EqualError(err, "failed to save snapshot: disk full")
	rq.ErrorIs(err, cause)
	rq.True(domain.IsAppError(err))
	rq.True(domain.HasCode(err, errcodes.InternalServerError))
	rq.False(domain.HasCode(err, errcodes.NotFound))

	plain := domain.Errorf(errcodes.MalformedSnapshot, "rounds[%d].players: missing", 3)
	rq.EqualError(plain, "rounds[3].players: missing")

	code, ok := domain.GetCode(errors.New("plain"))
	rq.False(ok)
	rq.Empty(code)
}

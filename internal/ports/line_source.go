package ports

import (
	"context"

	"github.com/bnema/lineserver/internal/domain"
)

// LineSource loads the line store once before the server starts accepting.
type LineSource interface {
	Load(ctx context.Context) (*domain.Lines, error)
	Describe() string
}

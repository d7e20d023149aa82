//go:build !windows

package sleep

import (
	"context"
	"fmt"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter"
)

func (a *Adapter) Run(_ context.Context) error {
	return fmt.Errorf("%w: sleep notifications unavailable on this platform", adapter.ErrRegistration)
}

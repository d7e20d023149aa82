//go:build !windows

package device

import (
	"context"
	"fmt"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter"
)

func (a *Adapter) Run(_ context.Context) error {
	return fmt.Errorf("%w: device notifications unavailable on this platform", adapter.ErrRegistration)
}

// Package startup публикует одно приветственное событие при запуске.
package startup

import (
	"context"
	"os/user"
	"strings"

	"go.uber.org/zap"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
)

type Adapter struct {
	bus    *event.Bus
	logger *zap.SugaredLogger
}

func New(bus *event.Bus, logger *zap.SugaredLogger) *Adapter {
	return &Adapter{bus: bus, logger: logger}
}

func (a *Adapter) Name() string { return "startup" }

// Run публикует приветствие и завершается. Имя пользователя — best-effort,
// при сбое подставляется нейтральное "user".
func (a *Adapter) Run(ctx context.Context) error {
	name := userName()
	a.logger.Infow("Publishing startup greeting", "user", name)
	a.bus.Publish(event.NewStartupGreeting(name))
	return nil
}

func userName() string {
	u, err := user.Current()
	if err != nil {
		return "user"
	}
	name := u.Name
	if name == "" {
		name = u.Username
	}
	// DOMAIN\user → user
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "user"
	}
	return name
}

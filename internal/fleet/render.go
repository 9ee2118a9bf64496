package fleet

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/abusesystem/backend/internal/models"
)

// MessageSource resolves named notice templates.
type MessageSource interface {
	GetByName(ctx context.Context, name string) (string, error)
}

// renderMessage loads a named notice and substitutes the placeholders. A
// missing or unreadable notice falls back to the built-in default rather
// than blocking the sanction.
func renderMessage(ctx context.Context, messages MessageSource, name string, repl map[string]string) string {
	tpl, err := messages.GetByName(ctx, name)
	if err != nil {
		log.Printf("[applier] message %q unavailable, using default: %v", name, err)
		tpl = models.DefaultMessages[name]
	}

	pairs := make([]string, 0, len(repl)*2)
	for k, v := range repl {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// formatExpiry renders an expiration timestamp for the %date placeholder.
func formatExpiry(expiresAt *time.Time) string {
	if expiresAt == nil {
		return "permanent"
	}
	return expiresAt.UTC().Format("2006-01-02 15:04 MST")
}

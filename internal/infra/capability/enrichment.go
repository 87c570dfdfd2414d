package capability

import (
	"context"
	"time"

	"veritas/internal/domain"

	"github.com/rs/zerolog"
)

// Narration and translation are optional enrichment capabilities; their
// results decorate the verification report and never gate the pipeline.

type NarrationGateway struct {
	c *client
}

func NewNarrationGateway(endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) *NarrationGateway {
	return &NarrationGateway{c: newClient(domain.CapabilityNarration, endpoint, apiKey, timeout, log)}
}

func (g *NarrationGateway) Available() bool { return g.c.Available() }
func (g *NarrationGateway) ResetQuota()     { g.c.ResetQuota() }

func (g *NarrationGateway) Invoke(ctx context.Context, input domain.NarrationInput) domain.CapabilityResult[domain.NarrationOutput] {
	return invoke(ctx, g.c, "/v1/narrate", input, func(in domain.NarrationInput) domain.NarrationOutput {
		return domain.NarrationOutput{Text: in.Summary, Voice: "none"}
	})
}

type TranslationGateway struct {
	c *client
}

func NewTranslationGateway(endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) *TranslationGateway {
	return &TranslationGateway{c: newClient(domain.CapabilityTranslation, endpoint, apiKey, timeout, log)}
}

func (g *TranslationGateway) Available() bool { return g.c.Available() }
func (g *TranslationGateway) ResetQuota()     { g.c.ResetQuota() }

func (g *TranslationGateway) Invoke(ctx context.Context, input domain.TranslationInput) domain.CapabilityResult[domain.TranslationOutput] {
	return invoke(ctx, g.c, "/v1/translate", input, func(in domain.TranslationInput) domain.TranslationOutput {
		// Untranslated passthrough keeps the schema valid offline.
		return domain.TranslationOutput{Text: in.Text, Language: in.Target}
	})
}

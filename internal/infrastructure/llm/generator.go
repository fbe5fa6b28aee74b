package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/core/ports"
	"github.com/kirillkom/cto-coach/internal/infrastructure/resilience"
)

// FailureObserver is notified once per failed generation with its FailureKind label.
type FailureObserver func(provider, kind string)

// ResilientGenerator runs a provider behind the resilience executor and normalizes every
// failure into a domain kind.
type ResilientGenerator struct {
	provider  string
	next      ports.AnswerGenerator
	executor  *resilience.Executor
	onFailure FailureObserver
}

func NewResilientGenerator(provider string, next ports.AnswerGenerator, executor *resilience.Executor) *ResilientGenerator {
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &ResilientGenerator{
		provider: provider,
		next:     next,
		executor: executor,
	}
}

func (g *ResilientGenerator) WithFailureObserver(observer FailureObserver) *ResilientGenerator {
	g.onFailure = observer
	return g
}

func (g *ResilientGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	operation := g.provider + ".generate"

	answer, err := resilience.Call(ctx, g.executor, operation, func(ctx context.Context) (string, error) {
		return g.next.Generate(ctx, prompt)
	}, ClassifyError)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = domain.WrapError(domain.ErrUpstreamFailure, operation, errors.New("empty response"))
	}
	if err != nil {
		err = Normalize(operation, err)
		if g.onFailure != nil {
			g.onFailure(g.provider, FailureKind(err))
		}
		return "", err
	}
	return answer, nil
}

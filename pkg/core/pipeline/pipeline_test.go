package pipeline

import (
	"context"
	"testing"

	"github.com/itohio/gridvision/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestRunRejectsCancelledContext(t *testing.T) {
	p := New(nil, config.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, "unused.png")
	assert.Error(t, err)
}

func TestRunRejectsMissingImage(t *testing.T) {
	p := New(nil, config.Default())

	_, err := p.Run(context.Background(), "/nonexistent/path/to/image.png")
	assert.Error(t, err)
}

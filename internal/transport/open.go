// pattern: Imperative Shell

package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rttdash/internal/logging"
)

// Options select and configure the target Open attaches to.
type Options struct {
	Kind    string   // KindSim, KindDir or KindExec
	Dir     string   // channel directory for KindDir
	Command []string // argv for KindExec
	Clock   func() time.Time
}

// Open attaches to the target described by opts.
func Open(ctx context.Context, opts Options, logs logging.LoggerProvider) (Target, error) {
	logger := logs.For("transport." + opts.Kind)

	switch opts.Kind {
	case KindSim, "":
		return OpenSim(opts.Clock, logger), nil
	case KindDir:
		if opts.Dir == "" {
			return nil, errors.New("dir transport requires a directory")
		}
		return OpenDir(ctx, opts.Dir, logger)
	case KindExec:
		if len(opts.Command) == 0 {
			return nil, errors.New("exec transport requires a command")
		}
		return OpenExec(ctx, opts.Command, logger)
	default:
		return nil, fmt.Errorf("unknown transport kind %q", opts.Kind)
	}
}

package opts

import (
	"github.com/walteh/kindlecbz/pkg/config"
	"github.com/walteh/kindlecbz/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config config.Config
	Logger *log.Logger
	Debug  bool
}

// Package autoload initializes the global logger from the environment when
// blank-imported.
package autoload

import (
	configx "github.com/tanpawarit/wealth-advisor-agent/pkg/config"
	logx "github.com/tanpawarit/wealth-advisor-agent/pkg/logger"
)

func init() {
	conf := configx.MustNew[logx.Config]("LOG")
	logx.Init(*conf)
}

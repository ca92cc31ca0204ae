package pool

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ecloudclub/elastipool/zapx"
)

// NewProductionLogger returns a zap.Logger suitable as Config.Logger,
// wrapped with zapx's redacting core so job labels and routing keys never
// reach the sink unmasked.
func NewProductionLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	return cfg.Build(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapx.NewRedactingCore(core)
	}))
}

// Package closenicely closes resources whose close error cannot change the outcome, logging it instead.
package closenicely

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

func OrDebug(closer io.Closer) {
	if err := closer.Close(); err != nil {
		zap.L().Debug("Failed to close resource", zap.String("type", fmt.Sprintf("%T", closer)), zap.Error(err))
	}
}

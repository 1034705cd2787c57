// README: zap logger construction.
package infra

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger returns a production logger, or a development one when
// SWIFT_DEV_LOG is set.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("SWIFT_DEV_LOG") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

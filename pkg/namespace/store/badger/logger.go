package badger

import (
	"fmt"
	"strings"

	"github.com/marmos91/ecfs/internal/logger"
)

// badgerLogger routes Badger's internal logging through the ecfs logger.
// Info output is demoted to debug since Badger is chatty on open.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Error(trim(format, args), "component", "badger")
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warn(trim(format, args), "component", "badger")
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Debug(trim(format, args), "component", "badger")
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Debug(trim(format, args), "component", "badger")
}

func trim(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}

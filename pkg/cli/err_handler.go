package cli

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/engine"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"go.uber.org/zap"
)

type ErrorHandler struct {
	InternalDebug bool
	Verbose       bool
	PostPrintHook func()
}

func (h ErrorHandler) PrintErr(err error) {
	h.printErr(zap.L(), err, 0)
	if h.PostPrintHook != nil {
		h.PostPrintHook()
	}
}

func (h ErrorHandler) printErr(log *zap.Logger, err error, num int) (nextNum int) {
	errFmt := "%v"
	if h.InternalDebug {
		errFmt = "%+v"
	}

	var group interface{ Errors() []error }
	if errors.As(err, &group) {
		errs := group.Errors()
		switch len(errs) {
		case 0:
			return num

		case 1:
			err = errs[0]

		default:
			log.Sugar().Errorf("%d errors:", len(errs))
			for _, err := range errs {
				num = h.printErr(log, err, num+1)
			}
			return num
		}
	}

	var (
		collabErr     *engine.CollaboratorError
		cycleErr      *construct.CyclicDependencyError
		unresolvedErr *construct.UnresolvedReferenceError
	)
	switch {
	case errors.As(err, &collabErr):
		log = log.With(logging.ResourceField(collabErr.Resource), zap.String("operation", collabErr.Operation))

	case errors.As(err, &cycleErr) && h.Verbose:
		for _, id := range cycleErr.Remaining {
			log.Debug("Unordered resource", logging.ResourceField(id))
		}

	case errors.As(err, &unresolvedErr) && h.Verbose:
		for _, ref := range unresolvedErr.Refs {
			log.Debug("Unresolved reference", logging.RefField(ref))
		}
	}

	if h.InternalDebug {
		log.Debug("Error chain", zap.String("dump", spew.Sdump(err)))
	}
	log.Error(fmt.Sprintf("[err %d] "+errFmt, num, err))
	return num
}

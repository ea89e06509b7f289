package convlog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

func newValidate() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func validateOptions(opts *Options) error {
	if opts == nil {
		return errors.New(errMsgNilOptions)
	}
	if err := newValidate().Struct(opts); err != nil {
		return fmt.Errorf("%s: %w", errMsgOptionsInvalid, err)
	}
	return nil
}

func validateFileHandlerOptions(opts *FileHandlerOptions) error {
	if opts == nil {
		return errors.New(errMsgNilHandlerOpts)
	}
	if err := newValidate().Struct(opts); err != nil {
		return fmt.Errorf("%s: %w", errMsgHandlerInvalid, err)
	}
	return nil
}

func validateFileConfig(cfg *fileConfig) error {
	if cfg == nil {
		return errors.New(errMsgNilConfig)
	}
	if err := newValidate().Struct(cfg); err != nil {
		return fmt.Errorf("%s: %w", errMsgConfigInvalid, err)
	}
	return nil
}

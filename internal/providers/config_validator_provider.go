package providers

import (
	"dashgate/internal/structures"
	"errors"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks each config section against its struct tags.
func (cv *CnfValidator) Validate() error {
	sections := []interface{}{
		&cv.conf.WebServer,
		&cv.conf.Gateway,
		&cv.conf.Logger,
		&cv.conf.Storage,
		&cv.conf.Pagination,
	}
	for _, s := range sections {
		v := validate.Struct(s)
		if !v.Validate() {
			return v.Errors
		}
	}
	if cv.conf.Storage.Driver == "redis" && cv.conf.Storage.RedisAddr == "" {
		return errors.New("storage.redisAddr is required for the redis driver")
	}
	return nil
}

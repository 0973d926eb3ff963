package service

import "errors"

var (
	ErrFlagNotFound  = errors.New("flag not found")
	ErrEnvNotFound   = errors.New("environment not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidConfig = errors.New("invalid flag config")

	ErrMysqlUnhealthy = errors.New("mysql unhealthy")
	ErrRedisUnhealthy = errors.New("redis unhealthy")
)

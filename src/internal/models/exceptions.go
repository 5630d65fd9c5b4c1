package models

import "errors"

var (
	ErrRedisConnection = errors.New("redis connection error")
	ErrRedisGet        = errors.New("redis get error")
	ErrRedisSet        = errors.New("redis set error")
)

var (
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseInsert     = errors.New("database insert error")
)

var (
	ErrQueueConnection = errors.New("queue connection error")
	ErrQueuePublish    = errors.New("queue publish error")
)

var (
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrSessionTokenExpired = errors.New("session token expired")
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrAuctionEnded     = errors.New("auction has ended")
	ErrInvalidCartIndex = errors.New("invalid cart index")
)

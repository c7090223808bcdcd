// Package repository defines the store abstractions behind the services and
// their in-memory and Redis implementations. Sentinel errors let handlers
// translate store failures into HTTP statuses without inspecting strings.
package repository

import "errors"

var (
	// ErrUserExists is returned by UserStore.Insert when the username is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user record has the given username.
	ErrUserNotFound = errors.New("user not found")
	// ErrOrderNotFound is returned when no order has the given id.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound is returned when no product has the given id.
	ErrProductNotFound = errors.New("product not found")
)

package redis

import (
	"context"
	"io"
)

// Shutdown closes the client. Use it as a run shutdown hook.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}

package middleware

import "github.com/aretw0/cado/pkg/persistence"

// Middleware allows wrapping a Codec to add behavior.
type Middleware func(persistence.Codec) persistence.Codec

// Chain applies middlewares so that the first one is the outermost.
func Chain(codec persistence.Codec, mws ...Middleware) persistence.Codec {
	for i := len(mws) - 1; i >= 0; i-- {
		codec = mws[i](codec)
	}
	return codec
}

//go:build wireinject
// +build wireinject

package main

import (
	"net/http"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-counter-go/support"
)

func CounterServer(cfg support.Config, logger *zerolog.Logger) *http.Server {
	panic(wire.Build(Live))
}

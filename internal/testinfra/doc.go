// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package testinfra starts throwaway backing services for integration tests.
//
// Everything here is behind the integration build tag and uses
// testcontainers-go:
//
//	go test -tags integration ./internal/profile/... ./internal/cache/...
//
// # Containers
//
//	mongo, err := testinfra.NewMongoContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	testinfra.CleanupContainer(t, ctx, mongo.Container)
//	// mongo.URI -> mongodb://host:port
//
//	redis, err := testinfra.NewRedisContainer(ctx)
//	// redis.Addr -> host:port
//
// Tests call SkipIfNoDocker first so they degrade to a skip on machines
// without a Docker daemon.
package testinfra

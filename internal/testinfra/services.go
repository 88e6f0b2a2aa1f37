// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMongoImage is the MongoDB image used for profile store tests.
	DefaultMongoImage = "mongo:7"
	mongoPort         = "27017"

	// DefaultRedisImage is the Redis image used for cache tests.
	DefaultRedisImage = "redis:7-alpine"
	redisPort         = "6379"

	defaultStartTimeout = 60 * time.Second
)

// MongoContainer represents a running MongoDB container for testing.
type MongoContainer struct {
	testcontainers.Container
	URI string
}

// RedisContainer represents a running Redis container for testing.
type RedisContainer struct {
	testcontainers.Container
	Addr string
}

// NewMongoContainer creates and starts a MongoDB container.
func NewMongoContainer(ctx context.Context) (*MongoContainer, error) {
	container, hostPort, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        DefaultMongoImage,
		ExposedPorts: []string{mongoPort + "/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(mongoPort+"/tcp"),
			wait.ForLog("Waiting for connections"),
		).WithStartupTimeout(defaultStartTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("create mongo container: %w", err)
	}

	return &MongoContainer{
		Container: container,
		URI:       "mongodb://" + hostPort,
	}, nil
}

// NewRedisContainer creates and starts a Redis container.
func NewRedisContainer(ctx context.Context) (*RedisContainer, error) {
	container, hostPort, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        DefaultRedisImage,
		ExposedPorts: []string{redisPort + "/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(redisPort+"/tcp"),
			wait.ForLog("Ready to accept connections"),
		).WithStartupTimeout(defaultStartTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("create redis container: %w", err)
	}

	return &RedisContainer{
		Container: container,
		Addr:      hostPort,
	}, nil
}

// startContainer starts req and resolves host:port of its first exposed port.
func startContainer(ctx context.Context, req testcontainers.ContainerRequest) (testcontainers.Container, string, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get container endpoint: %w", err)
	}

	return container, endpoint, nil
}

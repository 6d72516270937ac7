package main

//go:generate swag init -g cmd/orbitwatch/main.go -o docs

// @title           Orbitwatch API
// @version         0.1.0
// @description     Telemetry run controls, run history and provider health.
// @host            localhost:8080
// @BasePath        /
// @schemes         http

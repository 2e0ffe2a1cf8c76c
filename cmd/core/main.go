package main

import (
	"os"
	"os/signal"
	"syscall"

	"dabwish/internal/bootstrap"
)

// main runs the core wishlist API
func main() {
	c := bootstrap.NewCoreContainer()
	c.MustInit()

	if err := c.Start(); err != nil {
		c.Log.Fatalf("failed to start: %v", err)
	}

	waitForShutdown(c.Log.Infof)
	c.Shutdown()
}

// waitForShutdown blocks until SIGINT or SIGTERM
func waitForShutdown(logf func(string, ...interface{})) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logf("Received signal %v, initiating graceful shutdown...", sig)
}

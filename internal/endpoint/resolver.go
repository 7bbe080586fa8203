// Package endpoint resolves the base service address from the runtime
// environment. The same binary must reach a local server during development,
// the host loopback alias when packaged inside the Android emulator, and a
// tunneled public endpoint everywhere else.
package endpoint

import "fmt"

// DefaultLocalPort is the port the development server listens on.
const DefaultLocalPort = 5000

// DefaultTunnelURL is used when no tunnel address is configured, so that
// resolution stays total.
const DefaultTunnelURL = "https://edushare.example.com"

// emulatorLoopback is the Android emulator's alias for the host's localhost.
const emulatorLoopback = "10.0.2.2"

// Signal is the observed environment descriptor. It is injected rather than
// read from ambient globals so resolution can be exercised in tests.
type Signal struct {
	// Hostname is the origin the client sees itself served from.
	Hostname string
	// Platform is the packaging target, e.g. config.PlatformAndroid.
	Platform string
	// LocalPort overrides DefaultLocalPort when non-zero.
	LocalPort int
	// TunnelURL overrides DefaultTunnelURL when non-empty.
	TunnelURL string
}

// Profile is the resolved base address, stable for the process lifetime.
type Profile struct {
	BaseURL string
	IsLocal bool
}

// API returns the REST prefix under the base address.
func (p Profile) API() string {
	return p.BaseURL + "/api"
}

// Resolve maps an environment signal to an endpoint profile. It is pure,
// deterministic and total. Priority: local development on Android reaches the
// host through the emulator loopback alias; local development elsewhere uses
// localhost directly; any non-local origin falls back to the tunnel address.
func Resolve(sig Signal) Profile {
	port := sig.LocalPort
	if port == 0 {
		port = DefaultLocalPort
	}

	if isLoopback(sig.Hostname) {
		host := "localhost"
		if sig.Platform == "android" {
			host = emulatorLoopback
		}
		return Profile{
			BaseURL: fmt.Sprintf("http://%s:%d", host, port),
			IsLocal: true,
		}
	}

	tunnel := sig.TunnelURL
	if tunnel == "" {
		tunnel = DefaultTunnelURL
	}
	return Profile{BaseURL: tunnel, IsLocal: false}
}

func isLoopback(hostname string) bool {
	switch hostname {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

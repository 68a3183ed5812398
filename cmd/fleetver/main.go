// Package main provides the entry point for the fleetver CLI.
//
// fleetver reports which users in a multi-tenant device-management API run
// a given client version. It enumerates all organizations visible to the
// configured API key, fetches each organization's users and devices, and
// emits one flat row per device whose reported version contains the target
// pattern.
//
// Usage:
//
//	API_KEY=... APP_VERSION=5.5.09.04 fleetver report
//	API_KEY=... fleetver report --app-version 5.5.09 --csv
//
// See --help for all available options.
package main

// main is the entry point for fleetver.
func main() {
	Execute()
}

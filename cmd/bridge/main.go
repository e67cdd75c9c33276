// Bridge serves an application written against the environment protocol
// over HTTP.
//
// Usage:
//
//	# Start the server with default configuration
//	bridge run
//
//	# Start with a configuration file, switching to the fasthttp engine
//	bridge run --config /etc/bridge/config.yaml --engine fasthttp
//
//	# Print the resolved configuration
//	bridge validate --config config.yaml --format yaml
//
//	# Show version information
//	bridge version
package main

func main() {
	Execute()
}

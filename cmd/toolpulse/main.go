// toolpulse records per-invocation tool metrics for ai-mesh coding sessions.
// Runs as a short-lived hook after each assistant tool execution and as
// a small CLI over the local metrics store.
package main

import "github.com/ai-mesh/toolpulse/internal/cli"

func main() {
	cli.Execute()
}
